package stubserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/identity"
	"github.com/kingrea/waypoint/internal/remote"
	"github.com/kingrea/waypoint/internal/trip"
)

func startServer(t *testing.T, settings Settings, opts ...Option) *Server {
	t.Helper()
	settings.Host = "127.0.0.1"
	settings.Port = 0
	srv, err := NewServer(settings, opts...)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func clients(t *testing.T, base string) (*identity.Client, *remote.Client) {
	t.Helper()
	ident, err := identity.NewClient(identity.Options{BaseURL: base})
	require.NoError(t, err)
	api, err := remote.NewClient(remote.Options{
		BaseURL: base,
		Timeout: 5 * time.Second,
		Token:   ident.Token,
	})
	require.NoError(t, err)
	return ident, api
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Project.Stub = config.StubConfig{Host: " 0.0.0.0 ", Port: 9100, Latency: time.Second, SigningKey: "k"}
	settings := SettingsFromConfig(cfg)
	assert.Equal(t, "0.0.0.0:9100", settings.Address())
	assert.Equal(t, time.Second, settings.Latency)
	assert.Equal(t, DefaultTokenTTL, settings.TokenTTL)

	defaults := SettingsFromConfig(nil)
	assert.Equal(t, config.DefaultStubHost, defaults.Host)
	assert.Equal(t, config.DefaultStubPort, defaults.Port)
}

func TestHealthReportsReady(t *testing.T) {
	srv := startServer(t, Settings{})
	resp, err := http.Get(srv.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, string(StatusReady), health.Status)
	assert.Equal(t, 3, health.Cities)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	srv := startServer(t, Settings{})
	body := bytes.NewBufferString(`{"address":"Paris"}`)
	resp, err := http.Post(srv.BaseURL()+"/api/suggest", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, api := clients(t, srv.BaseURL())
	_, err = api.Discover(context.Background(), trip.DiscoveryRequest{Address: "Paris"})
	var terr *trip.TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

func TestAccountsLifecycle(t *testing.T) {
	srv := startServer(t, Settings{SigningKey: "secret"})
	ident, _ := clients(t, srv.BaseURL())
	ctx := context.Background()

	_, err := ident.SignUp(ctx, "ana@example.com", "abc")
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, identity.KindWeakPassword, authErr.Kind)

	_, err = ident.SignUp(ctx, "not-an-email", "secret1")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, identity.KindInvalidEmail, authErr.Kind)

	session, err := ident.SignUp(ctx, "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", session.Email)
	assert.NotEmpty(t, session.UserID)
	assert.True(t, session.Valid(time.Now()))

	_, err = ident.SignUp(ctx, "ana@example.com", "secret1")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, identity.KindEmailInUse, authErr.Kind)

	_, err = ident.SignIn(ctx, "ana@example.com", "wrong-password")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, identity.KindInvalidCredentials, authErr.Kind)

	again, err := ident.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, again.UserID)
}

func TestSearchAndPlanThroughSession(t *testing.T) {
	srv := startServer(t, Settings{})
	ident, api := clients(t, srv.BaseURL())
	ctx := context.Background()

	principal, err := ident.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	session := trip.NewSession(api, api)
	session.SignIn(principal)

	job, err := session.Search(ctx, "Paris, France")
	require.NoError(t, err)
	out := session.Run(job)
	require.NoError(t, out.Err)
	require.True(t, out.Applied)
	candidates := session.Candidates()
	require.Len(t, candidates, 3)
	assert.Equal(t, "Paris, France", session.StartLocation())

	for _, place := range candidates[:2] {
		_, err := session.Toggle(place.ID)
		require.NoError(t, err)
	}
	session.SetStartLocation("Gare du Nord")
	job, err = session.Plan(ctx)
	require.NoError(t, err)
	out = session.Run(job)
	require.NoError(t, out.Err)

	itinerary, ok := session.Itinerary()
	require.True(t, ok)
	require.Len(t, itinerary.Legs, 5)
	assert.Equal(t, "Gare du Nord to Eiffel Tower", itinerary.Legs[0].Location)
	highlighted := 0
	for _, h := range session.Highlights() {
		if h {
			highlighted++
		}
	}
	assert.Equal(t, 4, highlighted)
}

func TestSearchFailuresMapToSessionErrors(t *testing.T) {
	srv := startServer(t, Settings{})
	ident, api := clients(t, srv.BaseURL())
	ctx := context.Background()
	principal, err := ident.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	session := trip.NewSession(api, api)
	session.SignIn(principal)

	job, err := session.Search(ctx, "Springfield")
	require.NoError(t, err)
	out := session.Run(job)
	assert.ErrorIs(t, out.Err, trip.ErrNoPlaces)
	assert.Equal(t, trip.KindEmptyResult, trip.KindOf(session.Problem()))

	job, err = session.Search(ctx, "Lost city of Atlantis")
	require.NoError(t, err)
	out = session.Run(job)
	var terr *trip.TransportError
	require.ErrorAs(t, out.Err, &terr)
	assert.Equal(t, http.StatusBadGateway, terr.Status)
	assert.Equal(t, trip.StatusFailed, session.DiscoveryStatus())
}

func TestLatencyHonorsClientCancellation(t *testing.T) {
	fx, err := ParseFixtures([]byte("cities:\n  - name: Slowtown\n    latency: 10s\n    places:\n      - title: Clock Tower\n"))
	require.NoError(t, err)
	srv := startServer(t, Settings{}, WithFixtures(fx))
	ident, api := clients(t, srv.BaseURL())
	_, err = ident.SignUp(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = api.Discover(ctx, trip.DiscoveryRequest{Address: "Slowtown"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
