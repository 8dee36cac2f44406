package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/waypoint/internal/trip"
)

func staticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Options{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Token:   staticToken("tok-1"),
	})
	require.NoError(t, err)
	return client
}

func TestDiscoverSendsAddressAndMapsPlaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, suggestPath, r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		var req suggestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Paris", req.Address)

		_, _ = w.Write([]byte(`{"places":[
			{"title":"Eiffel Tower","address":"Champ de Mars","latitude":48.8584,"longitude":2.2945,"image":""},
			{"title":"Louvre","address":"Rue de Rivoli"},
			{"title":"  ","address":"nowhere"}
		]}`))
	})

	places, err := client.Discover(context.Background(), trip.DiscoveryRequest{Address: "Paris"})
	require.NoError(t, err)
	require.Len(t, places, 2)

	eiffel := places[0]
	assert.Equal(t, trip.NewPlaceID("Eiffel Tower", "Champ de Mars"), eiffel.ID)
	require.NotNil(t, eiffel.Coordinates)
	assert.InDelta(t, 48.8584, eiffel.Coordinates.Latitude, 1e-9)
	assert.Equal(t, trip.PlaceholderImageURL, eiffel.Image())
	assert.Nil(t, places[1].Coordinates)
}

func TestPlanSendsSnapshotAndDropsInvalidLegs(t *testing.T) {
	lat, lng := 48.8584, 2.2945
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, travelPath, r.URL.Path)
		var req travelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hotel X", req.StartLocation)
		assert.Equal(t, "cheapest", req.OptimizationPreference)
		require.Len(t, req.SelectedPlaces, 2)
		require.NotNil(t, req.SelectedPlaces[0].Latitude)
		assert.Equal(t, lat, *req.SelectedPlaces[0].Latitude)
		assert.Nil(t, req.SelectedPlaces[1].Latitude)

		_, _ = w.Write([]byte(`{"travelOptions":[
			{"time_slot":"09:00","type":"travel","activity":"Metro to the tower","location":"Hotel X to Eiffel Tower"},
			{"time_slot":"10:00","type":"picnic","activity":"Lawn"},
			{"time_slot":"11:00","type":"attraction","activity":""},
			{"time_slot":"12:00","type":"attraction","activity":"Visit the Louvre","location":"Louvre"}
		]}`))
	})

	legs, err := client.Plan(context.Background(), trip.PlanningRequest{
		SelectedPlaces: []trip.Place{
			{Title: "Eiffel Tower", Coordinates: &trip.Coordinates{Latitude: lat, Longitude: lng}},
			{Title: "Louvre"},
		},
		StartLocation: "Hotel X",
		Preference:    trip.PreferCheapest,
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, trip.LegTravel, legs[0].Type)
	assert.Equal(t, "Louvre", legs[1].Location)
}

func TestNon2xxBecomesTransportErrorWithDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"planner unavailable"}`))
	})

	_, err := client.Plan(context.Background(), trip.PlanningRequest{})
	var terr *trip.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, trip.IntentPlan, terr.Op)
	assert.Equal(t, http.StatusBadGateway, terr.Status)
	assert.Equal(t, "planner unavailable", terr.Detail)
	assert.Equal(t, trip.KindTransport, trip.KindOf(err))
	assert.Equal(t, "Failed to get travel breakdown: planner unavailable. Please try again.", trip.Message(err))
}

func TestErrorFieldInSuccessfulResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model quota exceeded"}`))
	})

	_, err := client.Plan(context.Background(), trip.PlanningRequest{})
	var terr *trip.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "model quota exceeded", terr.Detail)
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.Discover(context.Background(), trip.DiscoveryRequest{Address: "Paris"})
	var terr *trip.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, trip.IntentDiscover, terr.Op)
	assert.Error(t, terr.Err)
}

func TestTokenFailureStopsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()
	sentinel := errors.New("expired")
	client, err := NewClient(Options{
		BaseURL: server.URL,
		Token:   func(context.Context) (string, error) { return "", sentinel },
	})
	require.NoError(t, err)

	_, err = client.Discover(context.Background(), trip.DiscoveryRequest{Address: "Paris"})
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, called)
}

func TestCanceledContextSkipsNetwork(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Discover(ctx, trip.DiscoveryRequest{Address: "Paris"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "  "})
	assert.Error(t, err)
}
