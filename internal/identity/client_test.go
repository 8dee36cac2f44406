package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Options{
		BaseURL: server.URL + "/",
		APIKey:  "key-1",
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return client
}

func TestSignInStoresSession(t *testing.T) {
	var got credentialsRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, signInPath, r.URL.Path)
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(tokenResponse{
			IDToken:   "opaque-token",
			Email:     "ana@example.com",
			ExpiresIn: "3600",
			LocalID:   "user-1",
		})
	})

	session, err := client.SignIn(context.Background(), " ana@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.True(t, got.ReturnSecureToken)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, fixedNow.Add(time.Hour), session.ExpiresAt)
	assert.Same(t, session, client.Current())

	token, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestSessionFallsBackToTokenClaims(t *testing.T) {
	expiry := fixedNow.Add(20 * time.Minute).Truncate(time.Second)
	idToken := signedToken(t, Claims{
		Email: "ben@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-2",
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, signUpPath, r.URL.Path)
		_ = json.NewEncoder(w).Encode(tokenResponse{IDToken: idToken})
	})

	session, err := client.SignUp(context.Background(), "ben@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user-2", session.UserID)
	assert.Equal(t, "ben@example.com", session.Email)
	assert.True(t, session.ExpiresAt.Equal(expiry))
	assert.True(t, session.Valid(fixedNow))
	assert.False(t, session.Valid(expiry))
}

func TestSignInMapsProviderErrors(t *testing.T) {
	cases := map[string]ErrorKind{
		"INVALID_EMAIL":             KindInvalidEmail,
		"EMAIL_NOT_FOUND":           KindInvalidCredentials,
		"INVALID_LOGIN_CREDENTIALS": KindInvalidCredentials,
		"EMAIL_EXISTS":              KindEmailInUse,
		"WEAK_PASSWORD : Password should be at least 6 characters": KindWeakPassword,
		"TOO_MANY_ATTEMPTS_TRY_LATER":                              KindOther,
	}
	for code, want := range cases {
		t.Run(code, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				var body errorResponse
				body.Error.Code = http.StatusBadRequest
				body.Error.Message = code
				_ = json.NewEncoder(w).Encode(body)
			})
			_, err := client.SignIn(context.Background(), "ana@example.com", "pw")
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, want, authErr.Kind)
			assert.Nil(t, client.Current())
		})
	}
}

func TestBlankCredentialsNeverLeaveTheProcess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
	})
	_, err := client.SignIn(context.Background(), "  ", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindInvalidEmail, authErr.Kind)

	_, err = client.SignIn(context.Background(), "ana@example.com", "")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindInvalidCredentials, authErr.Kind)
}

func TestSignOutClearsSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tokenResponse{IDToken: "t", ExpiresIn: "60"})
	})
	_, err := client.SignIn(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, client.SignOut(context.Background()))
	assert.Nil(t, client.Current())
	_, err = client.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserMessages(t *testing.T) {
	assert.Equal(t, "Invalid email address format.", (&AuthError{Kind: KindInvalidEmail}).UserMessage())
	assert.Equal(t, "This email is already registered. Try logging in.", NewAuthError("auth/email-already-in-use").UserMessage())
	assert.Equal(t, KindWeakPassword, KindForCode("auth/weak-password"))
	assert.Equal(t, "Authentication failed: QUOTA", NewAuthError("QUOTA").UserMessage())
}
