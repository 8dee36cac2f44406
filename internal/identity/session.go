package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider is the identity collaborator.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
}

// Session is an authenticated identity.
type Session struct {
	UserID       string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// expirySkew treats tokens about to expire as already expired.
const expirySkew = 30 * time.Second

// Valid reports whether the session can still authorize requests at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.IDToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(expirySkew).Before(s.ExpiresAt)
}

// Claims is the subset of ID token claims the client reads.
type Claims struct {
	Email  string `json:"email,omitempty"`
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// readClaims decodes token claims without verifying the signature; the
// services verify tokens, the client only needs subject and expiry.
func readClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
