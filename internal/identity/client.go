package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	signInPath = "/v1/accounts:signInWithPassword"
	signUpPath = "/v1/accounts:signUp"
)

// Logger is the subset of the project logger the client needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     Logger
	Now        func() time.Time
}

// Client talks to an identity-toolkit style REST endpoint and keeps the
// current session for the rest of the process.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *Session
}

var _ Provider = (*Client)(nil)

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("identity: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("identity: parse base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(opts.APIKey),
		http:    httpClient,
		logger:  opts.Logger,
		now:     now,
	}, nil
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates an existing account.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, signInPath, email, password)
}

// SignUp creates an account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, signUpPath, email, password)
}

// SignOut forgets the current session. The provider keeps no server state
// for password sessions, so this never calls out.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	c.logf("signed out")
	return nil
}

// Current returns the signed-in session, or nil.
func (c *Client) Current() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Token returns the bearer token of a still valid session.
func (c *Client) Token(ctx context.Context) (string, error) {
	session := c.Current()
	if !session.Valid(c.now()) {
		return "", ErrNoSession
	}
	return session.IDToken, nil
}

// ErrNoSession is returned by Token when nobody is signed in or the session
// expired.
var ErrNoSession = errors.New("identity: no valid session")

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &AuthError{Kind: KindInvalidEmail, Code: "MISSING_EMAIL"}
	}
	if password == "" {
		return nil, &AuthError{Kind: KindInvalidCredentials, Code: "MISSING_PASSWORD"}
	}

	body, err := json.Marshal(credentialsRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("identity: encode request: %w", err)
	}
	endpoint := c.baseURL + path
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("identity: read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		var failure errorResponse
		if err := json.Unmarshal(payload, &failure); err != nil || failure.Error.Message == "" {
			return nil, &AuthError{Kind: KindOther, Code: http.StatusText(resp.StatusCode)}
		}
		authErr := NewAuthError(failure.Error.Message)
		c.logf("%s rejected: %s", path, authErr.Code)
		return nil, authErr
	}

	var token tokenResponse
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("identity: decode response: %w", err)
	}
	session, err := c.sessionFrom(token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()
	c.logf("signed in as %s", session.Email)
	return session, nil
}

func (c *Client) sessionFrom(token tokenResponse) (*Session, error) {
	if token.IDToken == "" {
		return nil, errors.New("identity: response carried no id token")
	}
	session := &Session{
		UserID:       token.LocalID,
		Email:        token.Email,
		IDToken:      token.IDToken,
		RefreshToken: token.RefreshToken,
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(token.ExpiresIn)); err == nil && seconds > 0 {
		session.ExpiresAt = c.now().Add(time.Duration(seconds) * time.Second)
	}
	if claims, err := readClaims(token.IDToken); err == nil {
		if session.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
		if session.UserID == "" {
			session.UserID = firstNonEmpty(claims.UserID, claims.Subject)
		}
		if session.Email == "" {
			session.Email = claims.Email
		}
	}
	return session, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf("identity: "+format, args...)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
