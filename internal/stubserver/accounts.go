package stubserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account error codes, as an identity toolkit endpoint reports them.
const (
	codeInvalidEmail       = "INVALID_EMAIL"
	codeMissingPassword    = "MISSING_PASSWORD"
	codeEmailExists        = "EMAIL_EXISTS"
	codeWeakPassword       = "WEAK_PASSWORD : Password should be at least 6 characters"
	codeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
)

const minPasswordLength = 6

var errUnauthorized = errors.New("missing or invalid bearer token")

type accountError struct{ code string }

func (e *accountError) Error() string { return e.code }

type account struct {
	id    string
	email string
	hash  []byte
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// tokenClaims are the claims carried by issued id tokens.
type tokenClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// accounts is an in-memory user store that issues HS256 id tokens.
type accounts struct {
	key      []byte
	ttl      time.Duration
	now      func() time.Time
	validate *validator.Validate

	mu      sync.RWMutex
	byEmail map[string]account
}

func newAccounts(key []byte, ttl time.Duration, now func() time.Time) *accounts {
	return &accounts{
		key:      key,
		ttl:      ttl,
		now:      now,
		validate: validator.New(),
		byEmail:  make(map[string]account),
	}
}

func (a *accounts) check(c credentials) (credentials, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if err := a.validate.Struct(c); err != nil {
		return c, &accountError{code: codeInvalidEmail}
	}
	if c.Password == "" {
		return c, &accountError{code: codeMissingPassword}
	}
	return c, nil
}

func (a *accounts) signUp(c credentials) (account, error) {
	c, err := a.check(c)
	if err != nil {
		return account{}, err
	}
	if len(c.Password) < minPasswordLength {
		return account{}, &accountError{code: codeWeakPassword}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.MinCost)
	if err != nil {
		return account{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.byEmail[c.Email]; exists {
		return account{}, &accountError{code: codeEmailExists}
	}
	acct := account{id: uuid.NewString(), email: c.Email, hash: hash}
	a.byEmail[c.Email] = acct
	return acct, nil
}

func (a *accounts) signIn(c credentials) (account, error) {
	c, err := a.check(c)
	if err != nil {
		return account{}, err
	}
	a.mu.RLock()
	acct, ok := a.byEmail[c.Email]
	a.mu.RUnlock()
	if !ok {
		return account{}, &accountError{code: codeInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(c.Password)); err != nil {
		return account{}, &accountError{code: codeInvalidCredentials}
	}
	return acct, nil
}

func (a *accounts) issue(acct account) (string, time.Time, error) {
	issued := a.now()
	expires := issued.Add(a.ttl)
	claims := tokenClaims{
		Email:  acct.email,
		UserID: acct.id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.id,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	return token, expires, err
}

func (a *accounts) verify(header string) (*tokenClaims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errUnauthorized
	}
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, errUnauthorized
	}
	return claims, nil
}
