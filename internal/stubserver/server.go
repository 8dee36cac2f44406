// Package stubserver serves local fixtures for the discovery, planning and
// identity services so the client can run without network access.
package stubserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// Logger is the subset of the project logger the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Server wraps the HTTP listener and fixture handlers.
type Server struct {
	settings Settings
	fixtures *Fixtures
	accounts *accounts
	logger   Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control token timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithFixtures replaces the fixtures named in settings.
func WithFixtures(fx *Fixtures) Option {
	return func(s *Server) {
		if fx != nil {
			s.fixtures = fx
		}
	}
}

// NewServer prepares a fixture server. Fixtures are loaded from
// settings.Fixtures unless WithFixtures supplied them.
func NewServer(settings Settings, opts ...Option) (*Server, error) {
	settings.normalize()
	s := &Server{
		settings: settings,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.fixtures == nil {
		fx, err := LoadFixtures(settings.Fixtures)
		if err != nil {
			return nil, err
		}
		s.fixtures = fx
	}
	key := []byte(settings.SigningKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("stubserver: generate signing key: %w", err)
		}
	}
	s.accounts = newAccounts(key, settings.TokenTTL, s.now)
	return s, nil
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	router.POST("/api/suggest", s.requireToken(s.handleSuggest))
	router.POST("/api/get-travel-details", s.requireToken(s.handleTravel))
	// identity toolkit paths put the method after a colon in one segment
	router.POST("/v1/:method", s.handleAccounts)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	}).Handler(router)
	return s.logRequests(corsHandler)
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("stubserver: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("stubserver: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stubserver: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("stubserver: serve error: %v", err)
		}
	}()
	s.logger.Printf("stubserver: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) now() time.Time {
	return s.clock().UTC()
}

type healthResponse struct {
	Status        string `json:"status"`
	Cities        int    `json:"cities"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.RLock()
	started := s.startTime
	status := s.status
	s.mu.RUnlock()
	var uptime int64
	if !started.IsZero() {
		uptime = int64(time.Since(started).Seconds())
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(status),
		Cities:        len(s.fixtures.Cities),
		UptimeSeconds: uptime,
	})
}

type suggestRequest struct {
	Address string `json:"address"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req suggestRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "address is required")
		return
	}
	city, found := s.fixtures.Lookup(req.Address)
	if !s.delay(r.Context(), city.Latency) {
		return
	}
	if found && city.Error != "" {
		writeDetail(w, http.StatusBadGateway, city.Error)
		return
	}
	places := city.Places
	if places == nil {
		places = []Place{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": places})
}

type travelRequest struct {
	SelectedPlaces         []Place `json:"selectedPlaces"`
	StartLocation          string  `json:"startLocation"`
	OptimizationPreference string  `json:"optimizationPreference"`
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req travelRequest
	if !s.decode(w, r, &req) {
		return
	}
	switch {
	case len(req.SelectedPlaces) < 2:
		writeDetail(w, http.StatusUnprocessableEntity, "at least two places are required")
		return
	case strings.TrimSpace(req.StartLocation) == "":
		writeDetail(w, http.StatusUnprocessableEntity, "startLocation is required")
		return
	}
	pref := strings.ToLower(strings.TrimSpace(req.OptimizationPreference))
	if pref != preferFastest && pref != preferCheapest {
		writeDetail(w, http.StatusUnprocessableEntity, "optimizationPreference must be fastest or cheapest")
		return
	}
	if !s.delay(r.Context(), 0) {
		return
	}
	legs := BuildItinerary(req.SelectedPlaces, strings.TrimSpace(req.StartLocation), pref)
	writeJSON(w, http.StatusOK, map[string]any{"travelOptions": legs})
}

type tokenResponse struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var signUp bool
	switch ps.ByName("method") {
	case "accounts:signUp":
		signUp = true
	case "accounts:signInWithPassword":
	default:
		http.NotFound(w, r)
		return
	}
	var c credentials
	if !s.decode(w, r, &c) {
		return
	}
	var (
		acct account
		err  error
	)
	if signUp {
		acct, err = s.accounts.signUp(c)
	} else {
		acct, err = s.accounts.signIn(c)
	}
	if err != nil {
		var aerr *accountError
		if !errors.As(err, &aerr) {
			s.logger.Printf("stubserver: accounts: %v", err)
			writeIdentityError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
			return
		}
		writeIdentityError(w, http.StatusBadRequest, aerr.code)
		return
	}
	token, expires, err := s.accounts.issue(acct)
	if err != nil {
		s.logger.Printf("stubserver: sign token: %v", err)
		writeIdentityError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		IDToken:      token,
		Email:        acct.email,
		RefreshToken: acct.id,
		ExpiresIn:    strconv.Itoa(int(expires.Sub(s.now()).Seconds())),
		LocalID:      acct.id,
	})
}

func (s *Server) requireToken(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, err := s.accounts.verify(r.Header.Get("Authorization")); err != nil {
			writeDetail(w, http.StatusUnauthorized, err.Error())
			return
		}
		next(w, r, ps)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "payload exceeds limit")
			return false
		}
		writeDetail(w, http.StatusBadRequest, "unable to read body")
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// delay simulates service latency. It reports false when the client went away.
func (s *Server) delay(ctx context.Context, override time.Duration) bool {
	wait := s.settings.Latency
	if override > 0 {
		wait = override
	}
	if wait <= 0 {
		return true
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("stubserver: %s %s status=%d request_id=%s elapsed=%s",
			r.Method, r.URL.Path, rec.status, r.Header.Get("X-Request-ID"), time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeIdentityError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": code},
	})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
