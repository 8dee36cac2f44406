package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kingrea/waypoint/internal/trip"
)

const (
	suggestPath = "/api/suggest"
	travelPath  = "/api/get-travel-details"

	maxResponseBytes = 4 << 20
)

// TokenSource yields the bearer token attached to each request.
type TokenSource func(ctx context.Context) (string, error)

// Logger is the subset of the project logger the client needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Options configure a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Token             TokenSource
	HTTPClient        *http.Client
	Logger            Logger
}

// Client calls the discovery and planning services.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	token    TokenSource
	validate *validator.Validate
	logger   Logger
}

var (
	_ trip.Discoverer = (*Client)(nil)
	_ trip.Planner    = (*Client)(nil)
)

// NewClient returns a Client for opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote: base url is required")
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:  base,
		timeout:  opts.Timeout,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		token:    opts.Token,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   opts.Logger,
	}, nil
}

// Discover asks the discovery service for places near req.Address.
func (c *Client) Discover(ctx context.Context, req trip.DiscoveryRequest) ([]trip.Place, error) {
	var resp suggestResponse
	if err := c.post(ctx, trip.IntentDiscover, suggestPath, suggestRequest{Address: req.Address}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &trip.TransportError{Op: trip.IntentDiscover, Status: http.StatusOK, Detail: resp.Error}
	}
	places := make([]trip.Place, 0, len(resp.Places))
	for _, wp := range resp.Places {
		place := wp.toPlace()
		if place.Title == "" {
			c.logf("discover: dropping place without a title at %q", place.Address)
			continue
		}
		places = append(places, place)
	}
	c.logf("discover: %d places for %q", len(places), req.Address)
	return places, nil
}

// Plan asks the planning service to order req.SelectedPlaces into legs.
func (c *Client) Plan(ctx context.Context, req trip.PlanningRequest) ([]trip.Leg, error) {
	body := travelRequest{
		SelectedPlaces:         make([]wirePlace, 0, len(req.SelectedPlaces)),
		StartLocation:          req.StartLocation,
		OptimizationPreference: string(req.Preference),
	}
	for _, place := range req.SelectedPlaces {
		body.SelectedPlaces = append(body.SelectedPlaces, fromPlace(place))
	}
	var resp travelResponse
	if err := c.post(ctx, trip.IntentPlan, travelPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &trip.TransportError{Op: trip.IntentPlan, Status: http.StatusOK, Detail: resp.Error}
	}
	legs := make([]trip.Leg, 0, len(resp.TravelOptions))
	for i, wl := range resp.TravelOptions {
		if err := c.validate.Struct(wl); err != nil {
			c.logf("plan: dropping leg %d: %v", i, err)
			continue
		}
		legs = append(legs, wl.toLeg())
	}
	c.logf("plan: %d legs (%s) from %q", len(legs), req.Preference, req.StartLocation)
	return legs, nil
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &trip.TransportError{Op: op, Err: err}
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return &trip.TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &trip.TransportError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return &trip.TransportError{Op: op, Err: fmt.Errorf("authorize: %w", err)}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logf("%s %s failed request_id=%s: %v", op, path, requestID, err)
		return &trip.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &trip.TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logf("%s %s status=%d request_id=%s elapsed=%s", op, path, resp.StatusCode, requestID, time.Since(started).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure errorBody
		_ = json.Unmarshal(body, &failure)
		return &trip.TransportError{Op: op, Status: resp.StatusCode, Detail: failure.message()}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &trip.TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf("remote: "+format, args...)
	}
}
