package trip

import (
	"context"
	"time"
)

const (
	IntentDiscover = "discover"
	IntentPlan     = "plan"
)

// Discoverer is the place-discovery collaborator.
type Discoverer interface {
	Discover(ctx context.Context, req DiscoveryRequest) ([]Place, error)
}

// Planner is the itinerary-planning collaborator.
type Planner interface {
	Plan(ctx context.Context, req PlanningRequest) ([]Leg, error)
}

// Principal is the authenticated identity a Session acts for.
type Principal interface {
	Valid(now time.Time) bool
}

// Logger is the subset of the application logger the session uses.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Job performs the remote half of an operation. It may run on any goroutine.
type Job func() Result

// Result is the completion of a Job; hand it to Session.Apply on the owning loop.
type Result interface {
	intent() string
}

type discoveryResult struct {
	query      string
	completion Completion[[]Place]
}

func (discoveryResult) intent() string { return IntentDiscover }

type planningResult struct {
	completion Completion[[]Leg]
}

func (planningResult) intent() string { return IntentPlan }

// Outcome describes what Apply did with a Result.
type Outcome struct {
	Intent  string
	Applied bool
	Err     error
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger routes session logs to l.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock lets tests control the time used for principal checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPreference sets the initial optimization preference.
func WithPreference(p Preference) Option {
	return func(s *Session) {
		if p == PreferFastest || p == PreferCheapest {
			s.preference = p
		}
	}
}

// Session is the single state object of the trip planner. It is not safe for
// concurrent use; all methods must be called from one event loop.
type Session struct {
	discoverer Discoverer
	planner    Planner
	logger     Logger
	clock      func() time.Time

	principal Principal

	query      string
	candidates []Place
	selection  *Selection
	discovery  *Lifecycle[[]Place]
	planning   *Lifecycle[[]Leg]

	startLocation string
	startExplicit bool
	preference    Preference
	lastRequest   PlanningRequest

	problem error
}

// NewSession wires a session to its collaborators.
func NewSession(discoverer Discoverer, planner Planner, opts ...Option) *Session {
	s := &Session{
		discoverer: discoverer,
		planner:    planner,
		logger:     nopLogger{},
		clock:      time.Now,
		selection:  NewSelection(),
		discovery:  NewLifecycle[[]Place](IntentDiscover),
		planning:   NewLifecycle[[]Leg](IntentPlan),
		preference: PreferFastest,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn attaches the authenticated principal.
func (s *Session) SignIn(p Principal) {
	s.principal = p
	s.problem = nil
}

// SignOut drops the principal and every piece of trip state.
func (s *Session) SignOut() {
	s.principal = nil
	s.discovery.Reset()
	s.planning.Reset()
	s.candidates = nil
	s.selection.Clear()
	s.query = ""
	s.startLocation = ""
	s.startExplicit = false
	s.problem = nil
}

// Authenticated reports whether a valid principal is attached.
func (s *Session) Authenticated() bool {
	return s.principal != nil && s.principal.Valid(s.clock())
}

// Apply routes a completed Job back into the session.
func (s *Session) Apply(r Result) Outcome {
	switch res := r.(type) {
	case discoveryResult:
		return s.applyDiscovery(res)
	case planningResult:
		return s.applyPlanning(res)
	default:
		return Outcome{}
	}
}

// Run executes job synchronously and applies its result. Sequential drivers
// such as the CLI use it; event loops run the job elsewhere and call Apply.
func (s *Session) Run(job Job) Outcome {
	if job == nil {
		return Outcome{}
	}
	return s.Apply(job())
}

// Problem returns the error last surfaced to the user, if any.
func (s *Session) Problem() error { return s.problem }

// Busy reports whether any intent is pending.
func (s *Session) Busy() bool {
	return s.discovery.Pending() || s.planning.Pending()
}

// DiscoveryStatus returns the state of the discover intent.
func (s *Session) DiscoveryStatus() Status { return s.discovery.Status() }

// PlanningStatus returns the state of the plan intent.
func (s *Session) PlanningStatus() Status { return s.planning.Status() }

// Query returns the last accepted search query.
func (s *Session) Query() string { return s.query }

// Candidates returns the current discovery result.
func (s *Session) Candidates() []Place {
	return append([]Place(nil), s.candidates...)
}

// Candidate looks up a current candidate by id.
func (s *Session) Candidate(id PlaceID) (Place, bool) {
	for _, place := range s.candidates {
		if place.ID == id {
			return place, true
		}
	}
	return Place{}, false
}

// Selection returns the selected places in selection order.
func (s *Session) Selection() []Place { return s.selection.Places() }

// Selected reports whether id is part of the selection.
func (s *Session) Selected(id PlaceID) bool { return s.selection.Contains(id) }

// Toggle flips the selection state of a current candidate and reports whether
// it is selected afterwards.
func (s *Session) Toggle(id PlaceID) (bool, error) {
	place, ok := s.Candidate(id)
	if !ok {
		return false, invalid("selection", ErrNotCandidate)
	}
	return s.selection.Toggle(place), nil
}

// StartLocation returns the planning start point.
func (s *Session) StartLocation() string { return s.startLocation }

// SetStartLocation records a start point typed by the user.
func (s *Session) SetStartLocation(value string) {
	s.startLocation = value
	s.startExplicit = value != ""
}

// Preference returns the current optimization preference.
func (s *Session) Preference() Preference { return s.preference }

// SetPreference changes the optimization preference. Re-planning under the new
// goal is a separate RequestItinerary call.
func (s *Session) SetPreference(p Preference) error {
	if p != PreferFastest && p != PreferCheapest {
		return invalid("preference", ErrUnknownPreference)
	}
	s.preference = p
	return nil
}

// Itinerary returns the applied itinerary, if any.
func (s *Session) Itinerary() (Itinerary, bool) {
	legs, ok := s.planning.Value()
	if !ok {
		return Itinerary{}, false
	}
	return Itinerary{Request: s.lastRequest, Legs: append([]Leg(nil), legs...)}, true
}

// Highlights marks the itinerary legs that take place at selected places.
func (s *Session) Highlights() []bool {
	it, ok := s.Itinerary()
	if !ok {
		return nil
	}
	return Highlights(it.Legs, s.selection.Places())
}

func (s *Session) surface(err error) error {
	s.problem = err
	return err
}

func (s *Session) requireAuth() error {
	if s.Authenticated() {
		return nil
	}
	return s.surface(invalid("session", ErrNotAuthenticated))
}
