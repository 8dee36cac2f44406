package trip

import "context"

// Status is the coarse state of one asynchronous intent.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ticket identifies one run of an intent. A completion is only applied while
// its ticket is still the lifecycle's current one.
type Ticket struct {
	Intent string
	Token  uint64
}

// Completion is the outcome of a run, carried back to the event loop.
type Completion[T any] struct {
	Ticket Ticket
	Value  T
	Err    error
}

// Lifecycle tracks at most one applied result for a named intent. It is owned
// by a single event loop; only the thunk returned by Run may execute elsewhere.
type Lifecycle[T any] struct {
	intent string
	token  uint64
	status Status
	value  T
	err    error
	cancel context.CancelFunc
}

// NewLifecycle creates an idle lifecycle for intent.
func NewLifecycle[T any](intent string) *Lifecycle[T] {
	return &Lifecycle[T]{intent: intent}
}

// Intent returns the intent name.
func (l *Lifecycle[T]) Intent() string { return l.intent }

// Status returns the current state.
func (l *Lifecycle[T]) Status() Status { return l.status }

// Token returns the latest issued token.
func (l *Lifecycle[T]) Token() uint64 { return l.token }

// Pending reports whether a run is outstanding.
func (l *Lifecycle[T]) Pending() bool { return l.status == StatusPending }

// Value returns the applied value when the last run succeeded.
func (l *Lifecycle[T]) Value() (T, bool) {
	if l.status != StatusSucceeded {
		var zero T
		return zero, false
	}
	return l.value, true
}

// Err returns the applied error when the last run failed.
func (l *Lifecycle[T]) Err() error {
	if l.status != StatusFailed {
		return nil
	}
	return l.err
}

// Run starts a new run: it supersedes any outstanding one, moves to pending,
// and returns the thunk that performs fn. The thunk may run on any goroutine;
// its Completion must be handed back to Apply on the owning loop.
func (l *Lifecycle[T]) Run(ctx context.Context, fn func(context.Context) (T, error)) func() Completion[T] {
	l.invalidate()
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	var zero T
	l.value = zero
	l.err = nil
	l.status = StatusPending
	ticket := Ticket{Intent: l.intent, Token: l.token}
	return func() Completion[T] {
		value, err := fn(runCtx)
		return Completion[T]{Ticket: ticket, Value: value, Err: err}
	}
}

// Current reports whether ticket belongs to the outstanding run.
func (l *Lifecycle[T]) Current(ticket Ticket) bool {
	return ticket.Intent == l.intent && ticket.Token == l.token && l.status == StatusPending
}

// Apply records c if it belongs to the outstanding run and reports whether it
// did. Superseded completions are dropped without a state change.
func (l *Lifecycle[T]) Apply(c Completion[T]) bool {
	if !l.Current(c.Ticket) {
		return false
	}
	l.release()
	if c.Err != nil {
		var zero T
		l.value = zero
		l.err = c.Err
		l.status = StatusFailed
		return true
	}
	l.value = c.Value
	l.err = nil
	l.status = StatusSucceeded
	return true
}

// Reset returns to idle and invalidates any outstanding run.
func (l *Lifecycle[T]) Reset() {
	l.invalidate()
	var zero T
	l.value = zero
	l.err = nil
	l.status = StatusIdle
}

func (l *Lifecycle[T]) invalidate() {
	l.token++
	l.release()
}

func (l *Lifecycle[T]) release() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
