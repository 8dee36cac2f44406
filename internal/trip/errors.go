package trip

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies errors surfaced by a Session.
type Kind int

const (
	KindNone Kind = iota
	// KindValidation errors are raised locally before any network call.
	KindValidation
	// KindEmptyResult means the collaborator answered but had nothing usable.
	KindEmptyResult
	// KindTransport covers network failures and collaborator-reported errors.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindEmptyResult:
		return "empty-result"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyQuery        = errors.New("enter a location to search")
	ErrTooFewPlaces      = errors.New("need at least two places")
	ErrNoStartLocation   = errors.New("need a starting point")
	ErrUnknownPreference = errors.New("unknown optimization preference")
	ErrNotCandidate      = errors.New("place is not part of the current results")
	ErrNotAuthenticated  = errors.New("sign in before planning a trip")

	ErrNoPlaces    = errors.New("no places found")
	ErrNoItinerary = errors.New("no itinerary options found")
)

// ValidationError rejects input before it reaches a collaborator.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("trip: invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// TransportError reports a failed remote call. Detail carries the
// collaborator's own explanation when it sent one.
type TransportError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	if errors.Is(err, ErrNoPlaces) || errors.Is(err, ErrNoItinerary) {
		return KindEmptyResult
	}
	return KindTransport
}

// Message renders err as text for the user.
func Message(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindValidation:
		return validationMessage(err)
	case KindEmptyResult:
		if errors.Is(err, ErrNoPlaces) {
			return "No famous historical or scenic tourist places found for this location. Please try a different search or be more specific."
		}
		return "Failed to get travel breakdown. No options found."
	case KindTransport:
		return transportMessage(err)
	default:
		return err.Error()
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a location to search."
	case errors.Is(err, ErrTooFewPlaces):
		return "Please select at least 2 places to get a travel breakdown."
	case errors.Is(err, ErrNoStartLocation):
		return "Please enter your starting location."
	case errors.Is(err, ErrUnknownPreference):
		return "Choose either the fastest or the cheapest route."
	case errors.Is(err, ErrNotCandidate):
		return "That place is not part of the current results."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please sign in first."
	default:
		return err.Error()
	}
}

func transportMessage(err error) string {
	var terr *TransportError
	if !errors.As(err, &terr) {
		return "Something went wrong. Please try again."
	}
	switch terr.Op {
	case IntentDiscover:
		return "Failed to fetch tourist places. Please check your network connection or try again later."
	case IntentPlan:
		if terr.Detail != "" {
			return fmt.Sprintf("Failed to get travel breakdown: %s. Please try again.", strings.TrimSuffix(terr.Detail, "."))
		}
		return "Failed to get travel breakdown. Please check your network connection and try again."
	default:
		if terr.Detail != "" {
			return terr.Detail
		}
		return "Something went wrong. Please try again."
	}
}
