package trip

import (
	"fmt"
	"strings"
)

// Preference is the optimization goal sent with a planning request.
type Preference string

const (
	PreferFastest  Preference = "fastest"
	PreferCheapest Preference = "cheapest"
)

// ParsePreference accepts "fastest" or "cheapest" in any case.
func ParsePreference(value string) (Preference, error) {
	switch Preference(strings.ToLower(strings.TrimSpace(value))) {
	case PreferFastest:
		return PreferFastest, nil
	case PreferCheapest:
		return PreferCheapest, nil
	default:
		return "", invalid("preference", fmt.Errorf("%w: %q", ErrUnknownPreference, value))
	}
}

// Toggle returns the other preference.
func (p Preference) Toggle() Preference {
	if p == PreferCheapest {
		return PreferFastest
	}
	return PreferCheapest
}

// LegType tells travel, visits and meals apart.
type LegType string

const (
	LegTravel     LegType = "travel"
	LegAttraction LegType = "attraction"
	LegMeal       LegType = "meal"
)

// Leg is one scheduled segment of an itinerary.
type Leg struct {
	TimeSlot string
	Type     LegType
	Activity string
	Details  string
	Location string
}

// PlanningRequest is the snapshot sent to the planning service.
type PlanningRequest struct {
	SelectedPlaces []Place
	StartLocation  string
	Preference     Preference
}

// DiscoveryRequest is sent to the discovery service.
type DiscoveryRequest struct {
	Address string
}

// Itinerary is an applied planning result, in the order the user executes it.
type Itinerary struct {
	Request PlanningRequest
	Legs    []Leg
}

// MatchesSelection reports whether leg takes place at one of the selected
// places, by substring match of the place title in the leg location. Places
// without a title never match.
func MatchesSelection(leg Leg, selection []Place) bool {
	for _, place := range selection {
		title := strings.TrimSpace(place.Title)
		if title == "" {
			continue
		}
		if strings.Contains(leg.Location, title) {
			return true
		}
	}
	return false
}

// Highlights evaluates MatchesSelection for every leg.
func Highlights(legs []Leg, selection []Place) []bool {
	out := make([]bool, len(legs))
	for i, leg := range legs {
		out[i] = MatchesSelection(leg, selection)
	}
	return out
}
