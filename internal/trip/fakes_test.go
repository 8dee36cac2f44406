package trip

import (
	"context"
	"fmt"
	"time"
)

type validPrincipal struct{}

func (validPrincipal) Valid(time.Time) bool { return true }

type expiredPrincipal struct{}

func (expiredPrincipal) Valid(time.Time) bool { return false }

type stubDiscoverer struct {
	results map[string][]Place
	errs    map[string]error
	calls   []string
}

func (d *stubDiscoverer) Discover(_ context.Context, req DiscoveryRequest) ([]Place, error) {
	d.calls = append(d.calls, req.Address)
	if err, ok := d.errs[req.Address]; ok {
		return nil, err
	}
	return d.results[req.Address], nil
}

type stubPlanner struct {
	legs  []Leg
	err   error
	calls []PlanningRequest
}

func (p *stubPlanner) Plan(_ context.Context, req PlanningRequest) ([]Leg, error) {
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	if req.Preference == PreferCheapest {
		out := append([]Leg(nil), p.legs...)
		for i := range out {
			out[i].Details = "by bus"
		}
		return out, nil
	}
	return p.legs, nil
}

func place(title, address string) Place {
	return Place{ID: NewPlaceID(title, address), Title: title, Address: address}
}

func parisPlaces() []Place {
	return []Place{
		place("Eiffel Tower", "Champ de Mars, Paris"),
		place("Louvre Museum", "Rue de Rivoli, Paris"),
		place("Notre-Dame", "Île de la Cité, Paris"),
	}
}

func romePlaces() []Place {
	return []Place{
		place("Colosseum", "Piazza del Colosseo, Rome"),
		place("Pantheon", "Piazza della Rotonda, Rome"),
	}
}

func parisLegs() []Leg {
	return []Leg{
		{TimeSlot: "9:00 AM - 9:30 AM", Type: LegTravel, Activity: "Travel to Champ de Mars", Location: "Hotel X to Champ de Mars"},
		{TimeSlot: "9:30 AM - 11:00 AM", Type: LegAttraction, Activity: "Visit Eiffel Tower", Location: "Eiffel Tower, Paris"},
		{TimeSlot: "11:00 AM - 12:00 PM", Type: LegMeal, Activity: "Lunch", Location: "Café de Flore"},
		{TimeSlot: "12:00 PM - 2:00 PM", Type: LegAttraction, Activity: "Visit Louvre", Location: "Louvre Museum"},
	}
}

func newTestSession(d Discoverer, p Planner) *Session {
	s := NewSession(d, p)
	s.SignIn(validPrincipal{})
	return s
}

func mustJob(job Job, err error) Job {
	if err != nil {
		panic(fmt.Sprintf("unexpected error: %v", err))
	}
	return job
}
