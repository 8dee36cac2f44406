package trip

import (
	"context"
	"strings"
)

// RequestItinerary asks the planner for an itinerary over selection, starting
// at startLocation and optimized for preference. Preconditions are checked
// before any network call. Calling it again while a request is outstanding
// supersedes that request.
func (s *Session) RequestItinerary(ctx context.Context, selection []Place, startLocation string, preference Preference) (Job, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if len(selection) < 2 {
		return nil, s.surface(invalid("selection", ErrTooFewPlaces))
	}
	start := strings.TrimSpace(startLocation)
	if start == "" {
		return nil, s.surface(invalid("start location", ErrNoStartLocation))
	}
	if preference != PreferFastest && preference != PreferCheapest {
		return nil, s.surface(invalid("preference", ErrUnknownPreference))
	}

	req := PlanningRequest{
		SelectedPlaces: append([]Place(nil), selection...),
		StartLocation:  start,
		Preference:     preference,
	}
	s.problem = nil
	s.lastRequest = req

	planner := s.planner
	run := s.planning.Run(ctx, func(ctx context.Context) ([]Leg, error) {
		return planner.Plan(ctx, req)
	})
	s.logger.Printf("plan: places=%d start=%q preference=%s token=%d", len(req.SelectedPlaces), start, preference, s.planning.Token())
	return func() Result {
		return planningResult{completion: run()}
	}, nil
}

// Plan requests an itinerary for the current selection, start location and
// preference.
func (s *Session) Plan(ctx context.Context) (Job, error) {
	return s.RequestItinerary(ctx, s.selection.Places(), s.startLocation, s.preference)
}

// Replan switches the preference and requests a new itinerary under it.
func (s *Session) Replan(ctx context.Context, preference Preference) (Job, error) {
	if err := s.SetPreference(preference); err != nil {
		return nil, s.surface(err)
	}
	return s.Plan(ctx)
}

func (s *Session) applyPlanning(res planningResult) Outcome {
	completion := res.completion
	if completion.Err == nil && len(completion.Value) == 0 {
		completion.Err = ErrNoItinerary
	}
	if !s.planning.Apply(completion) {
		s.logger.Printf("plan: dropped superseded result token=%d", completion.Ticket.Token)
		return Outcome{Intent: IntentPlan}
	}
	if completion.Err != nil {
		s.surface(completion.Err)
		s.logger.Printf("plan: failed: %v", completion.Err)
		return Outcome{Intent: IntentPlan, Applied: true, Err: completion.Err}
	}
	s.logger.Printf("plan: legs=%d", len(completion.Value))
	return Outcome{Intent: IntentPlan, Applied: true}
}
