package trip

import (
	"context"
	"strings"
)

// Search starts a discovery for query. Selection and itinerary are cleared
// before the returned Job runs, so stale picks are never shown against new
// candidates. A blank query is rejected without a network call.
func (s *Session) Search(ctx context.Context, query string) (Job, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, s.surface(invalid("query", ErrEmptyQuery))
	}

	s.problem = nil
	s.query = trimmed
	s.candidates = nil
	s.selection.Clear()
	s.planning.Reset()

	discoverer := s.discoverer
	req := DiscoveryRequest{Address: trimmed}
	run := s.discovery.Run(ctx, func(ctx context.Context) ([]Place, error) {
		return discoverer.Discover(ctx, req)
	})
	s.logger.Printf("discover: query=%q token=%d", trimmed, s.discovery.Token())
	return func() Result {
		return discoveryResult{query: trimmed, completion: run()}
	}, nil
}

func (s *Session) applyDiscovery(res discoveryResult) Outcome {
	completion := res.completion
	if completion.Err == nil {
		completion.Value = identify(completion.Value)
		if len(completion.Value) == 0 {
			completion.Err = ErrNoPlaces
		}
	}
	if !s.discovery.Apply(completion) {
		s.logger.Printf("discover: dropped superseded result query=%q token=%d", res.query, completion.Ticket.Token)
		return Outcome{Intent: IntentDiscover}
	}
	if completion.Err != nil {
		s.candidates = nil
		s.surface(completion.Err)
		s.logger.Printf("discover: query=%q failed: %v", res.query, completion.Err)
		return Outcome{Intent: IntentDiscover, Applied: true, Err: completion.Err}
	}
	s.candidates = completion.Value
	if !s.startExplicit {
		s.startLocation = res.query
	}
	s.logger.Printf("discover: query=%q places=%d", res.query, len(s.candidates))
	return Outcome{Intent: IntentDiscover, Applied: true}
}
