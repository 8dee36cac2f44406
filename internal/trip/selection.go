package trip

// Selection is the ordered, id-unique set of places the user picked.
// Insertion order is selection order. The zero value is empty and ready to use.
type Selection struct {
	order  []PlaceID
	places map[PlaceID]Place
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{places: map[PlaceID]Place{}}
}

// Toggle removes the place if one with the same id is present, otherwise it
// appends it. It reports whether the place is selected afterwards.
func (s *Selection) Toggle(place Place) bool {
	if s.places == nil {
		s.places = map[PlaceID]Place{}
	}
	if _, ok := s.places[place.ID]; ok {
		s.remove(place.ID)
		return false
	}
	s.places[place.ID] = place
	s.order = append(s.order, place.ID)
	return true
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id PlaceID) bool {
	if s == nil {
		return false
	}
	_, ok := s.places[id]
	return ok
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.order = nil
	s.places = map[PlaceID]Place{}
}

// Len returns the number of selected places.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Places returns a snapshot of the selection in selection order.
func (s *Selection) Places() []Place {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	out := make([]Place, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.places[id])
	}
	return out
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []PlaceID {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	return append([]PlaceID(nil), s.order...)
}

func (s *Selection) remove(id PlaceID) {
	delete(s.places, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}
