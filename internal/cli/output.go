package cli

import (
	"encoding/json"
	"io"

	"github.com/kingrea/waypoint/internal/trip"
)

type placeJSON struct {
	Index           int      `json:"index"`
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Summary         string   `json:"summary,omitempty"`
	Address         string   `json:"address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Image           string   `json:"image"`
	BestTimeToVisit string   `json:"best_time_to_visit,omitempty"`
	VisitingHours   string   `json:"visiting_hours,omitempty"`
	MainAttraction  string   `json:"main_attraction,omitempty"`
}

type legJSON struct {
	TimeSlot    string `json:"time_slot"`
	Type        string `json:"type"`
	Activity    string `json:"activity"`
	Details     string `json:"details,omitempty"`
	Location    string `json:"location,omitempty"`
	Highlighted bool   `json:"highlighted"`
}

type itineraryJSON struct {
	StartLocation string    `json:"start_location"`
	Preference    string    `json:"preference"`
	Stops         []string  `json:"stops"`
	Legs          []legJSON `json:"legs"`
}

func placesJSON(places []trip.Place) []placeJSON {
	out := make([]placeJSON, 0, len(places))
	for i, p := range places {
		item := placeJSON{
			Index:           i + 1,
			ID:              string(p.ID),
			Title:           p.Title,
			Summary:         p.Summary,
			Address:         p.Address,
			Image:           p.Image(),
			BestTimeToVisit: p.BestTimeToVisit,
			VisitingHours:   p.VisitingHours,
			MainAttraction:  p.MainAttraction,
		}
		if p.Coordinates != nil {
			lat, lng := p.Coordinates.Latitude, p.Coordinates.Longitude
			item.Latitude, item.Longitude = &lat, &lng
		}
		out = append(out, item)
	}
	return out
}

func itineraryToJSON(it trip.Itinerary, highlights []bool) itineraryJSON {
	out := itineraryJSON{
		StartLocation: it.Request.StartLocation,
		Preference:    string(it.Request.Preference),
		Stops:         make([]string, 0, len(it.Request.SelectedPlaces)),
		Legs:          make([]legJSON, 0, len(it.Legs)),
	}
	for _, p := range it.Request.SelectedPlaces {
		out.Stops = append(out.Stops, p.Title)
	}
	for i, leg := range it.Legs {
		out.Legs = append(out.Legs, legJSON{
			TimeSlot:    leg.TimeSlot,
			Type:        string(leg.Type),
			Activity:    leg.Activity,
			Details:     leg.Details,
			Location:    leg.Location,
			Highlighted: i < len(highlights) && highlights[i],
		})
	}
	return out
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
