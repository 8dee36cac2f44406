package remote

import (
	"strings"

	"github.com/kingrea/waypoint/internal/trip"
)

type suggestRequest struct {
	Address string `json:"address"`
}

type suggestResponse struct {
	Places []wirePlace `json:"places"`
	Error  string      `json:"error,omitempty"`
}

type wirePlace struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Image           string   `json:"image"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	BestTimeToVisit string   `json:"best_time_to_visit"`
	VisitingHours   string   `json:"visiting_hours"`
	MainAttraction  string   `json:"main_attraction"`
}

type travelRequest struct {
	SelectedPlaces         []wirePlace `json:"selectedPlaces"`
	StartLocation          string      `json:"startLocation"`
	OptimizationPreference string      `json:"optimizationPreference"`
}

type travelResponse struct {
	TravelOptions []wireLeg `json:"travelOptions"`
	Error         string    `json:"error,omitempty"`
}

type wireLeg struct {
	TimeSlot string `json:"time_slot"`
	Type     string `json:"type" validate:"required,oneof=travel attraction meal"`
	Activity string `json:"activity" validate:"required"`
	Details  string `json:"details"`
	Location string `json:"location"`
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (b errorBody) message() string {
	if b.Detail != "" {
		return b.Detail
	}
	return b.Error
}

func (w wirePlace) toPlace() trip.Place {
	place := trip.Place{
		Title:           strings.TrimSpace(w.Title),
		Summary:         w.Summary,
		MainAttraction:  w.MainAttraction,
		ImageURL:        strings.TrimSpace(w.Image),
		Address:         strings.TrimSpace(w.Address),
		BestTimeToVisit: w.BestTimeToVisit,
		VisitingHours:   w.VisitingHours,
	}
	if w.Latitude != nil && w.Longitude != nil {
		place.Coordinates = &trip.Coordinates{Latitude: *w.Latitude, Longitude: *w.Longitude}
	}
	place.ID = trip.NewPlaceID(place.Title, place.Address)
	return place
}

func fromPlace(p trip.Place) wirePlace {
	w := wirePlace{
		Title:           p.Title,
		Summary:         p.Summary,
		Image:           p.ImageURL,
		Address:         p.Address,
		BestTimeToVisit: p.BestTimeToVisit,
		VisitingHours:   p.VisitingHours,
		MainAttraction:  p.MainAttraction,
	}
	if p.Coordinates != nil {
		lat, lng := p.Coordinates.Latitude, p.Coordinates.Longitude
		w.Latitude, w.Longitude = &lat, &lng
	}
	return w
}

func (w wireLeg) toLeg() trip.Leg {
	return trip.Leg{
		TimeSlot: strings.TrimSpace(w.TimeSlot),
		Type:     trip.LegType(w.Type),
		Activity: w.Activity,
		Details:  w.Details,
		Location: w.Location,
	}
}
