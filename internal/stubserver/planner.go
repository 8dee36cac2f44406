package stubserver

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Leg is one itinerary entry on the wire.
type Leg struct {
	TimeSlot string `json:"time_slot"`
	Type     string `json:"type"`
	Activity string `json:"activity"`
	Details  string `json:"details"`
	Location string `json:"location"`
}

const (
	preferFastest  = "fastest"
	preferCheapest = "cheapest"

	dayStart      = 9 * time.Hour
	lunchAfter    = 12 * time.Hour
	visitDuration = 90 * time.Minute
	lunchDuration = time.Hour
)

type travelMode struct {
	name    string
	kmh     float64
	minimum time.Duration
}

var modes = map[string]travelMode{
	preferFastest:  {name: "taxi", kmh: 25, minimum: 10 * time.Minute},
	preferCheapest: {name: "public transport", kmh: 12, minimum: 20 * time.Minute},
}

// BuildItinerary orders places and schedules a one-day plan starting at 09:00.
// The fastest preference visits the nearest unvisited place next; cheapest
// keeps the given order. Exactly one lunch leg is inserted, after the first
// visit that ends at or past noon, or after the last visit otherwise.
func BuildItinerary(places []Place, start, preference string) []Leg {
	mode, ok := modes[preference]
	if !ok {
		mode = modes[preferFastest]
	}
	ordered := places
	if preference != preferCheapest {
		ordered = nearestNeighbour(places)
	}

	clock := dayStart
	legs := make([]Leg, 0, len(ordered)*2+1)
	lunched := false
	from := start
	var prev *Place
	for i := range ordered {
		place := ordered[i]
		leave, distance := clock, -1.0
		if prev != nil {
			distance = haversineKM(*prev, place)
		}
		travel := travelTime(mode, distance)
		clock += travel
		legs = append(legs, Leg{
			TimeSlot: slot(leave, clock),
			Type:     "travel",
			Activity: fmt.Sprintf("Travel to %s by %s", place.Title, mode.name),
			Details:  travelDetails(mode, distance, travel),
			Location: fmt.Sprintf("%s to %s", from, place.Title),
		})

		arrive := clock
		clock += visitDuration
		details := place.MainAttraction
		if place.VisitingHours != "" {
			details = strings.TrimSpace(fmt.Sprintf("%s. Open %s", details, place.VisitingHours))
			details = strings.TrimPrefix(details, ". ")
		}
		legs = append(legs, Leg{
			TimeSlot: slot(arrive, clock),
			Type:     "attraction",
			Activity: "Visit " + place.Title,
			Details:  details,
			Location: place.Title,
		})

		last := i == len(ordered)-1
		if !lunched && (clock >= lunchAfter || last) {
			lunchStart := clock
			clock += lunchDuration
			legs = append(legs, Leg{
				TimeSlot: slot(lunchStart, clock),
				Type:     "meal",
				Activity: "Lunch break",
				Details:  "Pick a café close to the last stop.",
				Location: "Nearby café",
			})
			lunched = true
		}
		from = place.Title
		prev = &ordered[i]
	}
	return legs
}

func nearestNeighbour(places []Place) []Place {
	var located, rest []Place
	for _, p := range places {
		if p.Latitude != nil && p.Longitude != nil {
			located = append(located, p)
		} else {
			rest = append(rest, p)
		}
	}
	if len(located) < 2 {
		return append(located, rest...)
	}
	ordered := make([]Place, 0, len(places))
	ordered = append(ordered, located[0])
	remaining := append([]Place(nil), located[1:]...)
	for len(remaining) > 0 {
		current := ordered[len(ordered)-1]
		best := 0
		for i := 1; i < len(remaining); i++ {
			if haversineKM(current, remaining[i]) < haversineKM(current, remaining[best]) {
				best = i
			}
		}
		ordered = append(ordered, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return append(ordered, rest...)
}

// haversineKM returns the great-circle distance, or -1 when either place has
// no coordinates.
func haversineKM(a, b Place) float64 {
	if a.Latitude == nil || a.Longitude == nil || b.Latitude == nil || b.Longitude == nil {
		return -1
	}
	const earthRadiusKM = 6371.0
	lat1, lat2 := radians(*a.Latitude), radians(*b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(*b.Longitude - *a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func travelTime(mode travelMode, km float64) time.Duration {
	if km < 0 {
		return 2 * mode.minimum
	}
	d := time.Duration(km / mode.kmh * float64(time.Hour)).Round(5 * time.Minute)
	if d < mode.minimum {
		return mode.minimum
	}
	return d
}

func travelDetails(mode travelMode, km float64, d time.Duration) string {
	if km < 0 {
		return fmt.Sprintf("About %d minutes by %s.", int(d.Minutes()), mode.name)
	}
	return fmt.Sprintf("%.1f km, about %d minutes by %s.", km, int(d.Minutes()), mode.name)
}

func slot(from, to time.Duration) string {
	return clockTime(from) + " - " + clockTime(to)
}

func clockTime(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
