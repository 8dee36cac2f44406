package stubserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func located(title string, lat, lng float64) Place {
	return Place{Title: title, Latitude: &lat, Longitude: &lng}
}

func attractionOrder(legs []Leg) []string {
	var out []string
	for _, leg := range legs {
		if leg.Type == "attraction" {
			out = append(out, leg.Location)
		}
	}
	return out
}

func TestFastestVisitsNearestNext(t *testing.T) {
	places := []Place{
		located("West", 48.85, 2.20),
		located("East", 48.85, 2.40),
		located("Middle", 48.85, 2.30),
	}
	legs := BuildItinerary(places, "Hotel", preferFastest)
	assert.Equal(t, []string{"West", "Middle", "East"}, attractionOrder(legs))
	assert.Equal(t, "Hotel to West", legs[0].Location)
	assert.Contains(t, legs[0].Details, "taxi")
}

func TestCheapestKeepsGivenOrder(t *testing.T) {
	places := []Place{
		located("West", 48.85, 2.20),
		located("East", 48.85, 2.40),
		located("Middle", 48.85, 2.30),
	}
	legs := BuildItinerary(places, "Hotel", preferCheapest)
	assert.Equal(t, []string{"West", "East", "Middle"}, attractionOrder(legs))
	assert.Contains(t, legs[0].Details, "public transport")
}

func TestExactlyOneLunch(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		places := make([]Place, n)
		for i := range places {
			places[i] = located(string(rune('A'+i)), 41.89, 12.47+float64(i)/100)
		}
		legs := BuildItinerary(places, "Station", preferFastest)
		meals := 0
		for _, leg := range legs {
			if leg.Type == "meal" {
				meals++
			}
		}
		require.Equal(t, 1, meals, "places=%d", n)
		assert.Len(t, legs, 2*n+1)
		assert.Equal(t, "09:00", legs[0].TimeSlot[:5])
	}
}

func TestPlacesWithoutCoordinatesGoLast(t *testing.T) {
	places := []Place{{Title: "Unknown"}, located("Known", 1, 1), located("Near", 1, 1.01)}
	legs := BuildItinerary(places, "Start", preferFastest)
	assert.Equal(t, []string{"Known", "Near", "Unknown"}, attractionOrder(legs))
}
