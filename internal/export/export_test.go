package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/waypoint/internal/trip"
)

func sampleItinerary() (trip.Itinerary, []trip.Place) {
	selection := []trip.Place{{Title: "Eiffel Tower"}, {Title: "Louvre"}}
	it := trip.Itinerary{
		Request: trip.PlanningRequest{
			SelectedPlaces: selection,
			StartLocation:  "Hotel X",
			Preference:     trip.PreferFastest,
		},
		Legs: []trip.Leg{
			{TimeSlot: "09:00-09:30", Type: trip.LegTravel, Activity: "Metro", Location: "Hotel X to Champ de Mars"},
			{TimeSlot: "09:30-11:30", Type: trip.LegAttraction, Activity: "Climb the tower", Location: "Eiffel Tower", Details: "Book ahead"},
			{TimeSlot: "12:00-13:00", Type: trip.LegMeal, Activity: "Lunch", Location: "Café Marly"},
		},
	}
	return it, selection
}

func TestWriteTextMarksHighlightedLegs(t *testing.T) {
	it, selection := sampleItinerary()
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, it, selection))

	out := buf.String()
	assert.Contains(t, out, "Itinerary from Hotel X (fastest)")
	assert.Contains(t, out, "Stops: Eiffel Tower, Louvre")

	var legLines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "[") {
			legLines = append(legLines, line)
		}
	}
	require.Len(t, legLines, 3)
	assert.True(t, strings.HasPrefix(legLines[0], "  "))
	assert.True(t, strings.HasPrefix(legLines[1], HighlightMarker+" "))
	assert.True(t, strings.HasPrefix(legLines[2], "  "))
	assert.Contains(t, out, "Book ahead")
}

func TestWritePDFProducesDocument(t *testing.T) {
	it, selection := sampleItinerary()
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, it, selection))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 4, 5, 0, time.UTC)
	assert.Equal(t, "itinerary-20260501-090405.pdf", FileName(now, ".pdf"))
	assert.Equal(t, "itinerary-20260501-090405.txt", FileName(now, "txt"))
}
