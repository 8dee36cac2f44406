package trip

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PlaceholderImageURL is shown when a place has no usable image.
const PlaceholderImageURL = "https://placehold.co/300x200/e0e7ff/3f51b5?text=No+Image+Found"

// PlaceID is the stable identity of a discovered place.
type PlaceID string

// Coordinates locate a place on the map.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Place is a point of interest returned by the discovery service.
type Place struct {
	ID              PlaceID
	Title           string
	Summary         string
	MainAttraction  string
	ImageURL        string
	Address         string
	Coordinates     *Coordinates
	BestTimeToVisit string
	VisitingHours   string
}

// NewPlaceID derives an id from the normalized title and address so that two
// fetches of the same place compare equal.
func NewPlaceID(title, address string) PlaceID {
	sum := sha256.Sum256([]byte(normalizeKey(title) + "\x00" + normalizeKey(address)))
	return PlaceID(hex.EncodeToString(sum[:8]))
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// Image returns the image URL or the placeholder when none was supplied.
func (p Place) Image() string {
	if strings.TrimSpace(p.ImageURL) == "" {
		return PlaceholderImageURL
	}
	return p.ImageURL
}

// HasCoordinates reports whether the place can be routed precisely.
func (p Place) HasCoordinates() bool {
	return p.Coordinates != nil
}

// identify fills missing ids and drops later duplicates so ids are unique
// within one result set.
func identify(places []Place) []Place {
	if len(places) == 0 {
		return nil
	}
	seen := make(map[PlaceID]struct{}, len(places))
	out := make([]Place, 0, len(places))
	for _, place := range places {
		if place.ID == "" {
			place.ID = NewPlaceID(place.Title, place.Address)
		}
		if _, dup := seen[place.ID]; dup {
			continue
		}
		seen[place.ID] = struct{}{}
		out = append(out, place)
	}
	return out
}
