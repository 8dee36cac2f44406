package stubserver

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultFixtures []byte

// Place is a fixture place; the same shape is served on the wire.
type Place struct {
	Title           string   `yaml:"title" json:"title"`
	Summary         string   `yaml:"summary" json:"summary"`
	Image           string   `yaml:"image" json:"image"`
	Address         string   `yaml:"address" json:"address"`
	Latitude        *float64 `yaml:"latitude" json:"latitude"`
	Longitude       *float64 `yaml:"longitude" json:"longitude"`
	BestTimeToVisit string   `yaml:"best_time_to_visit" json:"best_time_to_visit"`
	VisitingHours   string   `yaml:"visiting_hours" json:"visiting_hours"`
	MainAttraction  string   `yaml:"main_attraction" json:"main_attraction"`
}

// City groups the places returned for searches that mention it.
type City struct {
	Name    string        `yaml:"name"`
	Aliases []string      `yaml:"aliases"`
	Latency time.Duration `yaml:"latency"`
	// Error makes every search for the city fail with this detail.
	Error  string  `yaml:"error"`
	Places []Place `yaml:"places"`
}

// Fixtures is the parsed fixture file.
type Fixtures struct {
	Cities []City `yaml:"cities"`
}

// LoadFixtures reads path, or the built-in fixtures when path is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	data := defaultFixtures
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("stubserver: read fixtures: %w", err)
		}
		data = raw
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a fixture document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("stubserver: parse fixtures: %w", err)
	}
	if len(fx.Cities) == 0 {
		return nil, errors.New("stubserver: fixtures define no cities")
	}
	for i := range fx.Cities {
		city := &fx.Cities[i]
		city.Name = strings.TrimSpace(city.Name)
		if city.Name == "" {
			return nil, fmt.Errorf("stubserver: city %d has no name", i)
		}
		for j := range city.Places {
			if strings.TrimSpace(city.Places[j].Title) == "" {
				return nil, fmt.Errorf("stubserver: %s place %d has no title", city.Name, j)
			}
		}
	}
	return &fx, nil
}

// Lookup returns the first city whose name or alias appears in query.
func (f *Fixtures) Lookup(query string) (City, bool) {
	needle := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if needle == "" || f == nil {
		return City{}, false
	}
	for _, city := range f.Cities {
		for _, key := range append([]string{city.Name}, city.Aliases...) {
			key = strings.ToLower(strings.TrimSpace(key))
			if key != "" && strings.Contains(needle, key) {
				return city, true
			}
		}
	}
	return City{}, false
}
