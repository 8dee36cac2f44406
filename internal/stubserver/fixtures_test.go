package stubserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixturesLoad(t *testing.T) {
	fx, err := LoadFixtures("")
	require.NoError(t, err)

	city, ok := fx.Lookup("  paris,   FRANCE ")
	require.True(t, ok)
	assert.Equal(t, "Paris", city.Name)
	assert.Len(t, city.Places, 3)

	city, ok = fx.Lookup("Roma centro")
	require.True(t, ok)
	assert.Equal(t, "Rome", city.Name)

	_, ok = fx.Lookup("Springfield")
	assert.False(t, ok)
	_, ok = fx.Lookup("   ")
	assert.False(t, ok)
}

func TestLoadFixturesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.yaml")
	body := "cities:\n  - name: Kyoto\n    places:\n      - title: Kinkaku-ji\n        latitude: 35.0394\n        longitude: 135.7292\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	fx, err := LoadFixtures(path)
	require.NoError(t, err)
	city, ok := fx.Lookup("kyoto")
	require.True(t, ok)
	require.NotNil(t, city.Places[0].Latitude)
	assert.InDelta(t, 35.0394, *city.Places[0].Latitude, 1e-9)
}

func TestParseFixturesRejectsBadDocuments(t *testing.T) {
	for name, body := range map[string]string{
		"no cities":      "cities: []\n",
		"unnamed city":   "cities:\n  - places: []\n",
		"untitled place": "cities:\n  - name: X\n    places:\n      - summary: nope\n",
		"not yaml":       "cities: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFixtures([]byte(body))
			assert.Error(t, err)
		})
	}
}
