package events

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

func TestTransformMultiLocationFanOut(t *testing.T) {
	evs := []models.Event{
		{
			Index:  0,
			Title:  "Silk Road",
			Date:   models.EventDate{Precision: models.PrecisionYear, Raw: "1271"},
			Source: models.CoordMulti,
			Coords: []models.GeoPoint{
				{Lat: 39.9, Lon: 116.4},
				{Lat: 41.0, Lon: 28.9},
				{Lat: 45.4, Lon: 12.3},
			},
		},
	}

	fc := Transform(evs)
	require.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.Equal(t, "Silk Road", f.Properties["title"])
		assert.Equal(t, "1271", f.Properties["date"])
	}
	assert.Equal(t, 116.4, fc.Features[0].Lng())
	assert.Equal(t, 39.9, fc.Features[0].Lat())
}

func TestTransformNoCoordsYieldsNoFeatures(t *testing.T) {
	evs := []models.Event{
		{Index: 0, Title: "Lost battle", Source: models.CoordNone},
	}
	fc := Transform(evs)
	assert.Empty(t, fc.Features)
	assert.Equal(t, "FeatureCollection", fc.Type)
}

func TestTransformDefaultsAndOrdering(t *testing.T) {
	evs := []models.Event{
		{
			Index:  0,
			Title:  "Untitled",
			Source: models.CoordSingle,
			Coords: []models.GeoPoint{{Lat: 1, Lon: 2}},
		},
		{
			Index:     1,
			Title:     "Moon landing",
			Date:      models.EventDate{Precision: models.PrecisionTimestamp, Raw: "1969-07-20T16:00:00Z"},
			Source:    models.CoordSingle,
			Coords:    []models.GeoPoint{{Lat: 0.67, Lon: 23.47}},
			Wikipedia: "https://en.wikipedia.org/wiki/Apollo_11",
		},
	}

	fc := Transform(evs)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, "Untitled", fc.Features[0].Properties["title"])
	assert.Equal(t, "Unknown", fc.Features[0].Properties["date"])
	_, hasLink := fc.Features[0].Properties["wikipedia"]
	assert.False(t, hasLink)

	assert.Equal(t, "Moon landing", fc.Features[1].Properties["title"])
	assert.Equal(t, "July 20, 1969, 4:00 PM", fc.Features[1].Properties["date"])
	assert.Equal(t, "https://en.wikipedia.org/wiki/Apollo_11", fc.Features[1].Properties["wikipedia"])

	// feature IDs are sequential in input order
	assert.Equal(t, uint32(0), fc.Features[0].Properties["featureId"])
	assert.Equal(t, uint32(1), fc.Features[1].Properties["featureId"])
}

func TestLoadSkipsBrokenRecords(t *testing.T) {
	dataset := []map[string]interface{}{
		{
			"label":  "Good event",
			"coords": map[string]float64{"lat": 48.85, "lon": 2.35},
		},
		{
			"label": "Broken event",
			"locations": []map[string]interface{}{
				{"note": "no coords field"},
			},
		},
		{
			"label": "Multi event",
			"date":  map[string]string{"point_in_time": "1969-07"},
			"locations": []map[string]interface{}{
				{"coords": map[string]float64{"lat": 1, "lon": 2}},
				{"coords": map[string]float64{"lat": 3, "lon": 4}},
			},
		},
	}
	raw, err := json.Marshal(dataset)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	evs, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, evs, 2)

	assert.Equal(t, "Good event", evs[0].Title)
	assert.Equal(t, models.CoordSingle, evs[0].Source)

	assert.Equal(t, "Multi event", evs[1].Title)
	assert.Equal(t, models.CoordMulti, evs[1].Source)
	assert.Len(t, evs[1].Coords, 2)
	assert.Equal(t, models.PrecisionYearMonth, evs[1].Date.Precision)

	// broken record skipped, following records unaffected
	fc := Transform(evs)
	assert.Len(t, fc.Features, 3)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadEmptyLabelDefaultsUntitled(t *testing.T) {
	raw := []byte(`[{"coords":{"lat":10,"lon":20}}]`)
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	evs, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "Untitled", evs[0].Title)
}
