package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is Earth's mean radius in meters
const EarthRadiusMeters = 6371000.0

// HaversineDistance calculates the great-circle distance between two points
// in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// MetersPerPixel returns the ground resolution of one screen pixel at the
// given latitude and zoom level (256px web-mercator tiles)
func MetersPerPixel(lat float64, zoom int) float64 {
	return 156543.03392 * math.Cos(lat*math.Pi/180) / math.Exp2(float64(zoom))
}

// ClickRadiusMeters converts a screen-pixel hit-test radius into meters at
// the given latitude and zoom. The map's click hit-test is a pixel-space
// box, so coincident-point grouping follows pixel distance, not exact
// coordinate equality.
func ClickRadiusMeters(lat float64, zoom int, pixels float64) float64 {
	return MetersPerPixel(lat, zoom) * pixels
}
