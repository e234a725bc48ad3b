package models

// SizeTier buckets cluster point counts for the stepped circle scale
type SizeTier string

const (
	TierSmall  SizeTier = "small"  // point_count < 10
	TierMedium SizeTier = "medium" // point_count < 30
	TierLarge  SizeTier = "large"
)

// TierForCount maps a point count onto its size tier
func TierForCount(count int) SizeTier {
	switch {
	case count < 10:
		return TierSmall
	case count < 30:
		return TierMedium
	default:
		return TierLarge
	}
}

// ExpansionResponse carries the zoom/center target for a cluster click
type ExpansionResponse struct {
	ClusterID     uint32  `json:"cluster_id"`
	ExpansionZoom int     `json:"expansion_zoom"`
	Lng           float64 `json:"lng"`
	Lat           float64 `json:"lat"`
}

// BBox 查询范围 [west, south, east, north]
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// Contains reports whether the box contains the given point.
// Boxes crossing the antimeridian are treated as two half-boxes.
func (b BBox) Contains(lng, lat float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lng >= b.West && lng <= b.East
	}
	return lng >= b.West || lng <= b.East
}
