package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

func collection(points ...[2]float64) *models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for i, p := range points {
		fc.AddFeature(models.NewPointFeature(p[0], p[1], map[string]interface{}{
			"featureId": uint32(i),
			"title":     "Event",
			"date":      "Unknown",
		}))
	}
	return fc
}

func world() models.BBox {
	return models.BBox{West: -180, South: -85, East: 180, North: 85}
}

func TestNearbyPointsClusterAtLowZoom(t *testing.T) {
	// two points ~150m apart in Paris
	fc := collection([2]float64{2.3522, 48.8566}, [2]float64{2.3535, 48.8570})
	idx := New(fc, DefaultOptions())

	nodes := idx.GetClusters(world(), 2)
	require.Len(t, nodes, 1)
	assert.Equal(t, true, nodes[0].Properties["cluster"])
	count := nodes[0].Properties["point_count"].(int)
	assert.GreaterOrEqual(t, count, 2)
}

func TestPointsSeparatePastMaxZoom(t *testing.T) {
	fc := collection([2]float64{2.3522, 48.8566}, [2]float64{2.3535, 48.8570})
	idx := New(fc, DefaultOptions())

	nodes := idx.GetClusters(world(), DefaultOptions().MaxZoom+1)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		_, isCluster := n.Properties["cluster"]
		assert.False(t, isCluster)
	}
}

func TestDistantPointsNeverCluster(t *testing.T) {
	fc := collection([2]float64{2.35, 48.85}, [2]float64{139.69, 35.68})
	idx := New(fc, DefaultOptions())

	nodes := idx.GetClusters(world(), 3)
	assert.Len(t, nodes, 2)
}

func TestExpansionZoomSplitsCluster(t *testing.T) {
	fc := collection([2]float64{2.3522, 48.8566}, [2]float64{2.3535, 48.8570})
	idx := New(fc, DefaultOptions())

	nodes := idx.GetClusters(world(), 0)
	require.Len(t, nodes, 1)
	id := nodes[0].Properties["cluster_id"].(uint32)

	zoom, err := idx.GetClusterExpansionZoom(id)
	require.NoError(t, err)
	assert.LessOrEqual(t, zoom, DefaultOptions().MaxZoom+1)

	// at the expansion zoom the two points are no longer one node
	split := idx.GetClusters(world(), zoom)
	assert.Greater(t, len(split), 1)
}

func TestClusterCenter(t *testing.T) {
	fc := collection([2]float64{10, 50}, [2]float64{10.001, 50.001})
	idx := New(fc, DefaultOptions())

	nodes := idx.GetClusters(world(), 0)
	require.Len(t, nodes, 1)
	id := nodes[0].Properties["cluster_id"].(uint32)

	lng, lat, err := idx.ClusterCenter(id)
	require.NoError(t, err)
	assert.InDelta(t, 10.0005, lng, 0.01)
	assert.InDelta(t, 50.0005, lat, 0.01)
}

func TestGetLeavesPaging(t *testing.T) {
	fc := collection(
		[2]float64{0, 0},
		[2]float64{0.0001, 0.0001},
		[2]float64{0.0002, 0.0002},
		[2]float64{0.0003, 0.0001},
	)
	idx := New(fc, DefaultOptions())

	nodes := idx.GetClusters(world(), 0)
	require.Len(t, nodes, 1)
	id := nodes[0].Properties["cluster_id"].(uint32)

	all, err := idx.GetLeaves(id, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	page, err := idx.GetLeaves(id, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	// pages are disjoint
	first, err := idx.GetLeaves(id, 2, 0)
	require.NoError(t, err)
	for _, a := range first {
		for _, b := range page {
			assert.NotEqual(t, a.Properties["featureId"], b.Properties["featureId"])
		}
	}
}

func TestBBoxFiltering(t *testing.T) {
	fc := collection([2]float64{2.35, 48.85}, [2]float64{139.69, 35.68})
	idx := New(fc, DefaultOptions())

	europe := models.BBox{West: -10, South: 35, East: 30, North: 60}
	nodes := idx.GetClusters(europe, 5)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Event", nodes[0].Properties["title"])
}

func TestEmptyCollection(t *testing.T) {
	idx := New(models.NewFeatureCollection(), DefaultOptions())
	assert.Empty(t, idx.GetClusters(world(), 3))
	assert.Equal(t, 0, idx.PointCount())
}

func TestMinPointsRespected(t *testing.T) {
	opts := DefaultOptions()
	opts.MinPoints = 3
	fc := collection([2]float64{2.3522, 48.8566}, [2]float64{2.3535, 48.8570})
	idx := New(fc, opts)

	// a pair below MinPoints stays unclustered
	nodes := idx.GetClusters(world(), 2)
	assert.Len(t, nodes, 2)
}

func TestAbbreviatedCounts(t *testing.T) {
	assert.Equal(t, "9", abbreviate(9))
	assert.Equal(t, "999", abbreviate(999))
	assert.Equal(t, "1.5k", abbreviate(1500))
	assert.Equal(t, "12k", abbreviate(12000))
}

func TestSizeTierStepping(t *testing.T) {
	assert.Equal(t, models.TierSmall, models.TierForCount(2))
	assert.Equal(t, models.TierMedium, models.TierForCount(10))
	assert.Equal(t, models.TierLarge, models.TierForCount(30))
}
