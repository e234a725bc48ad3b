// Package cluster implements zoom-indexed spatial clustering of point
// features, following the supercluster design: leaves are projected into
// [0,1] web-mercator space, then greedily merged per zoom level from the
// cluster cutoff down, each level indexed by a flat KD-tree.
package cluster

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

// Options 聚合参数
type Options struct {
	MinZoom   int     // lowest zoom with clustering
	MaxZoom   int     // cluster cutoff; past this every point is unclustered
	Radius    float64 // cluster radius in pixels at the given Extent
	Extent    float64 // tile extent the radius is expressed against
	MinPoints int     // minimum points to form a cluster
	NodeSize  int     // KD-tree leaf size
}

// DefaultOptions mirrors the map layer configuration
func DefaultOptions() Options {
	return Options{
		MinZoom:   0,
		MaxZoom:   14,
		Radius:    50,
		Extent:    512,
		MinPoints: 2,
		NodeSize:  64,
	}
}

const unprocessed = math.MaxInt32

// treePoint is one entry of a zoom level: a leaf or an aggregated cluster
type treePoint struct {
	x, y      float64
	zoom      int     // lowest zoom this point was processed at
	id        uint32  // leaf: source feature index; cluster: encoded id
	parentID  int64   // encoded id of the containing cluster, -1 if none
	numPoints int
}

type zoomLevel struct {
	points []treePoint
	bush   *kdbush
}

func newZoomLevel(points []treePoint, nodeSize int) *zoomLevel {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.x
		ys[i] = p.y
	}
	return &zoomLevel{points: points, bush: newKDBush(xs, ys, nodeSize)}
}

// Index is an immutable cluster index over one feature collection.
// Reloading the dataset builds a fresh Index; readers swap atomically.
type Index struct {
	opts  Options
	fc    *models.FeatureCollection
	trees []*zoomLevel // indexed by zoom, minZoom..maxZoom+1
}

// New builds the per-zoom cluster trees for a feature collection
func New(fc *models.FeatureCollection, opts Options) *Index {
	if opts.Extent == 0 {
		opts = DefaultOptions()
	}
	idx := &Index{
		opts:  opts,
		fc:    fc,
		trees: make([]*zoomLevel, opts.MaxZoom+2),
	}

	leaves := make([]treePoint, 0, len(fc.Features))
	for i, f := range fc.Features {
		leaves = append(leaves, treePoint{
			x:         lngX(f.Lng()),
			y:         latY(f.Lat()),
			zoom:      unprocessed,
			id:        uint32(i),
			parentID:  -1,
			numPoints: 1,
		})
	}

	idx.trees[opts.MaxZoom+1] = newZoomLevel(leaves, opts.NodeSize)
	for z := opts.MaxZoom; z >= opts.MinZoom; z-- {
		idx.trees[z] = newZoomLevel(idx.clusterZoom(idx.trees[z+1], z), opts.NodeSize)
	}
	return idx
}

// clusterZoom merges the points of the zoom+1 level into the clusters of
// the given zoom, mutating the parent level's zoom/parent markers
func (idx *Index) clusterZoom(tree *zoomLevel, zoom int) []treePoint {
	r := idx.opts.Radius / (idx.opts.Extent * math.Exp2(float64(zoom)))
	var clusters []treePoint

	for i := range tree.points {
		p := &tree.points[i]
		if p.zoom <= zoom {
			continue
		}
		p.zoom = zoom

		neighborIDs := tree.bush.Within(p.x, p.y, r)

		numPointsOrigin := p.numPoints
		numPoints := numPointsOrigin
		for _, nid := range neighborIDs {
			if tree.points[nid].zoom > zoom {
				numPoints += tree.points[nid].numPoints
			}
		}

		if numPoints > numPointsOrigin && numPoints >= idx.opts.MinPoints {
			wx := p.x * float64(numPointsOrigin)
			wy := p.y * float64(numPointsOrigin)
			id := idx.encodeClusterID(i, zoom)

			for _, nid := range neighborIDs {
				b := &tree.points[nid]
				if b.zoom <= zoom {
					continue
				}
				b.zoom = zoom
				b.parentID = int64(id)
				wx += b.x * float64(b.numPoints)
				wy += b.y * float64(b.numPoints)
			}

			p.parentID = int64(id)
			clusters = append(clusters, treePoint{
				x:         wx / float64(numPoints),
				y:         wy / float64(numPoints),
				zoom:      unprocessed,
				id:        id,
				parentID:  -1,
				numPoints: numPoints,
			})
		} else {
			clusters = append(clusters, *p)
			if numPoints > 1 {
				for _, nid := range neighborIDs {
					b := &tree.points[nid]
					if b.zoom <= zoom {
						continue
					}
					b.zoom = zoom
					clusters = append(clusters, *b)
				}
			}
		}
	}
	return clusters
}

// Cluster ids encode the origin tree index and zoom so expansion lookups
// can walk back into the level the cluster was formed from. Leaf ids are
// plain source indexes, always below len(fc.Features).
func (idx *Index) encodeClusterID(treeIndex, zoom int) uint32 {
	return uint32((treeIndex<<5)+(zoom+1)) + uint32(len(idx.fc.Features))
}

func (idx *Index) originID(clusterID uint32) int {
	return int(clusterID-uint32(len(idx.fc.Features))) >> 5
}

func (idx *Index) originZoom(clusterID uint32) int {
	return int(clusterID-uint32(len(idx.fc.Features))) % 32
}

func (idx *Index) isCluster(id uint32) bool {
	return id >= uint32(len(idx.fc.Features))
}

func (idx *Index) limitZoom(zoom int) int {
	if zoom < idx.opts.MinZoom {
		return idx.opts.MinZoom
	}
	if zoom > idx.opts.MaxZoom+1 {
		return idx.opts.MaxZoom + 1
	}
	return zoom
}

// GetClusters returns the clusters and unclustered points intersecting
// the bounding box at the given zoom
func (idx *Index) GetClusters(bbox models.BBox, zoom int) []models.Feature {
	minLng := wrapLng(bbox.West)
	maxLng := wrapLng(bbox.East)
	minLat := clamp(bbox.South, -90, 90)
	maxLat := clamp(bbox.North, -90, 90)

	if bbox.East-bbox.West >= 360 {
		minLng, maxLng = -180, 180
	} else if minLng > maxLng {
		east := idx.GetClusters(models.BBox{West: minLng, South: minLat, East: 180, North: maxLat}, zoom)
		west := idx.GetClusters(models.BBox{West: -180, South: minLat, East: maxLng, North: maxLat}, zoom)
		return append(east, west...)
	}

	tree := idx.trees[idx.limitZoom(zoom)]
	ids := tree.bush.Range(lngX(minLng), latY(maxLat), lngX(maxLng), latY(minLat))

	result := make([]models.Feature, 0, len(ids))
	for _, i := range ids {
		p := tree.points[i]
		if p.numPoints > 1 {
			result = append(result, idx.clusterFeature(p))
		} else {
			result = append(result, idx.fc.Features[p.id])
		}
	}
	return result
}

func (idx *Index) clusterFeature(p treePoint) models.Feature {
	return models.NewPointFeature(xLng(p.x), yLat(p.y), map[string]interface{}{
		"cluster":                 true,
		"cluster_id":              p.id,
		"point_count":             p.numPoints,
		"point_count_abbreviated": abbreviate(p.numPoints),
		"tier":                    models.TierForCount(p.numPoints),
	})
}

// GetChildren returns a cluster's direct children at the next zoom
func (idx *Index) GetChildren(clusterID uint32) ([]models.Feature, error) {
	if !idx.isCluster(clusterID) {
		return nil, eris.Errorf("cluster: id %d is not a cluster", clusterID)
	}
	originID := idx.originID(clusterID)
	originZoom := idx.originZoom(clusterID)
	if originZoom < 0 || originZoom >= len(idx.trees) {
		return nil, eris.Errorf("cluster: no such cluster %d", clusterID)
	}
	tree := idx.trees[originZoom]
	if originID >= len(tree.points) {
		return nil, eris.Errorf("cluster: no such cluster %d", clusterID)
	}

	r := idx.opts.Radius / (idx.opts.Extent * math.Exp2(float64(originZoom-1)))
	origin := tree.points[originID]
	ids := tree.bush.Within(origin.x, origin.y, r)

	var children []models.Feature
	for _, i := range ids {
		p := tree.points[i]
		if p.parentID == int64(clusterID) {
			if p.numPoints > 1 {
				children = append(children, idx.clusterFeature(p))
			} else {
				children = append(children, idx.fc.Features[p.id])
			}
		}
	}
	if len(children) == 0 {
		return nil, eris.Errorf("cluster: no such cluster %d", clusterID)
	}
	return children, nil
}

// GetClusterExpansionZoom returns the zoom at which the cluster splits
// into more than one child, the target of the click-to-zoom animation
func (idx *Index) GetClusterExpansionZoom(clusterID uint32) (int, error) {
	expansionZoom := idx.originZoom(clusterID) - 1
	for expansionZoom <= idx.opts.MaxZoom {
		children, err := idx.GetChildren(clusterID)
		if err != nil {
			return 0, err
		}
		expansionZoom++
		if len(children) != 1 {
			break
		}
		props := children[0].Properties
		isCluster, _ := props["cluster"].(bool)
		if !isCluster {
			break
		}
		clusterID = props["cluster_id"].(uint32)
	}
	return expansionZoom, nil
}

// ClusterCenter returns the stored center of a cluster
func (idx *Index) ClusterCenter(clusterID uint32) (lng, lat float64, err error) {
	if !idx.isCluster(clusterID) {
		return 0, 0, eris.Errorf("cluster: id %d is not a cluster", clusterID)
	}
	originZoom := idx.originZoom(clusterID)
	if originZoom < 1 || originZoom >= len(idx.trees) {
		return 0, 0, eris.Errorf("cluster: no such cluster %d", clusterID)
	}
	// the aggregated point lives one level below its origin
	for _, p := range idx.trees[originZoom-1].points {
		if p.id == clusterID && p.numPoints > 1 {
			return xLng(p.x), yLat(p.y), nil
		}
	}
	return 0, 0, eris.Errorf("cluster: no such cluster %d", clusterID)
}

// GetLeaves returns the constituent features of a cluster, paged
func (idx *Index) GetLeaves(clusterID uint32, limit, offset int) ([]models.Feature, error) {
	if limit <= 0 {
		limit = 10
	}
	var leaves []models.Feature
	if _, err := idx.appendLeaves(&leaves, clusterID, limit, offset, 0); err != nil {
		return nil, err
	}
	return leaves, nil
}

func (idx *Index) appendLeaves(result *[]models.Feature, clusterID uint32, limit, offset, skipped int) (int, error) {
	children, err := idx.GetChildren(clusterID)
	if err != nil {
		return skipped, err
	}
	for _, child := range children {
		if isCluster, _ := child.Properties["cluster"].(bool); isCluster {
			count := child.Properties["point_count"].(int)
			if skipped+count <= offset {
				skipped += count // whole child cluster below the offset
			} else {
				skipped, err = idx.appendLeaves(result, child.Properties["cluster_id"].(uint32), limit, offset, skipped)
				if err != nil {
					return skipped, err
				}
			}
		} else if skipped < offset {
			skipped++
		} else {
			*result = append(*result, child)
		}
		if len(*result) == limit {
			break
		}
	}
	return skipped, nil
}

// PointCount returns the number of leaf features in the index
func (idx *Index) PointCount() int {
	return len(idx.fc.Features)
}

// abbreviate shortens large counts for the cluster count label
func abbreviate(n int) string {
	switch {
	case n >= 10000:
		return fmt.Sprintf("%dk", int(math.Round(float64(n)/1000)))
	case n >= 1000:
		return fmt.Sprintf("%.1fk", math.Round(float64(n)/100)/10)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// 经纬度与 [0,1] 墨卡托空间的投影换算

func lngX(lng float64) float64 {
	return lng/360 + 0.5
}

func latY(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	y := 0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi
	return clamp(y, 0, 1)
}

func xLng(x float64) float64 {
	return (x - 0.5) * 360
}

func yLat(y float64) float64 {
	y2 := (180 - y*360) * math.Pi / 180
	return 360*math.Atan(math.Exp(y2))/math.Pi - 90
}

func wrapLng(lng float64) float64 {
	if lng == 180 {
		return 180
	}
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
