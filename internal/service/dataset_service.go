package service

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jengzang/chronomap-backend-go/internal/cluster"
	"github.com/jengzang/chronomap-backend-go/internal/events"
	"github.com/jengzang/chronomap-backend-go/internal/metrics"
	"github.com/jengzang/chronomap-backend-go/internal/models"
	"github.com/jengzang/chronomap-backend-go/internal/spatial"
	"github.com/jengzang/chronomap-backend-go/internal/state"
)

// ClickRadiusPixels mirrors the map's click hit-test box
const ClickRadiusPixels = 8

// DatasetService owns dataset loading and all feature/cluster queries
type DatasetService struct {
	state       *state.AppState
	collector   *metrics.Collector
	clusterOpts cluster.Options
	source      string
}

// NewDatasetService creates a dataset service reading from the given source
func NewDatasetService(st *state.AppState, collector *metrics.Collector, source string) *DatasetService {
	return &DatasetService{
		state:       st,
		collector:   collector,
		clusterOpts: cluster.DefaultOptions(),
		source:      source,
	}
}

// Reload fetches the dataset, derives the feature collection and cluster
// index, and swaps both in wholesale. On failure the previous state is
// kept untouched.
func (s *DatasetService) Reload(ctx context.Context) error {
	evs, err := events.Load(ctx, s.source)
	if err != nil {
		return eris.Wrap(err, "dataset reload")
	}

	fc := events.Transform(evs)
	idx := cluster.New(fc, s.clusterOpts)
	s.state.Replace(fc, idx)

	if s.collector != nil {
		s.collector.DatasetLoads.Inc()
		s.collector.DatasetFeatures.Set(float64(len(fc.Features)))
	}

	zap.L().Info("dataset committed",
		zap.Int("events", len(evs)),
		zap.Int("features", len(fc.Features)),
	)
	return nil
}

// Features returns the current feature collection
func (s *DatasetService) Features() *models.FeatureCollection {
	return s.state.Collection()
}

// Clusters returns clusters and unclustered points for a viewport query
func (s *DatasetService) Clusters(bbox models.BBox, zoom int) []models.Feature {
	return s.state.Index().GetClusters(bbox, zoom)
}

// Expansion resolves a cluster's expansion zoom and center, the target
// the frontend animates to on a cluster click
func (s *DatasetService) Expansion(clusterID uint32) (*models.ExpansionResponse, error) {
	idx := s.state.Index()

	zoom, err := idx.GetClusterExpansionZoom(clusterID)
	if err != nil {
		return nil, err
	}
	lng, lat, err := idx.ClusterCenter(clusterID)
	if err != nil {
		return nil, err
	}

	return &models.ExpansionResponse{
		ClusterID:     clusterID,
		ExpansionZoom: zoom,
		Lng:           lng,
		Lat:           lat,
	}, nil
}

// Leaves returns one page of a cluster's constituent features
func (s *DatasetService) Leaves(clusterID uint32, limit, offset int) ([]models.Feature, error) {
	return s.state.Index().GetLeaves(clusterID, limit, offset)
}

// PointsAt returns the features coinciding with a click, grouped by the
// pixel hit-test radius at the given zoom rather than exact coordinate
// equality
func (s *DatasetService) PointsAt(lat, lon float64, zoom int) []models.Feature {
	radius := spatial.ClickRadiusMeters(lat, zoom, ClickRadiusPixels)

	var hits []models.Feature
	for _, f := range s.state.Collection().Features {
		if spatial.HaversineDistance(lat, lon, f.Lat(), f.Lng()) <= radius {
			hits = append(hits, f)
		}
	}
	return hits
}
