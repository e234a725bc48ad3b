package service

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/jengzang/chronomap-backend-go/internal/metrics"
	"github.com/jengzang/chronomap-backend-go/internal/models"
	"github.com/jengzang/chronomap-backend-go/internal/popup"
)

// ErrSuperseded marks a page render whose session moved on while the
// summary fetch was in flight; the stale result is discarded
var ErrSuperseded = eris.New("popup: page render superseded")

// PopupService coordinates popup sessions with summary resolution
type PopupService struct {
	store     *popup.Store
	dataset   *DatasetService
	summaries *SummaryService
	collector *metrics.Collector
}

// NewPopupService creates a popup service
func NewPopupService(store *popup.Store, dataset *DatasetService, summaries *SummaryService, collector *metrics.Collector) *PopupService {
	return &PopupService{
		store:     store,
		dataset:   dataset,
		summaries: summaries,
		collector: collector,
	}
}

// Open starts a popup session for a click on an unclustered point. All
// features within the hit-test radius become pages of the session.
func (s *PopupService) Open(lat, lon float64, zoom int) (*models.PopupSession, error) {
	hits := s.dataset.PointsAt(lat, lon, zoom)
	if len(hits) == 0 {
		return nil, eris.Errorf("popup: no features at (%f, %f)", lat, lon)
	}
	return s.store.Open(hits), nil
}

// RenderPage navigates a session to the given page and resolves its
// content. The summary fetch runs under the generation current at entry;
// if navigation rotated the generation meanwhile the result is discarded.
func (s *PopupService) RenderPage(ctx context.Context, sessionID string, index int) (*models.PopupPage, error) {
	sess, err := s.store.Navigate(sessionID, index)
	if err != nil {
		return nil, err
	}
	generation := sess.Generation
	feature := sess.Features[index]

	page := &models.PopupPage{
		SessionID: sessionID,
		Index:     index,
		Total:     sess.PageCount(),
		State:     models.PageLoading,
		Title:     titleOf(feature),
	}
	if d, ok := feature.Properties["date"].(string); ok {
		page.Date = d
	}

	// may suspend on the network; only this page's continuation waits
	summary := s.summaries.ForFeature(ctx, feature)

	current, ok := s.store.Generation(sessionID)
	if !ok || current != generation {
		if s.collector != nil {
			s.collector.StaleDiscards.Inc()
		}
		return nil, ErrSuperseded
	}

	page.Summary = summary
	page.State = models.PageRendered
	return page, nil
}

// Close ends a popup session
func (s *PopupService) Close(sessionID string) {
	s.store.Close(sessionID)
}
