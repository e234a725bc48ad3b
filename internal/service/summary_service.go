package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/chronomap-backend-go/internal/metrics"
	"github.com/jengzang/chronomap-backend-go/internal/models"
	"github.com/jengzang/chronomap-backend-go/internal/repository"
	"github.com/jengzang/chronomap-backend-go/internal/wiki"
)

// SummaryFetcher is the upstream dependency of the summary service
type SummaryFetcher interface {
	Summary(ctx context.Context, pageTitle string) (*models.Summary, error)
}

// SummaryService serves popup summaries through a read-through cache.
// Upstream failures degrade to a link-only summary, never an error.
type SummaryService struct {
	repo      *repository.SummaryRepository
	client    SummaryFetcher
	collector *metrics.Collector
	ttl       time.Duration
}

// NewSummaryService creates a summary service. With a cache repository a
// janitor goroutine prunes entries past the TTL, the same eviction the
// read path applies, so the table does not grow without bound.
func NewSummaryService(repo *repository.SummaryRepository, client SummaryFetcher, collector *metrics.Collector, ttl time.Duration) *SummaryService {
	s := &SummaryService{
		repo:      repo,
		client:    client,
		collector: collector,
		ttl:       ttl,
	}

	if repo != nil && ttl > 0 {
		go s.janitor()
	}

	return s
}

// janitor evicts expired cache rows periodically
func (s *SummaryService) janitor() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.PruneExpired()
	}
}

// PruneExpired removes cache entries older than the TTL
func (s *SummaryService) PruneExpired() {
	pruned, err := s.repo.Prune(s.ttl)
	if err != nil {
		zap.L().Warn("summary cache prune failed", zap.Error(err))
		return
	}
	remaining, err := s.repo.Count()
	if err != nil {
		zap.L().Warn("summary cache count failed", zap.Error(err))
		return
	}
	zap.L().Info("summary cache pruned",
		zap.Int64("removed", pruned),
		zap.Int("remaining", remaining),
	)
}

// Get resolves the summary for an encyclopedia page title
func (s *SummaryService) Get(ctx context.Context, pageTitle, articleURL string) *models.Summary {
	if s.repo != nil {
		cached, err := s.repo.Get(pageTitle)
		if err != nil {
			zap.L().Warn("summary cache read failed", zap.Error(err))
		} else if cached != nil && time.Since(cached.FetchedAt) < s.ttl {
			if s.collector != nil {
				s.collector.SummaryHits.Inc()
			}
			return cached
		}
	}
	if s.collector != nil {
		s.collector.SummaryMisses.Inc()
	}

	summary, err := s.client.Summary(ctx, pageTitle)
	if err != nil {
		if s.collector != nil {
			s.collector.SummaryFailures.Inc()
		}
		zap.L().Warn("summary fetch degraded to link",
			zap.String("page", pageTitle),
			zap.Error(err),
		)
		// degraded fallbacks are not cached, the next popup retries
		return wiki.Degraded(pageTitle, articleURL)
	}

	if s.repo != nil {
		if err := s.repo.Put(pageTitle, summary); err != nil {
			zap.L().Warn("summary cache write failed", zap.Error(err))
		}
	}
	return summary
}

// ForFeature resolves the summary for a point feature, or nil when the
// feature carries no reference link (no network call is made)
func (s *SummaryService) ForFeature(ctx context.Context, f models.Feature) *models.Summary {
	articleURL, _ := f.Properties["wikipedia"].(string)
	if articleURL == "" {
		return nil
	}
	pageTitle := wiki.PageTitleFromURL(articleURL)
	if pageTitle == "" {
		return wiki.Degraded(titleOf(f), articleURL)
	}
	return s.Get(ctx, pageTitle, articleURL)
}

// Prewarm fetches summaries for the first n linked features with bounded
// concurrency so early popups hit the cache
func (s *SummaryService) Prewarm(ctx context.Context, fc *models.FeatureCollection, n int) {
	if n <= 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	warmed := 0
	seen := make(map[string]bool)
	for _, f := range fc.Features {
		if warmed >= n {
			break
		}
		articleURL, _ := f.Properties["wikipedia"].(string)
		if articleURL == "" || seen[articleURL] {
			continue
		}
		seen[articleURL] = true
		warmed++

		feature := f
		g.Go(func() error {
			s.ForFeature(gctx, feature)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Warn("summary prewarm interrupted", zap.Error(err))
	}
	zap.L().Info("summary prewarm finished", zap.Int("pages", warmed))
}

func titleOf(f models.Feature) string {
	if t, ok := f.Properties["title"].(string); ok {
		return t
	}
	return "Untitled"
}
