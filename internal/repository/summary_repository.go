package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

// SummaryRepository handles database operations for the summary cache
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Get retrieves a cached summary by encyclopedia page title.
// Returns (nil, nil) on a cache miss.
func (r *SummaryRepository) Get(pageTitle string) (*models.Summary, error) {
	query := `
		SELECT title, extract, thumbnail, page_url, degraded, fetched_at
		FROM summary_cache
		WHERE page_title = ?
	`

	s := &models.Summary{}
	var degraded int
	err := r.db.QueryRow(query, pageTitle).Scan(
		&s.Title,
		&s.Extract,
		&s.Thumbnail,
		&s.PageURL,
		&degraded,
		&s.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached summary: %w", err)
	}

	s.Degraded = degraded != 0
	return s, nil
}

// Put upserts a summary into the cache
func (r *SummaryRepository) Put(pageTitle string, s *models.Summary) error {
	query := `
		INSERT INTO summary_cache (
			page_title, title, extract, thumbnail, page_url, degraded, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(page_title) DO UPDATE SET
			title = excluded.title,
			extract = excluded.extract,
			thumbnail = excluded.thumbnail,
			page_url = excluded.page_url,
			degraded = excluded.degraded,
			fetched_at = excluded.fetched_at
	`

	degraded := 0
	if s.Degraded {
		degraded = 1
	}

	_, err := r.db.Exec(query,
		pageTitle,
		s.Title,
		s.Extract,
		s.Thumbnail,
		s.PageURL,
		degraded,
		s.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Prune removes cache entries older than the TTL
func (r *SummaryRepository) Prune(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	result, err := r.db.Exec("DELETE FROM summary_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune summary cache: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return n, nil
}

// Count returns the number of cached summaries
func (r *SummaryRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM summary_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached summaries: %w", err)
	}
	return n, nil
}
