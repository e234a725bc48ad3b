// Package wiki fetches short page summaries from an encyclopedia REST
// endpoint for popup rendering. Fetch failures are never fatal: callers
// receive a degraded, link-only summary instead.
package wiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

const (
	// DefaultBaseURL is the encyclopedia REST API root
	DefaultBaseURL = "https://en.wikipedia.org"

	// ExtractWordLimit caps the summary text rendered in a popup
	ExtractWordLimit = 50

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "chronomap-backend/1.0"
)

// Options configures the summary client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit rate.Limit // requests per second against the upstream
	Burst     int
}

// Client fetches page summaries with outbound rate limiting
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a summary client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 10
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	return &Client{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(opts.RateLimit, opts.Burst),
	}
}

// Summary fetches and truncates the summary for an encyclopedia page
// title. Any non-2xx response or transport error is returned as an error;
// degradation policy belongs to the caller.
func (c *Client) Summary(ctx context.Context, pageTitle string) (*models.Summary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wiki: rate limiter")
	}

	endpoint := c.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(pageTitle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wiki: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "wiki: fetch summary %s", pageTitle)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Warn("wiki: summary fetch failed",
			zap.String("page", pageTitle),
			zap.Int("status", resp.StatusCode),
		)
		return nil, eris.Errorf("wiki: summary %s: status %d", pageTitle, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wiki: read body")
	}

	var upstream models.SummaryUpstream
	if err := json.Unmarshal(body, &upstream); err != nil {
		return nil, eris.Wrap(err, "wiki: decode summary")
	}

	return &models.Summary{
		Title:     upstream.Title,
		Extract:   TruncateWords(upstream.Extract, ExtractWordLimit),
		Thumbnail: upstream.Thumbnail.Source,
		PageURL:   upstream.ContentURLs.Desktop.Page,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// PageTitleFromURL derives the summary-endpoint title segment from a full
// encyclopedia article URL
func PageTitleFromURL(articleURL string) string {
	u, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	const prefix = "/wiki/"
	if !strings.HasPrefix(u.Path, prefix) {
		return ""
	}
	title := strings.TrimPrefix(u.Path, prefix)
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	return title
}

// TruncateWords cuts text to at most n words, appending an ellipsis when
// anything was dropped
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}

// Degraded builds the link-only fallback used when a fetch fails
func Degraded(title, articleURL string) *models.Summary {
	return &models.Summary{
		Title:     title,
		PageURL:   articleURL,
		Degraded:  true,
		FetchedAt: time.Now().UTC(),
	}
}
