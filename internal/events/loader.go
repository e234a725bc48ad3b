// Package events loads the pre-built historical event dataset and derives
// the point-feature collection the map consumes. The dataset is static;
// every load replaces the derived collection wholesale.
package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jengzang/chronomap-backend-go/internal/dates"
	"github.com/jengzang/chronomap-backend-go/internal/models"
)

// Load reads the event dataset from a local file path or an http(s) URL,
// decodes it leniently, and validates each record once into the tagged
// Event form. Records whose coordinate source cannot be extracted are
// skipped with a warning; the rest of the dataset is unaffected.
func Load(ctx context.Context, source string) ([]models.Event, error) {
	raw, err := readSource(ctx, source)
	if err != nil {
		return nil, eris.Wrapf(err, "events: read dataset %s", source)
	}

	var records []models.RawEvent
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, eris.Wrap(err, "events: decode dataset")
	}

	validated := make([]models.Event, 0, len(records))
	for i, rec := range records {
		ev, err := validate(i, rec)
		if err != nil {
			zap.L().Warn("events: skipping record",
				zap.Int("index", i),
				zap.String("label", rec.Label),
				zap.Error(err),
			)
			continue
		}
		validated = append(validated, ev)
	}

	zap.L().Info("events: dataset loaded",
		zap.String("source", source),
		zap.Int("records", len(records)),
		zap.Int("valid", len(validated)),
	)
	return validated, nil
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}

// validate 一次性校验：确定坐标来源与日期精度
func validate(index int, rec models.RawEvent) (models.Event, error) {
	ev := models.Event{
		Index:     index,
		Title:     strings.TrimSpace(rec.Label),
		Wikipedia: strings.TrimSpace(rec.Wikipedia),
	}
	if ev.Title == "" {
		ev.Title = "Untitled"
	}

	if rec.Date != nil {
		ev.Date = dates.Detect(rec.Date.PointInTime)
	}

	switch {
	case rec.Coords != nil:
		ev.Source = models.CoordSingle
		ev.Coords = []models.GeoPoint{*rec.Coords}
	case rec.Locations != nil:
		ev.Source = models.CoordMulti
		for i, loc := range rec.Locations {
			if loc.Coords == nil {
				return models.Event{}, eris.Errorf("location %d has no coords", i)
			}
			ev.Coords = append(ev.Coords, *loc.Coords)
		}
	default:
		// no coordinate source at all: kept, yields zero features
		ev.Source = models.CoordNone
	}

	return ev, nil
}
