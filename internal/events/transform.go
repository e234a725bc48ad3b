package events

import (
	"github.com/jengzang/chronomap-backend-go/internal/dates"
	"github.com/jengzang/chronomap-backend-go/internal/models"
)

// Transform derives the point-feature collection from validated events in
// a single pass. One event with N coordinates yields N independent
// features, each duplicating the event's title, formatted date and link.
// Output ordering mirrors input ordering; no deduplication, no bounds
// validation.
func Transform(evs []models.Event) *models.FeatureCollection {
	fc := models.NewFeatureCollection()
	var featureID uint32

	for _, ev := range evs {
		display := dates.FormatEvent(ev.Date)
		for _, pt := range ev.Coords {
			props := map[string]interface{}{
				"featureId": featureID,
				"eventId":   ev.Index,
				"title":     ev.Title,
				"date":      display,
			}
			if ev.Wikipedia != "" {
				props["wikipedia"] = ev.Wikipedia
			}
			fc.AddFeature(models.NewPointFeature(pt.Lon, pt.Lat, props))
			featureID++
		}
	}

	return fc
}
