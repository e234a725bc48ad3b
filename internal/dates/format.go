// Package dates renders the dataset's partial-precision timestamps into
// display strings. The dataset mixes bare years, year-months and full
// timestamps; anything unparseable passes through unchanged rather than
// failing, matching how the map presents opaque date labels.
package dates

import (
	"regexp"
	"strings"
	"time"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

const (
	// Unknown is the display fallback for an absent date
	Unknown = "Unknown"

	longDateLayout  = "January 2, 2006"
	monthYearLayout = "January 2006"
	clockLayout     = "3:04 PM"
)

var (
	yearRe      = regexp.MustCompile(`^\d{1,4}$`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// normalize 去掉前导正负号和午夜 UTC 时间后缀
func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "T00:00:00Z")
	return s
}

// Detect classifies a raw date string into its precision variant.
// Classification happens once at load time; Format trusts the tag.
func Detect(raw string) models.EventDate {
	if strings.TrimSpace(raw) == "" {
		return models.EventDate{Precision: models.PrecisionUnknown}
	}
	s := normalize(raw)
	switch {
	case yearRe.MatchString(s):
		return models.EventDate{Precision: models.PrecisionYear, Raw: raw}
	case yearMonthRe.MatchString(s):
		if _, err := time.Parse("2006-01", s); err != nil {
			return models.EventDate{Precision: models.PrecisionOpaque, Raw: raw}
		}
		return models.EventDate{Precision: models.PrecisionYearMonth, Raw: raw}
	default:
		if _, err := parseTimestamp(s); err != nil {
			return models.EventDate{Precision: models.PrecisionOpaque, Raw: raw}
		}
		return models.EventDate{Precision: models.PrecisionTimestamp, Raw: raw}
	}
}

// parseTimestamp accepts full RFC 3339 timestamps and bare dates
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Format renders a raw partial-precision date for display.
//   - ""                     → "Unknown"
//   - "1969"                 → "1969"
//   - "1969-07"              → "July 1969"
//   - "1969-07-20T00:00:00Z" → "July 20, 1969"
//   - "1969-07-20T16:00:00Z" → "July 20, 1969, 4:00 PM"
//   - anything malformed     → returned unchanged
func Format(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return Unknown
	}

	s := normalize(raw)

	if yearRe.MatchString(s) {
		return s
	}

	if m := yearMonthRe.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return raw
		}
		return t.Format(monthYearLayout)
	}

	t, err := parseTimestamp(s)
	if err != nil {
		return raw
	}

	t = t.UTC()
	formatted := t.Format(longDateLayout)
	// 仅当时间不是午夜 UTC 时才附加时刻
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
		formatted += ", " + t.Format(clockLayout)
	}
	return formatted
}

// FormatEvent renders an already-classified event date
func FormatEvent(d models.EventDate) string {
	if d.Precision == models.PrecisionUnknown {
		return Unknown
	}
	if d.Precision == models.PrecisionOpaque {
		return d.Raw
	}
	return Format(d.Raw)
}
