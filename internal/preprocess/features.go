package preprocess

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

const (
	FeatureHour      = "hour"
	FeatureDow       = "dow"
	FeatureIsWeekend = "is_weekend"
	FeatureHourSin   = "hour_sin"
	FeatureHourCos   = "hour_cos"
	FeatureDistKm    = "dist_km"
)

var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// extractor turns a raw row into one numeric cell. ok=false marks the cell
// for median imputation.
type extractor func(r models.RawRecord) (v float64, ok bool)

type derivedFeature struct {
	sources []string
	extract extractor
}

// derived returns the recipe for a computed feature, or false when name is
// expected to come straight from the raw file.
func (p *Preprocessor) derived(name string) (derivedFeature, bool) {
	ts := p.config.TimestampColumn

	switch name {
	case FeatureHour:
		return derivedFeature{
			sources: []string{ts},
			extract: func(r models.RawRecord) (float64, bool) {
				return float64(p.hour(r)), true
			},
		}, true
	case FeatureDow:
		return derivedFeature{
			sources: []string{ts},
			extract: func(r models.RawRecord) (float64, bool) {
				return float64(p.dow(r)), true
			},
		}, true
	case FeatureIsWeekend:
		return derivedFeature{
			sources: []string{ts},
			extract: func(r models.RawRecord) (float64, bool) {
				if p.dow(r) >= 5 {
					return 1, true
				}
				return 0, true
			},
		}, true
	case FeatureHourSin, FeatureHourCos:
		trig := math.Sin
		if name == FeatureHourCos {
			trig = math.Cos
		}
		return derivedFeature{
			sources: []string{ts},
			extract: func(r models.RawRecord) (float64, bool) {
				h := p.hour(r)
				if h < 0 {
					return 0, true
				}
				return trig(2 * math.Pi * float64(h) / 24), true
			},
		}, true
	case FeatureDistKm:
		cols := []string{
			p.config.LatColumn, p.config.LonColumn,
			p.config.MerchantLatColumn, p.config.MerchantLonColumn,
		}
		return derivedFeature{
			sources: cols,
			extract: func(r models.RawRecord) (float64, bool) {
				var coords [4]float64
				for i, c := range cols {
					v, ok := parseNumber(r.Fields[c])
					if !ok {
						return 0, false
					}
					coords[i] = v
				}
				return Haversine(coords[0], coords[1], coords[2], coords[3]), true
			},
		}, true
	}
	return derivedFeature{}, false
}

func (p *Preprocessor) hour(r models.RawRecord) int {
	t, ok := ParseTimestamp(r.Fields[p.config.TimestampColumn])
	if !ok {
		return -1
	}
	return t.Hour()
}

// dow is the day of week with Monday as 0.
func (p *Preprocessor) dow(r models.RawRecord) int {
	t, ok := ParseTimestamp(r.Fields[p.config.TimestampColumn])
	if !ok {
		return -1
	}
	return (int(t.Weekday()) + 6) % 7
}

// ParseTimestamp tries the accepted layouts in order. The wall-clock
// fields of the input are kept; no zone conversion happens.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func normalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return missingCategory
	}
	return s
}
