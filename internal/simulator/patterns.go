package simulator

import (
	"math"
	"time"
)

// Pattern weights how likely a transaction is at a given moment. Weights
// are relative and must lie in (0, 1].
type Pattern interface {
	Weight(t time.Time) float64
	Name() string
}

var (
	PatternSteady Pattern = &SteadyPattern{}
	PatternDaily  Pattern = &DailyPattern{}
	PatternWeekly Pattern = &WeeklyPattern{}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return PatternDaily
	case "weekly":
		return PatternWeekly
	default:
		return PatternSteady
	}
}

// SteadyPattern - uniform activity
type SteadyPattern struct{}

func (p *SteadyPattern) Weight(time.Time) float64 {
	return 1
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - busy afternoons and evenings, quiet nights
type DailyPattern struct{}

func (p *DailyPattern) Weight(t time.Time) float64 {
	hour := t.Hour()

	switch {
	case hour >= 12 && hour <= 20:
		return 1.0
	case hour >= 8 && hour <= 11:
		return 0.7
	case hour >= 21 && hour <= 23:
		return 0.5
	default:
		return 0.15
	}
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// WeeklyPattern - daily cycle with heavier weekends
type WeeklyPattern struct{}

func (p *WeeklyPattern) Weight(t time.Time) float64 {
	w := PatternDaily.Weight(t)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return w
	default:
		return math.Max(0.05, w*0.6)
	}
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}
