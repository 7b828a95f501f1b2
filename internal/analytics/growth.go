package analytics

import (
	"math"

	"finpulse/internal/series"
)

// GrowthPoint pairs a yearly value with its growth rate against the nearest
// prior observed value. GrowthRate is nil only for the first observed point
// of a series.
type GrowthPoint struct {
	Year       int      `json:"year"`
	Value      float64  `json:"value"`
	GrowthRate *float64 `json:"growthRate"`
}

// GrowthRate returns the percentage change from previous to current,
// computed against the absolute value of previous so that the sign of the
// change survives a negative base (a loss shrinking is positive growth).
//
// When previous is exactly zero the rate is reported as 0. This understates
// genuine growth from a zero base, but it keeps dashboards rendering a
// number instead of propagating Inf/NaN through chart scales, matching how
// the reporting pipeline has always treated zero bases.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return ((current - previous) / math.Abs(previous)) * 100
}

// SeriesGrowth computes year-over-year growth for every observed point of s.
//
// The first observed point carries a nil rate (nothing to compare against).
// Every later point is compared with the nearest preceding non-nil value, so
// gap years are skipped rather than treated as zero. Points whose own value
// is nil are omitted from the result.
func SeriesGrowth(s series.NamedSeries) []GrowthPoint {
	var out []GrowthPoint
	var prev *float64

	for _, p := range s.Points {
		if p.Value == nil {
			continue
		}
		gp := GrowthPoint{Year: p.Year, Value: *p.Value}
		if prev != nil {
			rate := Round2(GrowthRate(*p.Value, *prev))
			gp.GrowthRate = &rate
		}
		out = append(out, gp)
		prev = p.Value
	}
	return out
}

// DescriptiveStats summarizes a single series for the overview cards:
// extremes with the first year they occur, mean, latest observed value and
// the most recent year-over-year growth.
type DescriptiveStats struct {
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Avg          float64  `json:"avg"`
	MinYear      int      `json:"minYear"`
	MaxYear      int      `json:"maxYear"`
	LatestValue  float64  `json:"latestValue"`
	RecentGrowth *float64 `json:"recentGrowth"`
}

// Describe computes descriptive statistics over the observed points of s.
// Returns false when the series carries no data. Avg and RecentGrowth are
// rounded to 2 decimal places; MinYear/MaxYear report the first year at
// which the extremum occurs when values repeat.
func Describe(s series.NamedSeries) (DescriptiveStats, bool) {
	var stats DescriptiveStats
	var sum float64
	count := 0

	for _, p := range s.Points {
		if p.Value == nil {
			continue
		}
		v := *p.Value
		if count == 0 || v < stats.Min {
			stats.Min = v
			stats.MinYear = p.Year
		}
		if count == 0 || v > stats.Max {
			stats.Max = v
			stats.MaxYear = p.Year
		}
		sum += v
		count++
	}
	if count == 0 {
		return DescriptiveStats{}, false
	}

	stats.Avg = Round2(sum / float64(count))

	growth := SeriesGrowth(s)
	last := growth[len(growth)-1]
	stats.LatestValue = last.Value
	stats.RecentGrowth = last.GrowthRate
	return stats, true
}

// Round2 rounds to 2 decimal places, the display precision used across the
// dashboard's derived rates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
