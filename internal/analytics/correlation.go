package analytics

import (
	"math"

	"finpulse/internal/series"
)

// CorrelationCell is one entry of a pairwise correlation matrix. Coefficient
// is nil when fewer than 2 overlapping non-nil observations exist; nil means
// "insufficient data", which a renderer must not conflate with a zero
// correlation.
type CorrelationCell struct {
	SeriesA     string   `json:"seriesA"`
	SeriesB     string   `json:"seriesB"`
	Coefficient *float64 `json:"coefficient"`
}

// Correlate computes the full pairwise Pearson correlation matrix over the
// given series, including the diagonal for matrix rendering.
//
// Series are aligned onto a common year axis first; each pair is evaluated
// only over axis positions where both sides carry a value. The matrix is
// symmetric by construction: the mirrored cell reuses the same coefficient.
func Correlate(list []series.NamedSeries) []CorrelationCell {
	table := series.Align(list)

	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}

	cells := make([]CorrelationCell, 0, len(ids)*len(ids))
	coeffs := make(map[[2]string]*float64)

	for i, a := range ids {
		for j, b := range ids {
			if j < i {
				cells = append(cells, CorrelationCell{SeriesA: a, SeriesB: b, Coefficient: coeffs[[2]string{b, a}]})
				continue
			}
			var c *float64
			if i == j {
				c = selfCoefficient(table.Series[a])
			} else {
				c = pearson(table.Series[a], table.Series[b])
			}
			coeffs[[2]string{a, b}] = c
			cells = append(cells, CorrelationCell{SeriesA: a, SeriesB: b, Coefficient: c})
		}
	}
	return cells
}

// selfCoefficient yields the diagonal value: exactly 1 whenever the series
// has at least 2 observations (even a constant series correlates perfectly
// with itself), nil otherwise.
func selfCoefficient(row []*float64) *float64 {
	n := 0
	for _, v := range row {
		if v != nil {
			n++
		}
	}
	if n < 2 {
		return nil
	}
	one := 1.0
	return &one
}

// pearson computes the Pearson coefficient over positions where both rows
// are non-nil. Returns nil for fewer than 2 overlapping points or zero
// variance on either side.
func pearson(a, b []*float64) *float64 {
	var n int
	var sumX, sumY, sumX2, sumY2, sumXY float64

	series.ZipNonNull(a, b, func(_ int, x, y float64) {
		n++
		sumX += x
		sumY += y
		sumX2 += x * x
		sumY2 += y * y
		sumXY += x * y
	})
	if n < 2 {
		return nil
	}

	fn := float64(n)
	num := fn*sumXY - sumX*sumY
	denA := fn*sumX2 - sumX*sumX
	denB := fn*sumY2 - sumY*sumY
	if denA <= 0 || denB <= 0 {
		// Constant series have no defined correlation.
		return nil
	}

	r := num / math.Sqrt(denA*denB)
	// Floating point can push |r| marginally past 1.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return &r
}
