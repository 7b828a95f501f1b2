package series

import (
	"sort"
)

// YearValue represents a single observation in a yearly time series.
// A nil Value means "no data for this year", which is distinct from zero.
type YearValue struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// NamedSeries is an identified, year-ordered sparse time series.
// Points are sorted ascending by year with no duplicate years.
type NamedSeries struct {
	ID     string      `json:"id"`
	Points []YearValue `json:"points"`
}

// F returns a pointer to v. Convenience constructor for optional values.
func F(v float64) *float64 {
	return &v
}

// NewNamedSeries builds a NamedSeries from a year-keyed value map.
// Years are emitted in ascending order, which establishes the ordering
// invariant for all downstream operations.
func NewNamedSeries(id string, values map[int]float64) NamedSeries {
	years := make([]int, 0, len(values))
	for y := range values {
		years = append(years, y)
	}
	sort.Ints(years)

	points := make([]YearValue, 0, len(years))
	for _, y := range years {
		v := values[y]
		points = append(points, YearValue{Year: y, Value: &v})
	}
	return NamedSeries{ID: id, Points: points}
}

// Years returns the years of all points, in series order.
func (s NamedSeries) Years() []int {
	years := make([]int, len(s.Points))
	for i, p := range s.Points {
		years[i] = p.Year
	}
	return years
}

// ValueAt returns the value recorded for the given year, or nil when the
// year is absent or carries no data.
func (s NamedSeries) ValueAt(year int) *float64 {
	// Points are sorted, binary search keeps alignment O(Y log Y).
	i := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Year >= year })
	if i < len(s.Points) && s.Points[i].Year == year {
		return s.Points[i].Value
	}
	return nil
}

// Latest returns the most recent point carrying a non-nil value, or false
// when the series has no data at all.
func (s NamedSeries) Latest() (YearValue, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Value != nil {
			return s.Points[i], true
		}
	}
	return YearValue{}, false
}

// ConfidenceBand holds the lower and upper bound series accompanying a
// forecast series. Both bounds share the forecast series' years.
type ConfidenceBand struct {
	Lower NamedSeries `json:"lower"`
	Upper NamedSeries `json:"upper"`
}

// MapNonNull applies fn to every non-nil value and returns the results as a
// new slice of optionals, preserving nil positions. It replaces scattered
// nil checks in value transforms.
func MapNonNull(values []*float64, fn func(float64) float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		mapped := fn(*v)
		out[i] = &mapped
	}
	return out
}

// ZipNonNull walks two equal-length optional slices and calls fn only at
// positions where both sides carry a value.
func ZipNonNull(a, b []*float64, fn func(i int, av, bv float64)) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] == nil || b[i] == nil {
			continue
		}
		fn(i, *a[i], *b[i])
	}
}
