package ingest

import (
	"sort"
	"sync"

	"finpulse/internal/analytics"
	"finpulse/internal/series"
)

// IndustrySegment is one industry group's share of a year's revenue.
type IndustrySegment struct {
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// Store holds the ingested yearly financial records. It is populated once
// at startup from the workbook and read concurrently by the handlers.
type Store struct {
	mu         sync.RWMutex
	metrics    map[string]map[int]float64
	holders    map[int][]analytics.Holding
	industries map[int][]IndustrySegment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		metrics:    make(map[string]map[int]float64),
		holders:    make(map[int][]analytics.Holding),
		industries: make(map[int][]IndustrySegment),
	}
}

// SetMetric records one metric value for a year.
func (s *Store) SetMetric(metric string, year int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics[metric] == nil {
		s.metrics[metric] = make(map[int]float64)
	}
	s.metrics[metric][year] = value
}

// SetHolders records the ranked shareholder list for a year.
func (s *Store) SetHolders(year int, holders []analytics.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holders[year] = holders
}

// SetIndustries records the industry breakdown for a year.
func (s *Store) SetIndustries(year int, segments []IndustrySegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.industries[year] = segments
}

// Metrics returns the known metric identifiers, sorted.
func (s *Store) Metrics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.metrics))
	for m := range s.metrics {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MetricSeries returns one metric's yearly series, or false when the
// metric is unknown.
func (s *Store) MetricSeries(metric string) (series.NamedSeries, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.metrics[metric]
	if !ok {
		return series.NamedSeries{}, false
	}
	return series.NewNamedSeries(metric, values), true
}

// Years returns every year any metric has data for, ascending.
func (s *Store) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int]struct{})
	for _, byYear := range s.metrics {
		for y := range byYear {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LatestYear returns the most recent year with data, or false when empty.
func (s *Store) LatestYear() (int, bool) {
	years := s.Years()
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

// Holders returns the ranked shareholder list for the requested year. When
// the exact year is absent, the closest available year is served instead,
// mirroring how annual-report coverage lags the filter selection. The
// returned year is the one actually served.
func (s *Store) Holders(year int) ([]analytics.Holding, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if holders, ok := s.holders[year]; ok {
		return holders, year, true
	}

	best := 0
	found := false
	for y := range s.holders {
		if !found || abs(y-year) < abs(best-year) {
			best = y
			found = true
		}
	}
	if !found {
		return nil, 0, false
	}
	return s.holders[best], best, true
}

// Industries returns the industry breakdown for a year, or false when the
// year has none.
func (s *Store) Industries(year int) ([]IndustrySegment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	segments, ok := s.industries[year]
	return segments, ok
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
