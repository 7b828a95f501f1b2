package services

import (
	"context"
	"log/slog"

	"finpulse/internal/analytics"
	apierrors "finpulse/internal/errors"
	"finpulse/internal/ingest"
	"finpulse/internal/series"
)

// concentrationThresholds are the top-K cut points shown on the ownership
// card.
var concentrationThresholds = []int{1, 5, 10}

// topHoldersShown bounds the ownership pie; the tail collapses into Others.
const topHoldersShown = 10

// MetricOverview is one metric's row on the dashboard overview.
type MetricOverview struct {
	Value      float64  `json:"value"`
	Year       int      `json:"year"`
	GrowthRate *float64 `json:"growthRate"`
}

// Overview is the dashboard landing payload: the latest value and recent
// growth of every known metric.
type Overview struct {
	LatestYear int                       `json:"latestYear"`
	Years      []int                     `json:"years"`
	Metrics    map[string]MetricOverview `json:"metrics"`
}

// MetricDetail is the full derived view of one metric.
type MetricDetail struct {
	Series series.NamedSeries         `json:"series"`
	Growth []analytics.GrowthPoint    `json:"growth"`
	Stats  analytics.DescriptiveStats `json:"stats"`
}

// OwnershipView is the shareholder panel for one year: the displayed slice
// of the ranked register plus the concentration summary. ServedYear may
// differ from RequestedYear when the register lags the filter selection.
type OwnershipView struct {
	RequestedYear int                             `json:"requestedYear"`
	ServedYear    int                             `json:"servedYear"`
	Holders       []analytics.Holding             `json:"holders"`
	Concentration []analytics.ConcentrationSummary `json:"concentration"`
}

// DataService serves the ingested workbook data: overview cards, per-metric
// detail, ownership and industry panels.
type DataService struct {
	store  *ingest.Store
	logger *slog.Logger
}

// NewDataService creates a data service over the ingested store.
func NewDataService(store *ingest.Store, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		store:  store,
		logger: logger.With(slog.String("service", "data")),
	}
}

// Overview assembles the dashboard landing payload.
func (s *DataService) Overview(ctx context.Context) (*Overview, error) {
	latest, ok := s.store.LatestYear()
	if !ok {
		return nil, apierrors.NotFoundError("financial data")
	}

	out := &Overview{
		LatestYear: latest,
		Years:      s.store.Years(),
		Metrics:    make(map[string]MetricOverview),
	}
	for _, metric := range s.store.Metrics() {
		ns, ok := s.store.MetricSeries(metric)
		if !ok {
			continue
		}
		stats, ok := analytics.Describe(ns)
		if !ok {
			continue
		}
		last, _ := ns.Latest()
		out.Metrics[metric] = MetricOverview{
			Value:      stats.LatestValue,
			Year:       last.Year,
			GrowthRate: stats.RecentGrowth,
		}
	}

	s.logger.DebugContext(ctx, "overview assembled",
		slog.Int("latest_year", latest),
		slog.Int("metrics", len(out.Metrics)))
	return out, nil
}

// Metric returns the full derived view of one metric.
func (s *DataService) Metric(ctx context.Context, metric string) (*MetricDetail, error) {
	ns, ok := s.store.MetricSeries(metric)
	if !ok {
		return nil, apierrors.ErrMetricNotFound
	}
	stats, ok := analytics.Describe(ns)
	if !ok {
		return nil, apierrors.ErrMetricNotFound
	}
	return &MetricDetail{
		Series: ns,
		Growth: analytics.SeriesGrowth(ns),
		Stats:  stats,
	}, nil
}

// Ownership returns the shareholder panel for a year. When the exact year
// has no register the closest available year is served; the view reports
// which year that was.
func (s *DataService) Ownership(ctx context.Context, year int) (*OwnershipView, error) {
	if year == 0 {
		latest, ok := s.store.LatestYear()
		if !ok {
			return nil, apierrors.ErrYearNotFound
		}
		year = latest
	}

	holders, served, ok := s.store.Holders(year)
	if !ok {
		return nil, apierrors.ErrYearNotFound
	}
	if served != year {
		s.logger.InfoContext(ctx, "shareholder register served from closest year",
			slog.Int("requested", year),
			slog.Int("served", served))
	}

	return &OwnershipView{
		RequestedYear: year,
		ServedYear:    served,
		Holders:       analytics.TopNWithOthers(holders, topHoldersShown),
		Concentration: analytics.Concentration(holders, concentrationThresholds),
	}, nil
}

// Concentration computes the top-K cumulative ownership summary for a year
// using caller-supplied thresholds; nil thresholds select the defaults.
func (s *DataService) Concentration(ctx context.Context, year int, thresholds []int) (*OwnershipView, error) {
	if len(thresholds) == 0 {
		thresholds = concentrationThresholds
	}

	view, err := s.Ownership(ctx, year)
	if err != nil {
		return nil, err
	}

	holders, _, _ := s.store.Holders(view.ServedYear)
	view.Concentration = analytics.Concentration(holders, thresholds)
	return view, nil
}

// Industries returns the industry revenue breakdown for a year. A zero year
// selects the latest year with metric data.
func (s *DataService) Industries(ctx context.Context, year int) (int, []ingest.IndustrySegment, error) {
	if year == 0 {
		latest, ok := s.store.LatestYear()
		if !ok {
			return 0, nil, apierrors.ErrYearNotFound
		}
		year = latest
	}

	segments, ok := s.store.Industries(year)
	if !ok {
		return 0, nil, apierrors.ErrYearNotFound
	}
	return year, segments, nil
}
