package compare

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finpulse/internal/analytics"
	"finpulse/internal/series"
)

// Provider fetches the raw data for one entity. Implementations own the
// transport details (HTTP collaborator, local store); the aggregator only
// sees the settled EntityData or an error.
type Provider interface {
	FetchEntity(ctx context.Context, kind Kind, id string, filter FilterState) (EntityData, error)
}

// maxFanOut bounds concurrent per-entity fetches against the collaborator.
const maxFanOut = 8

// Aggregator orchestrates a comparison: concurrent per-entity fetches,
// historical/forecast merge, alignment, growth and optional correlation.
// It is safe for concurrent use; each Compare call is independent.
type Aggregator struct {
	provider Provider
	policy   RetryPolicy
	tokens   *TokenSource
	metrics  *Metrics
	logger   *slog.Logger

	baseCurrency string
	rates        analytics.RateTable
}

// NewAggregator creates a comparison aggregator. metrics may be nil.
func NewAggregator(provider Provider, policy RetryPolicy, metrics *Metrics, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		provider: provider,
		policy:   policy,
		tokens:   &TokenSource{},
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "aggregator")),
	}
}

// WithCurrency enables monetary normalization: merged values reported in
// the base currency are converted to the filter's selected currency using
// the year-keyed rate table. Returns the aggregator for chaining.
func (a *Aggregator) WithCurrency(base string, rates analytics.RateTable) *Aggregator {
	a.baseCurrency = base
	a.rates = rates
	return a
}

// Tokens exposes the aggregator's token source so callers can check
// whether a result in hand has been superseded by a newer request.
func (a *Aggregator) Tokens() *TokenSource {
	return a.tokens
}

// convertCurrency rewrites a merged series into the target currency. Kept
// as a copy so the fetched data stays immutable.
func (a *Aggregator) convertCurrency(s series.NamedSeries, target string) series.NamedSeries {
	points := make([]series.YearValue, len(s.Points))
	for i, p := range s.Points {
		points[i] = series.YearValue{Year: p.Year}
		if p.Value != nil {
			v := analytics.Convert(*p.Value, a.baseCurrency, target, p.Year, a.rates)
			points[i].Value = &v
		}
	}
	return series.NamedSeries{ID: s.ID, Points: points}
}

// Compare runs one comparison over the requested entities.
//
// Each entity is fetched concurrently and retried per the policy; a failing
// entity is recorded in the result's Errors map and excluded from the
// aligned table and the correlation matrix, while every other entity still
// produces its full derived view. The error return is reserved for context
// cancellation; per-entity failures never abort the aggregate, and a
// comparison where everything failed yields an empty (not nil) result.
func (a *Aggregator) Compare(ctx context.Context, req Request) (*ComparisonResult, error) {
	token := req.Token
	if token == 0 {
		token = a.tokens.Next()
	}
	start := time.Now()

	a.logger.InfoContext(ctx, "comparison started",
		slog.Uint64("token", token),
		slog.String("kind", string(req.Kind)),
		slog.Int("entities", len(req.IDs)))

	type fetched struct {
		id   string
		data EntityData
		err  error
	}

	results := make([]fetched, len(req.IDs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFanOut)

	policy := a.policy
	policy.OnRetry = func(attempt int, err error) {
		a.metrics.observeRetry()
		a.logger.WarnContext(ctx, "entity fetch retry",
			slog.Uint64("token", token),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}

	for i, id := range req.IDs {
		i, id := i, id
		g.Go(func() error {
			var data EntityData
			err := WithRetry(gctx, policy, func(ctx context.Context) error {
				var ferr error
				data, ferr = a.provider.FetchEntity(ctx, req.Kind, id, req.Filter)
				return ferr
			})
			mu.Lock()
			results[i] = fetched{id: id, data: data, err: err}
			mu.Unlock()
			// Partial failure is tolerated: never propagate the error,
			// or errgroup would cancel the sibling fetches.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		Token:  token,
		Kind:   req.Kind,
		Growth: make(map[string][]analytics.GrowthPoint),
		Errors: make(map[string]string),
	}

	var merged []series.NamedSeries
	for _, f := range results {
		if f.err != nil {
			a.metrics.observeEntityFailure(req.Kind)
			a.logger.WarnContext(ctx, "entity excluded from comparison",
				slog.Uint64("token", token),
				slog.String("entity", f.id),
				slog.String("error", f.err.Error()))
			result.Errors[f.id] = f.err.Error()
			continue
		}

		hist := series.NamedSeries{ID: f.id, Points: f.data.Historical}
		hist = restrictYears(hist, req.Filter.Years)
		s := MergeEntitySeries(f.id, hist.Points, f.data.Forecast)
		if target := req.Filter.Currency; target != "" && a.rates != nil && target != a.baseCurrency {
			s = a.convertCurrency(s, target)
		}
		merged = append(merged, s)

		if f.data.Band != nil {
			if result.Bands == nil {
				result.Bands = make(map[string]series.ConfidenceBand)
			}
			result.Bands[f.id] = *f.data.Band
		}
		if f.data.Accuracy != nil {
			if result.Accuracy == nil {
				result.Accuracy = make(map[string]float64)
			}
			result.Accuracy[f.id] = *f.data.Accuracy
		}
	}

	result.AlignedTable = series.Align(merged)
	for _, s := range merged {
		result.Growth[s.ID] = analytics.SeriesGrowth(s)
	}
	if req.IncludeCorrelations && len(merged) > 1 {
		result.Correlations = analytics.Correlate(merged)
	}

	outcome := "full"
	switch {
	case result.Empty():
		outcome = "empty"
	case len(result.Errors) > 0:
		outcome = "partial"
	}
	a.metrics.observeComparison(outcome, time.Since(start).Seconds())

	a.logger.InfoContext(ctx, "comparison settled",
		slog.Uint64("token", token),
		slog.String("outcome", outcome),
		slog.Int("series", len(merged)),
		slog.Int("failed", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}
