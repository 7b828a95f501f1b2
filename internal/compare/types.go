package compare

import (
	"sync/atomic"

	"finpulse/internal/analytics"
	"finpulse/internal/series"
)

// Kind selects which dimension a comparison fans out over.
type Kind string

const (
	// KindMetrics compares financial metrics (revenue, eps, ...).
	KindMetrics Kind = "metrics"
	// KindIndustries compares industry group segments.
	KindIndustries Kind = "industries"
)

// Valid reports whether k is a known comparison kind.
func (k Kind) Valid() bool {
	return k == KindMetrics || k == KindIndustries
}

// FilterState carries the dashboard's current filter selection into the
// engine. It is consumed as an immutable parameter; the engine never owns
// or mutates UI state.
type FilterState struct {
	Years          []int    `json:"years,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	IndustryGroups []string `json:"industryGroups,omitempty"`
	MultiYear      bool     `json:"multiYear"`
	ForecastYears  int      `json:"forecastYears,omitempty"`
}

// Request describes one comparison invocation. Token is assigned by the
// aggregator from a monotonically increasing source; callers compare tokens
// to discard superseded results (see TokenSource).
type Request struct {
	Kind                Kind        `json:"kind" validate:"required,oneof=metrics industries"`
	IDs                 []string    `json:"ids" validate:"required,min=1,dive,required"`
	Filter              FilterState `json:"filter"`
	IncludeCorrelations bool        `json:"includeCorrelations"`
	Token               uint64      `json:"token,omitempty"`
}

// EntityData is the raw material fetched for one entity: its historical
// observations, the server-side forecast continuation, and the optional
// confidence band and model accuracy that accompany the forecast.
type EntityData struct {
	Historical []series.YearValue
	Forecast   []series.YearValue
	Band       *series.ConfidenceBand
	Accuracy   *float64
}

// ComparisonResult is the single render-ready structure handed to
// presentation. Entities that failed are present only in Errors; everything
// else is fully derived and immutable.
type ComparisonResult struct {
	Token        uint64                              `json:"token"`
	Kind         Kind                                `json:"kind"`
	AlignedTable series.AlignedTable                 `json:"alignedTable"`
	Growth       map[string][]analytics.GrowthPoint  `json:"growth"`
	Correlations []analytics.CorrelationCell         `json:"correlations,omitempty"`
	Bands        map[string]series.ConfidenceBand    `json:"bands,omitempty"`
	Accuracy     map[string]float64                  `json:"accuracy,omitempty"`
	Errors       map[string]string                   `json:"errors,omitempty"`
}

// Empty reports whether every requested entity failed, leaving nothing to
// render. Presentation decides how to show "no data"; this is never an
// error condition.
func (r *ComparisonResult) Empty() bool {
	return len(r.AlignedTable.Series) == 0
}

// TokenSource issues monotonically increasing request tokens. A result
// whose token is below the latest issued one belongs to a superseded
// request and must be discarded on arrival.
type TokenSource struct {
	n atomic.Uint64
}

// Next reserves and returns the next token.
func (t *TokenSource) Next() uint64 {
	return t.n.Add(1)
}

// Latest returns the most recently issued token without consuming one.
func (t *TokenSource) Latest() uint64 {
	return t.n.Load()
}

// IsStale reports whether a result token has been superseded by a newer
// request.
func (t *TokenSource) IsStale(token uint64) bool {
	return token < t.n.Load()
}
