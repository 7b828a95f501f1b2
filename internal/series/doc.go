// Package series defines the yearly time-series model shared by the
// analytics and comparison engine.
//
// The central decision is the explicit optional value: a missing year is a
// nil *float64, never zero. Financial series routinely have gaps (a company
// reports a metric for some years only, forecasts cover years history does
// not), and collapsing "absent" into 0 silently corrupts growth rates and
// correlations. Every structure in this package threads *float64 through to
// JSON, where nil marshals to null for the dashboard.
//
// Align is the workhorse: it merges any number of sparse series onto one
// ascending, deduplicated year axis so that downstream consumers can index
// all series by a single position. Complexity is O(S·Y log Y) for S series
// over a union of Y years, which is negligible at dashboard scale.
package series
