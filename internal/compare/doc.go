// Package compare orchestrates multi-entity comparisons for the dashboard.
//
// A comparison fans one fetch per entity (metric or industry group) out to
// the data provider, joins all results with partial tolerance, merges each
// entity's historical and forecast points into a single series, aligns the
// survivors onto one year axis and derives growth and optional correlation
// views. The central invariant is failure isolation: one failing entity
// lands in ComparisonResult.Errors and disappears from the table, but it
// never blanks the comparison for everyone else.
//
// Transient (timeout-classified) fetch failures are retried under a small
// fixed budget described by RetryPolicy; everything else fails the entity
// immediately. Supersession of in-flight comparisons is handled with
// monotonically increasing tokens from TokenSource: the caller compares a
// settled result's token against the latest issued one and discards stale
// arrivals instead of letting a slow request clobber fresher state.
package compare
