// Package analytics implements the derived numeric views the dashboard
// renders: year-over-year growth, descriptive statistics, pairwise Pearson
// correlation, ownership concentration and currency normalization.
//
// Every function here is pure and synchronous. Degenerate inputs (gaps,
// zero denominators, too few overlapping points) are answered with
// structural sentinels (a nil rate, a nil coefficient), never with an
// error or a panic. Isolating all missing-data handling behind these
// sentinels is what lets the aggregation layer stay free of data-shape
// error paths.
//
// # Policies worth knowing
//
//   - GrowthRate reports 0 for a zero previous value instead of Inf. See
//     the function comment; the trade-off is deliberate.
//   - A correlation cell with fewer than 2 overlapping observations is nil,
//     because 0 would falsely claim "no relationship".
//   - Concentration expects its input pre-sorted; tie ordering belongs to
//     the caller.
package analytics
