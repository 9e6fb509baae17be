// Package analysis evaluates nowcasts against finalized wILI.
//
// An [Extractor] turns stored rows into per-location [domain.TimeSeries]. A
// [Synthesizer] derives the two reference nowcasts from those series: the naive
// baseline (truth shifted by a caller-chosen lag) and the sensor-median
// ensemble. [Compute] and [CompareToBaseline] score an estimate against truth
// over the weeks both cover, and a [HeatmapBuilder] lays sensor coverage out
// on one epiweek axis.
//
// Everything here is a pure function of the loaded store. Nothing is cached:
// every call recomputes its result from the rows, so repeated calls with the
// same arguments return identical values.
//
// # Choosing the naive lag
//
// Final wILI is not known for months, so a real-time random walk is not
// possible. Two substitutes are common:
//
//   - lag 1, the naive oracle, assumes last week's final value is known. It is
//     unrealistically favoured because of reporting backfill.
//   - lag 52, the seasonal naive, uses the same week a year earlier. It is only
//     loosely correlated with the current week.
//
// Neither is clearly better, so the lag is always an explicit argument.
package analysis
