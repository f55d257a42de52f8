// Package domain models daily weather observations and the climate hazards
// detected in them.
//
// # Detection
//
// Every hazard kind is described by one entry in a dispatch table: the
// metric extracted from each observation, the sample the threshold is drawn
// from, the percentile, the comparison direction and the minimum run length.
//
//	heatwave        temperature           p95 of all days        > threshold, 3+ days
//	drought         30-day precip sum     p10 of all windows     < threshold, 30+ days
//	heavy_rainfall  precipitation         p95 of wet days only   > threshold, 1+ day
//	cold_wave       temperature           p5 of all days         < threshold, 3+ days
//
// Percentiles are the nearest-rank element sorted[floor(n*p)] with no
// interpolation. Comparisons are strict, so a day equal to the threshold
// breaks a run. A run still open on the last day of the series is not
// reported as an event.
//
// Intensities are clamped to [1, 10]:
//
//	heatwave        (max temp - threshold) / 2
//	drought         (threshold - min sum) / threshold * 10
//	heavy_rainfall  max precip / threshold * 5
//	cold_wave       (threshold - min temp) / 2
//
// # Aggregation
//
// Events are bucketed by the calendar year of their start date. Every year
// that has at least one observation appears in the yearly series, with zero
// frequency when no event started in it. Averages are rounded half up to one
// decimal place.
//
// The trend compares the first and last yearly frequency. A zero (or
// missing) frequency at either end is replaced by 1 before the percent
// change is computed, and changes within ±5% are reported as stable.
package domain
