// Package timeseries handles indicators observed over many periods.
//
// A Series pairs time labels with values. FromFrame and GroupedFromFrame
// build series from long-format data, averaging the records that share a
// label:
//
//	series, err := timeseries.FromFrame(frame, "year", "opinion")
//	fmt.Println(series.Change(), series.GrowthRate())
//
// Decompose and STL separate a series into trend, seasonal and residual
// components:
//
//	d, err := timeseries.Decompose(series, 4, timeseries.Additive)
//	d, err = timeseries.STL(series, 4, 2)
//
// Both need at least two full periods of data.
package timeseries
