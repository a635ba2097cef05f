// Package demographic implements the Kitagawa (1955) decomposition of the change
// in a weighted average between two periods.
//
// Given groups i with population weights w and group values y observed in two
// periods, the change in the overall mean is split exactly into
//
//	ΔY = Σ ((y1ᵢ + y2ᵢ)/2)·(w2ᵢ − w1ᵢ)   composition effect
//	   + Σ ((w1ᵢ + w2ᵢ)/2)·(y2ᵢ − y1ᵢ)   behavior effect
//
// The composition effect measures how much of the change comes from groups
// gaining or losing weight; the behavior effect measures how much comes from
// the groups' own values changing.
//
// # Usage
//
//	cols := demographic.Columns{Group: "Country", W1: "w_2015", Y1: "y_2015", W2: "w_2020", Y2: "y_2020"}
//	result, err := demographic.Analyze(frame, cols, demographic.DefaultOptions())
//	fmt.Printf("ΔY=%.4f composition=%.1f%% behavior=%.1f%%\n",
//	    result.Aggregate.TotalChange,
//	    result.Aggregate.CompositionPercent,
//	    result.Aggregate.BehaviorPercent)
//
// Weights are percentages. With Normalize set, a period whose weights do not
// sum to 100 (within PercentTolerance) is rescaled before decomposing.
package demographic
