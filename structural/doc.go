// Package structural implements multi-level decompositions.
//
// Nested repeats a composition/behavior decomposition at two levels: once
// across the categories of a primary grouping variable (region, say), then
// within each primary category across secondary variables (sex, education).
// Weights are the share of records a group holds in a period.
//
// Components splits the change of an outcome between consecutive periods into
// an age-structure effect, an age-specific rate effect and a residual.
//
// PathAnalysis estimates the effect carried along chains of variables
// x₁ → x₂ → … → outcome as the product of simple regression slopes.
package structural
