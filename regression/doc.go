// Package regression implements regression-based decompositions of group gaps
// and of change over time.
//
// # Oaxaca-Blinder
//
// The mean outcome gap between two groups is split into an explained part,
// due to differences in observed characteristics, and an unexplained part,
// due to differences in returns to those characteristics:
//
//	Ȳ2 − Ȳ1 = (X̄2 − X̄1)·β*  +  X̄2·(β2 − β*) + X̄1·(β* − β1)
//
// The reference coefficients β* depend on the method:
//
//	oaxaca          β* = β1 (group 1 is the reference)
//	oaxaca_reverse  β* = β2 (group 2 is the reference)
//	cotton          β* = (n1·β1 + n2·β2) / (n1 + n2)
//	neumark         β* from a pooled regression over both groups with a group indicator
//
// Usage:
//
//	spec := regression.Spec{
//	    Outcome:    "wage",
//	    Predictors: []string{"education", "experience", "sector"},
//	    GroupVar:   "gender",
//	    Method:     regression.MethodOaxaca,
//	}
//	result, err := regression.OaxacaBlinder(frame, spec)
//
// Non-numeric predictors such as "sector" are dummy encoded with the first
// level seen as the baseline.
//
// # Time Decomposition
//
// The change of the mean outcome between two periods is split three ways:
//
//	ΔY = Δα + X̄·Δβ + β̄·ΔX
//
// where Δα is the intercept change, X̄·Δβ the change in returns evaluated at
// mean characteristics, and β̄·ΔX the change in characteristics.
//
// # OLS
//
// OLS fits a linear model with an intercept and reports standard errors,
// t statistics, p-values and R². When the design matrix is singular it falls
// back to marginal slopes and marks the model with Fallback.
package regression
