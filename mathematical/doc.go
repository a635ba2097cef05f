// Package mathematical decomposes the change of an indicator defined by an
// explicit formula into the contributions of its variables.
//
// Each variable's effect is its change weighted by the partial derivative of
// the formula evaluated at the midpoint of the two periods. For the built-in
// formulas this gives closed-form rules:
//
//	ratio                 Y = A / B           ΔY = (1/B̄)ΔA − (Ā/B̄²)ΔB
//	product               Y = (G·k) / P       ΔY = (k̄/P̄)ΔG + (Ḡ/P̄)Δk − (Ḡk̄/P̄²)ΔP
//	product_simple        Y = A · B           ΔY = B̄ΔA + ĀΔB
//	demographic_dividend  Y = (G/A)·(A/P)     ΔY = ᾱΔπ + π̄Δα
//	cobb_douglas          Y = A·K^α·L^(1−α)   ΔlnY = ΔlnA + αΔlnK + (1−α)ΔlnL
//
// # Usage
//
//	data := mathematical.Data{
//	    "A": {"2015": 120, "2020": 150},
//	    "B": {"2015": 40, "2020": 42},
//	}
//	d := mathematical.New()
//	result, err := d.Analyze("ratio", data, [2]string{"2015", "2020"})
//	for _, e := range result.Effects {
//	    fmt.Printf("%s: %.4f (%.1f%%)\n", e.Name, e.Effect, e.Percent)
//	}
//
// # Custom Formulas
//
// Any arithmetic expression can be registered. Its variables are discovered
// from the expression and its effects are computed numerically:
//
//	id, err := d.Register("Y = G * k / P^2", "density")
//	result, err := d.Analyze(id, data, periods)
//	// result.Residual holds the interaction term not captured by the midpoint rule
package mathematical
