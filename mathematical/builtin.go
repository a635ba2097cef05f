package mathematical

import (
	"fmt"
	"math"
)

func decomposeRatio(p1, p2 map[string]float64) (*Result, error) {
	A1, B1 := p1["A"], p1["B"]
	A2, B2 := p2["A"], p2["B"]
	if B1 == 0 || B2 == 0 {
		return nil, fmt.Errorf("%w: B", ErrZeroDenominator)
	}

	Y1 := A1 / B1
	Y2 := A2 / B2
	Abar, Bbar := mid(A1, A2), mid(B1, B2)

	return &Result{
		Period1: map[string]float64{"A": A1, "B": B1, "Y": Y1},
		Period2: map[string]float64{"A": A2, "B": B2, "Y": Y2},
		Y1:      Y1,
		Y2:      Y2,
		DeltaY:  Y2 - Y1,
		Effects: []Effect{
			{Name: "A", Variable: "A", Delta: A2 - A1, Effect: (1 / Bbar) * (A2 - A1)},
			{Name: "B", Variable: "B", Delta: B2 - B1, Effect: -(Abar / (Bbar * Bbar)) * (B2 - B1)},
		},
		Averages: map[string]float64{"A": Abar, "B": Bbar, "Y": mid(Y1, Y2)},
	}, nil
}

func decomposeProductRatio(p1, p2 map[string]float64) (*Result, error) {
	G1, k1, P1 := p1["G"], p1["k"], p1["P"]
	G2, k2, P2 := p2["G"], p2["k"], p2["P"]
	if P1 == 0 || P2 == 0 {
		return nil, fmt.Errorf("%w: P", ErrZeroDenominator)
	}

	Y1 := G1 * k1 / P1
	Y2 := G2 * k2 / P2
	Gbar, kbar, Pbar := mid(G1, G2), mid(k1, k2), mid(P1, P2)

	return &Result{
		Period1: map[string]float64{"G": G1, "k": k1, "P": P1, "Y": Y1},
		Period2: map[string]float64{"G": G2, "k": k2, "P": P2, "Y": Y2},
		Y1:      Y1,
		Y2:      Y2,
		DeltaY:  Y2 - Y1,
		Effects: []Effect{
			{Name: "G", Variable: "G", Delta: G2 - G1, Effect: (kbar / Pbar) * (G2 - G1)},
			{Name: "k", Variable: "k", Delta: k2 - k1, Effect: (Gbar / Pbar) * (k2 - k1)},
			{Name: "P", Variable: "P", Delta: P2 - P1, Effect: -(Gbar * kbar / (Pbar * Pbar)) * (P2 - P1)},
		},
		Averages: map[string]float64{"G": Gbar, "k": kbar, "P": Pbar, "Y": mid(Y1, Y2)},
	}, nil
}

func decomposeProduct(p1, p2 map[string]float64) (*Result, error) {
	A1, B1 := p1["A"], p1["B"]
	A2, B2 := p2["A"], p2["B"]

	Y1 := A1 * B1
	Y2 := A2 * B2
	Abar, Bbar := mid(A1, A2), mid(B1, B2)

	return &Result{
		Period1: map[string]float64{"A": A1, "B": B1, "Y": Y1},
		Period2: map[string]float64{"A": A2, "B": B2, "Y": Y2},
		Y1:      Y1,
		Y2:      Y2,
		DeltaY:  Y2 - Y1,
		Effects: []Effect{
			{Name: "A", Variable: "A", Delta: A2 - A1, Effect: Bbar * (A2 - A1)},
			{Name: "B", Variable: "B", Delta: B2 - B1, Effect: Abar * (B2 - B1)},
		},
		Averages: map[string]float64{"A": Abar, "B": Bbar, "Y": mid(Y1, Y2)},
	}, nil
}

// decomposeDividend splits output per capita into productivity π = G/A and
// the working-age share α = A/P.
func decomposeDividend(p1, p2 map[string]float64) (*Result, error) {
	G1, A1, P1 := p1["G"], p1["A"], p1["P"]
	G2, A2, P2 := p2["G"], p2["A"], p2["P"]
	if A1 == 0 || A2 == 0 {
		return nil, fmt.Errorf("%w: A", ErrZeroDenominator)
	}
	if P1 == 0 || P2 == 0 {
		return nil, fmt.Errorf("%w: P", ErrZeroDenominator)
	}

	pi1, pi2 := G1/A1, G2/A2
	al1, al2 := A1/P1, A2/P2
	Y1 := pi1 * al1
	Y2 := pi2 * al2
	piBar, alBar := mid(pi1, pi2), mid(al1, al2)

	return &Result{
		Period1: map[string]float64{"G": G1, "A": A1, "P": P1, "pi": pi1, "alpha": al1, "Y": Y1},
		Period2: map[string]float64{"G": G2, "A": A2, "P": P2, "pi": pi2, "alpha": al2, "Y": Y2},
		Y1:      Y1,
		Y2:      Y2,
		DeltaY:  Y2 - Y1,
		Effects: []Effect{
			{Name: "productivity", Variable: "pi", Delta: pi2 - pi1, Effect: alBar * (pi2 - pi1)},
			{Name: "structure", Variable: "alpha", Delta: al2 - al1, Effect: piBar * (al2 - al1)},
		},
		Averages: map[string]float64{"pi": piBar, "alpha": alBar, "Y": mid(Y1, Y2)},
		Interpretation: map[string]string{
			"productivity": "Productivity effect (π = G/A)",
			"structure":    "Age-structure effect (α = A/P)",
		},
	}, nil
}

// decomposeCobbDouglas works in log points with the output elasticity of
// capital taken from the first period.
func decomposeCobbDouglas(p1, p2 map[string]float64) (*Result, error) {
	for _, name := range []string{"A", "K", "L"} {
		if p1[name] <= 0 || p2[name] <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrNonPositive, name)
		}
	}
	alpha := p1["alpha"]

	lnY := func(p map[string]float64) float64 {
		return math.Log(p["A"]) + alpha*math.Log(p["K"]) + (1-alpha)*math.Log(p["L"])
	}
	lnY1, lnY2 := lnY(p1), lnY(p2)
	dlnA := math.Log(p2["A"]) - math.Log(p1["A"])
	dlnK := math.Log(p2["K"]) - math.Log(p1["K"])
	dlnL := math.Log(p2["L"]) - math.Log(p1["L"])

	return &Result{
		Period1:  map[string]float64{"A": p1["A"], "K": p1["K"], "L": p1["L"], "alpha": alpha, "lnY": lnY1},
		Period2:  map[string]float64{"A": p2["A"], "K": p2["K"], "L": p2["L"], "alpha": p2["alpha"], "lnY": lnY2},
		Y1:       lnY1,
		Y2:       lnY2,
		DeltaY:   lnY2 - lnY1,
		LogScale: true,
		Effects: []Effect{
			{Name: "technology", Variable: "A", Delta: dlnA, Effect: dlnA},
			{Name: "capital", Variable: "K", Delta: dlnK, Effect: alpha * dlnK},
			{Name: "labor", Variable: "L", Delta: dlnL, Effect: (1 - alpha) * dlnL},
		},
		Averages: map[string]float64{"alpha": alpha},
	}, nil
}
