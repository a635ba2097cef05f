package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InterceptName is the name of the constant term.
const InterceptName = "Intercept"

var (
	// ErrTooFewObservations is returned when there are no more rows than coefficients.
	ErrTooFewObservations = errors.New("not enough observations for the number of predictors")
	// ErrDimensionMismatch is returned when a predictor and the outcome differ in length.
	ErrDimensionMismatch = errors.New("predictor length does not match outcome")
)

// Model is a fitted linear model. Slices are indexed like Names, with the
// intercept first.
type Model struct {
	Names     []string  `json:"names"`
	Coef      []float64 `json:"coefficients"`
	StdErrors []float64 `json:"std_errors"`
	TStats    []float64 `json:"t_stats"`
	PValues   []float64 `json:"p_values"`
	RSquared  float64   `json:"r_squared"`
	NObs      int       `json:"n_observations"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// Coefficient returns the estimate for name, or 0 when absent.
func (m *Model) Coefficient(name string) float64 {
	for i, n := range m.Names {
		if n == name {
			return m.Coef[i]
		}
	}
	return 0
}

// Intercept returns the constant term.
func (m *Model) Intercept() float64 {
	return m.Coef[0]
}

// Slopes returns the coefficients without the intercept.
func (m *Model) Slopes() []float64 {
	out := make([]float64, len(m.Coef)-1)
	copy(out, m.Coef[1:])
	return out
}

// OLS fits y on the given predictor columns plus an intercept.
func OLS(y []float64, columns [][]float64, names []string) (*Model, error) {
	n := len(y)
	k := len(columns) + 1
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrDimensionMismatch, len(names), len(columns))
	}
	for i, c := range columns {
		if len(c) != n {
			return nil, fmt.Errorf("%w: %q has %d values, outcome has %d", ErrDimensionMismatch, names[i], len(c), n)
		}
	}
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations, %d parameters", ErrTooFewObservations, n, k)
	}

	allNames := append([]string{InterceptName}, names...)

	x := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j, c := range columns {
			x.Set(i, j+1, c[i])
		}
	}
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return fallbackModel(y, columns, allNames), nil
	}

	var xty, beta mat.VecDense
	xty.MulVec(x.T(), yv)
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var ssr float64
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}
	mean := stat.Mean(y, nil)
	var sst float64
	for _, v := range y {
		sst += (v - mean) * (v - mean)
	}

	m := &Model{
		Names:     allNames,
		Coef:      make([]float64, k),
		StdErrors: make([]float64, k),
		TStats:    make([]float64, k),
		PValues:   make([]float64, k),
		NObs:      n,
	}
	if sst > 0 {
		m.RSquared = 1 - ssr/sst
	}

	dof := float64(n - k)
	sigma2 := ssr / dof
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	for j := 0; j < k; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(math.Max(sigma2*inv.At(j, j), 0))
		m.Coef[j] = b
		m.StdErrors[j] = se
		switch {
		case se > 0:
			m.TStats[j] = b / se
			m.PValues[j] = 2 * (1 - tdist.CDF(math.Abs(m.TStats[j])))
		case b == 0:
			m.TStats[j] = math.NaN()
			m.PValues[j] = math.NaN()
		default:
			m.TStats[j] = math.Inf(int(math.Copysign(1, b)))
			m.PValues[j] = 0
		}
	}
	return m, nil
}

// fallbackModel estimates each slope from its marginal correlation with y and
// sets the intercept to the outcome mean.
func fallbackModel(y []float64, columns [][]float64, names []string) *Model {
	k := len(names)
	m := &Model{
		Names:     names,
		Coef:      make([]float64, k),
		StdErrors: make([]float64, k),
		TStats:    make([]float64, k),
		PValues:   make([]float64, k),
		NObs:      len(y),
		Fallback:  true,
	}
	m.Coef[0] = stat.Mean(y, nil)
	sdY := stat.StdDev(y, nil)
	for j, c := range columns {
		sdX := stat.StdDev(c, nil)
		if len(y) > 1 && sdX > 0 && sdY > 0 {
			m.Coef[j+1] = stat.Correlation(c, y, nil) * sdY / sdX
		}
	}
	for j := range m.TStats {
		m.TStats[j] = math.NaN()
		m.PValues[j] = math.NaN()
	}
	return m
}

// predict returns X̄·β including the intercept.
func (m *Model) predict(means []float64) float64 {
	return m.Coef[0] + floats.Dot(means, m.Coef[1:])
}
