package regression

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noise = []float64{0.1, -0.2, 0.1, 0.05, -0.1, 0.05, 0.15, -0.15}

// wageFrame builds two groups of eight workers with different returns to
// education and a two-level sector variable.
func wageFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	var rows [][]string
	add := func(group string, a, b, shift float64) {
		for i := 0; i < 8; i++ {
			edu := float64(i) + shift
			sector := "public"
			bonus := 0.0
			if i%2 == 1 {
				sector = "private"
				bonus = 0.8
			}
			y := a + b*edu + bonus + noise[(i+int(shift))%len(noise)]
			rows = append(rows, []string{
				group,
				strconv.FormatFloat(edu, 'f', -1, 64),
				sector,
				strconv.FormatFloat(y, 'f', -1, 64),
			})
		}
	}
	add("female", 2, 3, 1)
	add("male", 4, 3.5, 3)
	f, err := dataset.FromRecords([]string{"gender", "education", "sector", "wage"}, rows)
	require.NoError(t, err)
	return f
}

func TestOLSExactFit(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1 + 2*v
	}
	m, err := OLS(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)

	assert.False(t, m.Fallback)
	assert.InDelta(t, 1.0, m.Intercept(), 1e-9)
	assert.InDelta(t, 2.0, m.Coefficient("x"), 1e-9)
	assert.InDelta(t, 1.0, m.RSquared, 1e-9)
	assert.Equal(t, []string{InterceptName, "x"}, m.Names)
	assert.Equal(t, 6, m.NObs)
	assert.Zero(t, m.Coefficient("missing"))
}

func TestOLSStatistics(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3 + 0.5*v + noise[i]
	}
	m, err := OLS(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.Coefficient("x"), 0.1)
	assert.Greater(t, m.RSquared, 0.9)
	assert.Less(t, m.RSquared, 1.0)
	for j := range m.Coef {
		assert.Greater(t, m.StdErrors[j], 0.0)
		assert.GreaterOrEqual(t, m.PValues[j], 0.0)
		assert.LessOrEqual(t, m.PValues[j], 1.0)
	}
	assert.Less(t, m.PValues[1], 0.001)
}

func TestOLSSingularFallsBack(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{2, 4, 5, 4, 5, 7}
	m, err := OLS(y, [][]float64{x, x}, []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, m.Fallback)
	assert.InDelta(t, 4.5, m.Intercept(), 1e-9)
	assert.Equal(t, m.Coefficient("a"), m.Coefficient("b"))
	assert.True(t, math.IsNaN(m.PValues[1]))
}

func TestOLSErrors(t *testing.T) {
	_, err := OLS([]float64{1, 2}, [][]float64{{1, 2}}, []string{"x"})
	assert.ErrorIs(t, err, ErrTooFewObservations)

	_, err = OLS([]float64{1, 2, 3, 4}, [][]float64{{1, 2}}, []string{"x"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = OLS([]float64{1, 2, 3, 4}, [][]float64{{1, 2, 3, 4}}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestOaxacaBlinderAddsUp(t *testing.T) {
	f := wageFrame(t)
	for _, method := range Methods() {
		t.Run(string(method), func(t *testing.T) {
			res, err := OaxacaBlinder(f, Spec{
				Outcome:    "wage",
				Predictors: []string{"education", "sector"},
				GroupVar:   "gender",
				Method:     method,
			})
			require.NoError(t, err)

			assert.Equal(t, "female", res.Group1.Label)
			assert.Equal(t, "male", res.Group2.Label)
			assert.Equal(t, 8, res.Group1.N)

			d := res.Decomposition
			assert.InDelta(t, res.Group2.MeanY-res.Group1.MeanY, d.Total, 1e-9)
			assert.InDelta(t, d.Total, d.Explained+d.Unexplained, 1e-8)
			assert.InDelta(t, 100.0, d.ExplainedPercent+d.UnexplainedPercent, 1e-6)
			assert.Empty(t, res.Warnings)

			var e, u float64
			for _, c := range res.Detailed {
				e += c.Explained
				u += c.Unexplained
			}
			assert.InDelta(t, d.Explained, e, 1e-9)
			assert.InDelta(t, d.Unexplained, u, 1e-9)
			assert.Equal(t, InterceptName, res.Detailed[0].Variable)
			assert.Zero(t, res.Detailed[0].Explained)
		})
	}
}

func TestOaxacaReferenceCoefficients(t *testing.T) {
	f := wageFrame(t)
	spec := Spec{Outcome: "wage", Predictors: []string{"education"}, GroupVar: "gender"}

	res, err := OaxacaBlinder(f, spec)
	require.NoError(t, err)
	assert.Equal(t, MethodOaxaca, res.Method)
	assert.Equal(t, res.Group1.Model.Coef, res.Reference)
	assert.InDelta(t, res.Group1.MeanY, res.Group1.Predicted, 1e-9)

	spec.Method = MethodReverse
	res, err = OaxacaBlinder(f, spec)
	require.NoError(t, err)
	assert.Equal(t, res.Group2.Model.Coef, res.Reference)

	spec.Method = MethodCotton
	res, err = OaxacaBlinder(f, spec)
	require.NoError(t, err)
	for j := range res.Reference {
		avg := (res.Group1.Model.Coef[j] + res.Group2.Model.Coef[j]) / 2
		assert.InDelta(t, avg, res.Reference[j], 1e-9)
	}

	spec.Method = MethodNeumark
	res, err = OaxacaBlinder(f, spec)
	require.NoError(t, err)
	edu, err := f.Floats("education")
	require.NoError(t, err)
	wage, err := f.Floats("wage")
	require.NoError(t, err)
	female := make([]float64, len(edu))
	for i := 0; i < 8; i++ {
		female[i] = 1
	}
	pooled, err := OLS(wage, [][]float64{edu, female}, []string{"education", "gender[female]"})
	require.NoError(t, err)
	require.Len(t, res.Reference, 2)
	assert.InDelta(t, pooled.Coef[0], res.Reference[0], 1e-9)
	assert.InDelta(t, pooled.Coef[1], res.Reference[1], 1e-9)
}

func TestOaxacaExplicitGroups(t *testing.T) {
	f := wageFrame(t)
	res, err := OaxacaBlinder(f, Spec{
		Outcome:    "wage",
		Predictors: []string{"education"},
		GroupVar:   "gender",
		Group1:     "male",
		Group2:     "female",
	})
	require.NoError(t, err)
	assert.Equal(t, "male", res.Group1.Label)
	assert.Less(t, res.Decomposition.Total, 0.0)

	res, err = OaxacaBlinder(f, Spec{
		Outcome:    "wage",
		Predictors: []string{"education"},
		GroupVar:   "gender",
		Group2:     "female",
	})
	require.NoError(t, err)
	assert.Equal(t, "male", res.Group1.Label)
}

func TestOaxacaErrors(t *testing.T) {
	f := wageFrame(t)

	_, err := OaxacaBlinder(f, Spec{Outcome: "wage", Predictors: []string{"education"}, GroupVar: "gender", Method: "fairlie"})
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = OaxacaBlinder(f, Spec{Outcome: "wage", Predictors: []string{"education"}, GroupVar: "sector2"})
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	three := f.Concat(dataset.MustFromRecords(
		[]string{"gender", "education", "sector", "wage"},
		[][]string{{"other", "4", "public", "10"}},
	))
	_, err = OaxacaBlinder(three, Spec{Outcome: "wage", Predictors: []string{"education"}, GroupVar: "gender"})
	assert.ErrorIs(t, err, ErrGroupCount)

	_, err = OaxacaBlinder(f, Spec{Outcome: "wage", Predictors: []string{"education"}, GroupVar: "gender", Group1: "female", Group2: "nobody"})
	assert.True(t, errors.Is(err, ErrEmptyGroup))
}

func TestTimeDecompositionAddsUp(t *testing.T) {
	f := wageFrame(t)
	res, err := TimeDecomposition(f, TimeSpec{
		Outcome:    "wage",
		Predictors: []string{"education", "sector"},
		TimeVar:    "gender",
		Time1:      "female",
		Time2:      "male",
	})
	require.NoError(t, err)

	sum := res.InterceptEffect + res.CoefficientEffect + res.EndowmentEffect
	assert.InDelta(t, res.TotalChange, sum, 1e-8)
	c := res.Contributions
	assert.InDelta(t, 100.0, c.Intercept+c.Coefficients+c.Endowments, 1e-6)
	assert.Len(t, res.Detailed, 2)
	assert.Equal(t, "education", res.Detailed[0].Variable)
	assert.Equal(t, "sector[private]", res.Detailed[1].Variable)
}
