package mathematical

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var periods = [2]string{"2015", "2020"}

func TestRatio(t *testing.T) {
	data := Data{
		"A": {"2015": 10, "2020": 12},
		"B": {"2015": 5, "2020": 4},
	}
	res, err := New().Analyze("ratio", data, periods)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Y1, 1e-12)
	assert.InDelta(t, 3.0, res.Y2, 1e-12)
	assert.InDelta(t, 1.0, res.DeltaY, 1e-12)

	a, ok := res.Effect("A")
	require.True(t, ok)
	assert.InDelta(t, 2/4.5, a.Effect, 1e-12)
	b, _ := res.Effect("B")
	assert.InDelta(t, -(11.0/(4.5*4.5))*-1, b.Effect, 1e-12)
	assert.InDelta(t, res.DeltaY, res.TotalEffect+res.Residual, 1e-12)
	assert.InDelta(t, 100, a.Percent+b.Percent+res.Residual/res.DeltaY*100, 1e-9)
	assert.Equal(t, "ratio", res.Formula)
}

func TestProductSimpleIsExact(t *testing.T) {
	data := Data{
		"A": {"2015": 3, "2020": 5},
		"B": {"2015": 7, "2020": 2},
	}
	res, err := New().Analyze("product_simple", data, periods)
	require.NoError(t, err)
	assert.InDelta(t, -11.0, res.DeltaY, 1e-12)
	assert.InDelta(t, 0.0, res.Residual, 1e-12)
}

func TestProductRatio(t *testing.T) {
	data := Data{
		"G": {"2015": 1000, "2020": 1200},
		"k": {"2015": 0.5, "2020": 0.55},
		"P": {"2015": 100, "2020": 110},
	}
	res, err := New().Analyze("product", data, periods)
	require.NoError(t, err)
	assert.Len(t, res.Effects, 3)
	assert.InDelta(t, 5.0, res.Y1, 1e-12)
	assert.InDelta(t, 6.0, res.Y2, 1e-12)
	// Midpoint rule leaves only a small second-order residual.
	assert.Less(t, math.Abs(res.Residual), 0.01)
}

func TestDemographicDividendIsExact(t *testing.T) {
	data := Data{
		"G": {"2015": 500, "2020": 700},
		"A": {"2015": 50, "2020": 60},
		"P": {"2015": 100, "2020": 105},
	}
	res, err := New().Analyze("demographic_dividend", data, periods)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.Y1, 1e-12)
	assert.InDelta(t, 700.0/105, res.Y2, 1e-12)
	assert.InDelta(t, 0.0, res.Residual, 1e-12)
	_, ok := res.Effect("productivity")
	assert.True(t, ok)
	assert.NotEmpty(t, res.Interpretation)
}

func TestCobbDouglas(t *testing.T) {
	data := Data{
		"A":     {"2015": 1, "2020": 1.1},
		"K":     {"2015": 100, "2020": 120},
		"L":     {"2015": 50, "2020": 55},
		"alpha": {"2015": 0.3, "2020": 0.3},
	}
	res, err := New().Analyze("cobb_douglas", data, periods)
	require.NoError(t, err)
	assert.True(t, res.LogScale)
	assert.InDelta(t, 0.0, res.Residual, 1e-12)
	capital, _ := res.Effect("capital")
	assert.InDelta(t, 0.3*math.Log(1.2), capital.Effect, 1e-12)

	data["K"]["2020"] = 0
	_, err = New().Analyze("cobb_douglas", data, periods)
	assert.True(t, errors.Is(err, ErrNonPositive))
}

func TestAnalyzeErrors(t *testing.T) {
	d := New()

	_, err := d.Analyze("nope", Data{}, periods)
	assert.True(t, errors.Is(err, ErrUnknownFormula))

	_, err = d.Analyze("ratio", Data{"A": {"2015": 1, "2020": 2}}, periods)
	assert.True(t, errors.Is(err, ErrMissingValue))

	_, err = d.Analyze("ratio", Data{"A": {"2015": 1, "2020": 2}, "B": {"2015": 1}}, periods)
	assert.True(t, errors.Is(err, ErrMissingValue))

	_, err = d.Analyze("ratio", Data{"A": {"2015": 1, "2020": 2}, "B": {"2015": 0, "2020": 1}}, periods)
	assert.True(t, errors.Is(err, ErrZeroDenominator))
}

func TestCustomFormulaMatchesBuiltin(t *testing.T) {
	d := New()
	id, err := d.Register("Y = A / B", "my_ratio")
	require.NoError(t, err)
	assert.Equal(t, "my_ratio", id)

	data := Data{
		"A": {"2015": 10, "2020": 12},
		"B": {"2015": 5, "2020": 4},
	}
	custom, err := d.Analyze(id, data, periods)
	require.NoError(t, err)
	builtin, err := d.Analyze("ratio", data, periods)
	require.NoError(t, err)

	assert.InDelta(t, builtin.DeltaY, custom.DeltaY, 1e-12)
	for _, e := range builtin.Effects {
		ce, ok := custom.Effect(e.Name)
		require.True(t, ok, e.Name)
		assert.InDelta(t, e.Effect, ce.Effect, 1e-6)
	}
}

func TestCustomFormulaVariablesAndFunctions(t *testing.T) {
	d := New()
	id, err := d.Register("log(G) * k ^ 2", "")
	require.NoError(t, err)
	assert.Equal(t, "custom_1", id)

	f, ok := d.Lookup(id)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"G", "k"}, f.Variables)
	assert.True(t, f.Custom)

	data := Data{
		"G": {"2015": math.E, "2020": math.E * math.E},
		"k": {"2015": 2, "2020": 3},
	}
	res, err := d.Analyze(id, data, periods)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, res.Y1, 1e-9)
	assert.InDelta(t, 18.0, res.Y2, 1e-9)

	id, err = d.Register("Y = pow(A, 2) * sqrt(B)", "power")
	require.NoError(t, err)
	f, ok = d.Lookup(id)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"A", "B"}, f.Variables)

	res, err = d.Analyze(id, Data{
		"A": {"2015": 2, "2020": 3},
		"B": {"2015": 4, "2020": 9},
	}, periods)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, res.Y1, 1e-9)
	assert.InDelta(t, 27.0, res.Y2, 1e-9)

	_, err = d.Register("pow(A)", "")
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestRegisterErrors(t *testing.T) {
	d := New()

	_, err := d.Register("Y = ", "")
	assert.True(t, errors.Is(err, ErrInvalidExpression))

	_, err = d.Register("Y = A * (B", "")
	assert.True(t, errors.Is(err, ErrInvalidExpression))

	_, err = d.Register("Y = 2 * 3", "")
	assert.True(t, errors.Is(err, ErrInvalidExpression))

	_, err = d.Register("Y = A * B", "ratio")
	assert.True(t, errors.Is(err, ErrDuplicateFormula))

	_, err = d.Register("Y = A * B", "bad name")
	assert.True(t, errors.Is(err, ErrInvalidExpression))
}

func TestFormulas(t *testing.T) {
	d := New()
	_, err := d.Register("A + B", "sum")
	require.NoError(t, err)

	list := d.Formulas()
	require.Len(t, list, 6)
	assert.Equal(t, "cobb_douglas", list[0].ID)
	assert.Equal(t, "sum", list[5].ID)
}

func TestDataFromFrame(t *testing.T) {
	csv := "variable,2015,2020\nA,10,12\nB,5,"
	f, err := dataset.LoadCSVFromReader(strings.NewReader(csv), nil)
	require.NoError(t, err)

	data, err := DataFromFrame(f, "variable")
	require.NoError(t, err)
	assert.Equal(t, 12.0, data["A"]["2020"])
	_, ok := data["B"]["2020"]
	assert.False(t, ok)

	_, err = New().Analyze("ratio", data, periods)
	assert.True(t, errors.Is(err, ErrMissingValue))
}

func TestDataFromFrameRejectsMalformedCells(t *testing.T) {
	for _, cell := range []string{"12abc", "1,5"} {
		f := dataset.MustFromRecords(
			[]string{"variable", "2015", "2020"},
			[][]string{{"A", cell, "4"}, {"B", "3", "4"}},
		)
		_, err := DataFromFrame(f, "variable")
		assert.ErrorIs(t, err, dataset.ErrNotNumeric, cell)
	}

	f := dataset.MustFromRecords(
		[]string{"variable", "2015", "2020"},
		[][]string{{"A", "NA", "4"}, {"B", "3", " 4.5 "}},
	)
	data, err := DataFromFrame(f, "variable")
	require.NoError(t, err)
	_, ok := data["A"]["2015"]
	assert.False(t, ok)
	assert.Equal(t, 4.5, data["B"]["2020"])
}

func TestGrowthRate(t *testing.T) {
	assert.InDelta(t, 10.0, GrowthRate(100, 121, 2), 1e-9)
	assert.True(t, math.IsNaN(GrowthRate(0, 10, 1)))
	assert.InDelta(t, math.Log(2), LogChange(1, 2), 1e-12)
}
