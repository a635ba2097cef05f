package sampledata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/structural"
)

func TestNamesAndGet(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"demographic_structure", "education_africa", "presidential_opinion", "wage_gap"}, names)

	for _, n := range names {
		d, err := Get(n)
		require.NoError(t, err, n)
		assert.Equal(t, n, d.Name)
		assert.NotEmpty(t, d.Description)
		assert.NotEmpty(t, d.Hint)
		assert.Positive(t, d.Frame.Len())
	}

	_, err := Get("nope")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestEducationAfricaDecomposes(t *testing.T) {
	f := EducationAfrica()
	require.Equal(t, 20, f.Len())

	r, err := demographic.Analyze(f, demographic.Columns{
		Group: "Country", W1: "w_2015", Y1: "y_2015", W2: "w_2020", Y2: "y_2020",
	}, demographic.DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, r.Aggregate.TotalChange,
		r.Aggregate.Composition+r.Aggregate.Behavior, 1e-9)
}

func TestPresidentialOpinion(t *testing.T) {
	f := PresidentialOpinion()
	require.Equal(t, 5, f.Len())
	w, err := f.Floats("w_1972")
	require.NoError(t, err)
	assert.True(t, dataset.CheckPercentages(w, 0.1))
}

func TestWageGapIsDeterministic(t *testing.T) {
	a := WageGap(200, 7)
	b := WageGap(200, 7)
	assert.Equal(t, a.Records(), b.Records())
	assert.NotEqual(t, a.Records(), WageGap(200, 8).Records())

	edu, err := a.Floats("education")
	require.NoError(t, err)
	for _, v := range edu {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 20.0)
	}
	assert.ElementsMatch(t, []string{"Female", "Male"}, a.Unique("gender"))
}

func TestWageGapRecoversPremium(t *testing.T) {
	f := WageGap(2000, DefaultSeed)
	r, err := regression.OaxacaBlinder(f, regression.Spec{
		Outcome:    "wage",
		GroupVar:   "gender",
		Predictors: []string{"education", "experience", "sector"},
		Method:     regression.MethodOaxaca,
	})
	require.NoError(t, err)
	assert.InDelta(t, r.Decomposition.Total,
		r.Decomposition.Explained+r.Decomposition.Unexplained, 1e-6)
	// the simulated premium is 3000 and the gap sign depends on group order
	assert.InDelta(t, 3000, abs(r.Decomposition.Unexplained), 600)
}

func TestDemographicStructureGrid(t *testing.T) {
	f := DemographicStructure(DefaultSeed)
	require.Equal(t, 80, f.Len())
	assert.Len(t, f.Unique("region"), 4)
	assert.Len(t, f.Unique("age_group"), 5)
	assert.Equal(t, []string{"2010", "2015", "2020", "2025"}, dataset.SortLabels(f.Unique("period")))

	res, err := structural.Nested(context.Background(), f, structural.NestedSpec{
		Outcome: "income", Primary: "region", Secondary: []string{"age_group"},
	})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"2010", "2025"}, res.Periods)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "examples")
	paths, err := WriteAll(dir)
	require.NoError(t, err)
	require.Len(t, paths, len(Names()))

	f, err := dataset.Load(filepath.Join(dir, "education_africa.csv"))
	require.NoError(t, err)
	assert.Equal(t, EducationAfrica().Records(), f.Records())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
