package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroups(t *testing.T) *demographic.Result {
	t.Helper()
	res, err := demographic.Decompose(
		[]string{"Urban", "Rural"},
		[]float64{50, 50}, []float64{10, 20},
		[]float64{40, 60}, []float64{12, 22},
		demographic.Columns{Group: "area"},
		demographic.DefaultOptions(),
	)
	require.NoError(t, err)
	return res
}

func TestFormatter(t *testing.T) {
	f := Formatter{Decimals: 2}
	assert.Equal(t, "3.14", f.Number(math.Pi))
	assert.Equal(t, "N/A", f.Number(math.NaN()))
	assert.Equal(t, "N/A", f.Number(math.Inf(1)))
	assert.Equal(t, "33.3%", f.Percent(100.0/3))
	assert.Equal(t, "<0.001", f.PValue(0.0001))
	assert.Equal(t, "0.250", f.PValue(0.25))
	assert.Equal(t, "1.0000", DefaultFormatter().Number(1))
	assert.Equal(t, "3.1416", Formatter{Decimals: -1}.Number(3.14159))
	assert.Equal(t, "3", Formatter{Decimals: 0}.Number(3.14159))
}

func TestTableMarkdownAndTruncate(t *testing.T) {
	tbl := &Table{
		Title:   "T",
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1", "x|y"}, {"2", "z"}, {"3", "w"}},
	}
	md := tbl.Markdown()
	assert.Contains(t, md, "| a | b |")
	assert.Contains(t, md, "|---|---|")
	assert.Contains(t, md, `x\|y`)

	short := tbl.Truncate(2)
	require.Len(t, short.Rows, 3)
	assert.Equal(t, "… 1 more", short.Rows[2][0])
	assert.Len(t, tbl.Rows, 3)
	assert.Same(t, tbl, tbl.Truncate(0))
}

func TestRenderStyles(t *testing.T) {
	tbl := DemographicTable(twoGroups(t), DefaultFormatter())
	for _, style := range Styles() {
		out := tbl.Render(style)
		assert.Contains(t, out, "Urban", style)
		assert.Contains(t, out, "Rural", style)
		assert.Contains(t, out, "Composition", style)
	}
}

func TestDemographicTables(t *testing.T) {
	res := twoGroups(t)
	f := Formatter{Decimals: 4}

	tbl := DemographicTable(res, f)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Urban", tbl.Rows[0][0])
	assert.Len(t, tbl.Rows[0], len(tbl.Headers))

	sum := DemographicSummary(res, f)
	assert.Equal(t, []string{"Total change", "3.0000", "100.0%"}, sum.Rows[2])
	assert.Equal(t, "33.3%", sum.Rows[3][2])
}

func TestContributionChart(t *testing.T) {
	out := ContributionChart(twoGroups(t), 1, 20, Formatter{Decimals: 2})
	assert.Contains(t, out, "composition")
	assert.Equal(t, 1, strings.Count(out, "Rural")+strings.Count(out, "Urban"))
	assert.Contains(t, out, "█")
}

func TestBarNegative(t *testing.T) {
	assert.Equal(t, "░░░░░", bar(-1, 2, 10))
	assert.Equal(t, "██████████", bar(2, 2, 10))
	assert.Equal(t, "", bar(1, 0, 10))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▅█", Sparkline(timeseries.New([]float64{0, 0.5, 1})))
	assert.Equal(t, "", Sparkline(timeseries.New(nil)))
}

func TestSeriesTable(t *testing.T) {
	a, _ := timeseries.NewLabeled("left", []string{"1972", "2010"}, []float64{30, 40})
	b, _ := timeseries.NewLabeled("right", []string{"2010"}, []float64{60})
	tbl := SeriesTable("Opinion", []*timeseries.Series{a, b}, Formatter{Decimals: 1})
	assert.Equal(t, []string{"Period", "left", "right"}, tbl.Headers)
	assert.Equal(t, []string{"1972", "30.0", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"2010", "40.0", "60.0"}, tbl.Rows[1])
}

func TestTrendTable(t *testing.T) {
	short, _ := timeseries.NewLabeled("short", []string{"a", "b"}, []float64{1, 3})
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	rising := timeseries.New(values)
	rising.Name = "rising"

	tbl := TrendTable([]*timeseries.Series{short, rising}, Formatter{Decimals: 1})
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"short", "a", "b", "1.0", "3.0", "2.0", "200.0%", "2.0", "1.4", ""}, tbl.Rows[0])
	assert.Equal(t, "no", tbl.Rows[1][9])
}

func TestDecompositionTables(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		values[i] = float64(i) + 5*math.Sin(2*math.Pi*float64(i%4)/4)
	}
	d, err := timeseries.Decompose(timeseries.New(values), 4, timeseries.Additive)
	require.NoError(t, err)

	tbl := DecompositionTable(d, Formatter{Decimals: 2})
	assert.Len(t, tbl.Rows, 48)
	assert.Equal(t, "N/A", tbl.Rows[0][2], "trend is undefined at the edges")

	diag := DiagnosticsTable(d, Formatter{Decimals: 2})
	require.GreaterOrEqual(t, len(diag.Rows), 2)
	assert.Equal(t, "Trend strength", diag.Rows[0][0])
}

func TestSummaryTable(t *testing.T) {
	tbl := SummaryTable([]SummaryRow{{
		ID: "0123456789abcdef", Date: "2026-01-02", Type: "demographic",
		Title: "Education", TotalChange: 1.5, First: 40, Second: 60,
	}}, Formatter{Decimals: 2})
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"01234567", "2026-01-02", "demographic", "Education", "1.50", "40.0%", "60.0%"}, tbl.Rows[0])
}

func TestBuildDemographicReport(t *testing.T) {
	meta := Metadata{Title: "Area", Version: "1.0.0", Date: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), Extra: map[string]string{"groups": "2"}}
	r, err := Build(twoGroups(t), meta, DefaultFormatter())
	require.NoError(t, err)
	assert.Equal(t, KindDemographic, r.Kind)

	md := r.Markdown()
	for _, want := range []string{
		"# Decomposition report: Area",
		"2024-05-01 10:00",
		"**groups**: 2",
		"## Executive summary",
		"**3.0000**",
		"## Detailed results",
		"Combined effects",
		"Kitagawa",
		"## Conclusion",
	} {
		assert.Contains(t, md, want)
	}

	page, err := r.HTML()
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Decomposition report - Area</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<h2>Methodology</h2>")
}

func TestBuildMathematicalReport(t *testing.T) {
	res, err := mathematical.New().Analyze("ratio", mathematical.Data{
		"A": {"2000": 50, "2010": 80},
		"B": {"2000": 100, "2010": 120},
	}, [2]string{"2000", "2010"})
	require.NoError(t, err)

	r, err := Build(res, Metadata{}, DefaultFormatter())
	require.NoError(t, err)
	assert.Equal(t, KindMathematical, r.Kind)
	assert.Contains(t, r.Interpretation, "largest contribution")
	assert.Contains(t, r.Markdown(), "# Decomposition report: mathematical")

	h, ok := HeadlineOf(res)
	require.True(t, ok)
	assert.InDelta(t, res.DeltaY, h.TotalChange, 1e-12)
}

func TestBuildUnsupported(t *testing.T) {
	_, err := Build(42, Metadata{}, DefaultFormatter())
	assert.ErrorIs(t, err, ErrUnsupportedResult)
	_, ok := HeadlineOf("x")
	assert.False(t, ok)
}

func TestInterpretationRules(t *testing.T) {
	assert.Contains(t, interpretShares(80, 20), "Dominant composition")
	assert.Contains(t, interpretShares(20, 80), "Dominant behavior")
	assert.Contains(t, interpretShares(50, 50), "Combined")
	assert.Contains(t, interpretUnexplained(60), "discrimination")
	assert.Contains(t, interpretUnexplained(40), "mostly explained")
}

func TestRenderTerminal(t *testing.T) {
	r, err := Build(twoGroups(t), Metadata{Title: "Area"}, DefaultFormatter())
	require.NoError(t, err)
	out, err := r.RenderTerminal(80, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Methodology")
}
