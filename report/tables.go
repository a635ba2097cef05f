package report

import (
	"fmt"
	"sort"

	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/structural"
	"github.com/sartorproj/godecomp/timeseries"
)

// DemographicTable lists the contribution of every group.
func DemographicTable(r *demographic.Result, f Formatter) *Table {
	t := &Table{
		Title:   "Contributions by group",
		Headers: []string{"Group", "W1", "Y1", "W2", "Y2", "Composition", "Behavior", "Total", "%"},
	}
	for _, g := range r.Groups {
		t.Rows = append(t.Rows, []string{
			truncate(g.Group, 24),
			f.Number(g.W1), f.Number(g.Y1), f.Number(g.W2), f.Number(g.Y2),
			f.Number(g.Composition), f.Number(g.Behavior), f.Number(g.Total),
			f.Percent(g.ContributionPercent),
		})
	}
	return t
}

// DemographicSummary shows the aggregate decomposition.
func DemographicSummary(r *demographic.Result, f Formatter) *Table {
	a := r.Aggregate
	return &Table{
		Title:   "Aggregate decomposition",
		Headers: []string{"Component", "Value", "%"},
		Rows: [][]string{
			{"Mean, period 1", f.Number(a.Y1), ""},
			{"Mean, period 2", f.Number(a.Y2), ""},
			{"Total change", f.Number(a.TotalChange), f.Percent(100)},
			{"Composition effect", f.Number(a.Composition), f.Percent(a.CompositionPercent)},
			{"Behavior effect", f.Number(a.Behavior), f.Percent(a.BehaviorPercent)},
			{"Verification", f.Number(a.Verification), ""},
		},
	}
}

// OaxacaTable shows the group means and the two-fold decomposition.
func OaxacaTable(r *regression.OaxacaResult, f Formatter) *Table {
	d := r.Decomposition
	return &Table{
		Title:   fmt.Sprintf("Oaxaca-Blinder decomposition (%s): %s vs %s", r.Method, r.Group1.Label, r.Group2.Label),
		Headers: []string{"Component", "Value", "%"},
		Rows: [][]string{
			{fmt.Sprintf("Mean %s, %s (n=%d)", r.Outcome, r.Group1.Label, r.Group1.N), f.Number(r.Group1.MeanY), ""},
			{fmt.Sprintf("Mean %s, %s (n=%d)", r.Outcome, r.Group2.Label, r.Group2.N), f.Number(r.Group2.MeanY), ""},
			{"Total difference", f.Number(d.Total), f.Percent(100)},
			{"Explained difference", f.Number(d.Explained), f.Percent(d.ExplainedPercent)},
			{"Unexplained difference", f.Number(d.Unexplained), f.Percent(d.UnexplainedPercent)},
		},
	}
}

// ContributionTable lists per-variable contributions. first and second name
// the two parts, e.g. "Explained" and "Unexplained".
func ContributionTable(title, first, second string, cs []regression.Contribution, f Formatter) *Table {
	t := &Table{Title: title, Headers: []string{"Variable", first, second, "Total"}}
	for _, c := range cs {
		t.Rows = append(t.Rows, []string{c.Variable, f.Number(c.Explained), f.Number(c.Unexplained), f.Number(c.Explained + c.Unexplained)})
	}
	return t
}

// ModelTable lists the coefficients of a fitted model.
func ModelTable(title string, m *regression.Model, f Formatter) *Table {
	t := &Table{Title: title, Headers: []string{"Variable", "Coefficient", "Std. error", "t", "p"}}
	for i, name := range m.Names {
		t.Rows = append(t.Rows, []string{name, f.Number(m.Coef[i]), f.Number(m.StdErrors[i]), f.Number(m.TStats[i]), f.PValue(m.PValues[i])})
	}
	t.Rows = append(t.Rows, []string{"R²", f.Number(m.RSquared), "", "", ""}, []string{"N", fmt.Sprint(m.NObs), "", "", ""})
	return t
}

// TimeTable shows the three-way decomposition of change over time.
func TimeTable(r *regression.TimeResult, f Formatter) *Table {
	c := r.Contributions
	return &Table{
		Title:   fmt.Sprintf("Change of %s: %s → %s", r.Outcome, r.Period1.Label, r.Period2.Label),
		Headers: []string{"Effect", "Value", "%"},
		Rows: [][]string{
			{"Total change", f.Number(r.TotalChange), f.Percent(100)},
			{"Intercept (baseline)", f.Number(r.InterceptEffect), f.Percent(c.Intercept)},
			{"Coefficients (returns)", f.Number(r.CoefficientEffect), f.Percent(c.Coefficients)},
			{"Endowments (characteristics)", f.Number(r.EndowmentEffect), f.Percent(c.Endowments)},
		},
	}
}

// MathematicalTable lists the variables of a formula decomposition.
func MathematicalTable(r *mathematical.Result, f Formatter) *Table {
	t := &Table{
		Title:   fmt.Sprintf("%s: %s", r.Formula, r.Expression),
		Headers: []string{"Variable", r.Periods[0], r.Periods[1], "Δ", "Effect", "%"},
	}
	vars := make([]string, 0, len(r.Period1))
	for v := range r.Period1 {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	effects := make(map[string]mathematical.Effect, len(r.Effects))
	for _, e := range r.Effects {
		effects[e.Variable] = e
	}
	for _, v := range vars {
		row := []string{v, f.Number(r.Period1[v]), f.Number(r.Period2[v]), f.Number(r.Period2[v] - r.Period1[v]), "", ""}
		if e, ok := effects[v]; ok {
			row[4], row[5] = f.Number(e.Effect), f.Percent(e.Percent)
		}
		t.Rows = append(t.Rows, row)
	}
	delta := "ΔY"
	if r.LogScale {
		delta = "Δln Y"
	}
	t.Rows = append(t.Rows,
		[]string{"Y", f.Number(r.Y1), f.Number(r.Y2), f.Number(r.DeltaY), f.Number(r.TotalEffect), f.Percent(100)},
		[]string{"Residual (" + delta + " − Σ effects)", "", "", "", f.Number(r.Residual), ""},
	)
	return t
}

// EffectsTable lists the named effects of a formula decomposition.
func EffectsTable(r *mathematical.Result, f Formatter) *Table {
	t := &Table{Title: "Effects", Headers: []string{"Effect", "Variable", "Δ", "Contribution", "%"}}
	for _, e := range r.Effects {
		t.Rows = append(t.Rows, []string{e.Name, e.Variable, f.Number(e.Delta), f.Number(e.Effect), f.Percent(e.Percent)})
	}
	return t
}

// NestedTable lists the hierarchical contributions of a nested decomposition.
func NestedTable(r *structural.NestedResult, f Formatter) *Table {
	t := &Table{
		Title:   fmt.Sprintf("Nested decomposition of %s (%s → %s)", r.Outcome, r.Periods[0], r.Periods[1]),
		Headers: []string{"Level", "Component", "Composition", "Behavior", "Total"},
	}
	p := r.Contributions.Primary
	t.Rows = append(t.Rows, []string{"Primary", r.Primary, f.Percent(p.Composition), f.Percent(p.Behavior), f.Percent(p.Composition + p.Behavior)})
	for _, category := range r.Categories {
		for _, lvl := range r.SecondaryBy[category] {
			s := r.Contributions.Secondary[category][lvl.Variable]
			t.Rows = append(t.Rows, []string{
				"Secondary", category + ": " + lvl.Variable,
				f.Percent(s.Composition), f.Percent(s.Behavior), f.Percent(s.Composition + s.Behavior),
			})
		}
	}
	return t
}

// LevelTable lists the groups of one level of a nested decomposition.
func LevelTable(title string, l structural.Level, f Formatter) *Table {
	t := &Table{Title: title, Headers: []string{l.Variable, "Mean 1", "Mean 2", "Change", "Weight 1", "Weight 2"}}
	for _, g := range l.Groups {
		t.Rows = append(t.Rows, []string{g.Group, f.Number(g.Mean1), f.Number(g.Mean2), f.Number(g.Change), f.Number(g.Weight1), f.Number(g.Weight2)})
	}
	return t
}

// ComponentsTable lists the demographic components of every period pair.
func ComponentsTable(r *structural.ComponentsResult, f Formatter) *Table {
	t := &Table{
		Title:   "Demographic components of " + r.Outcome,
		Headers: []string{"Periods", "Component", "Contribution", "%"},
	}
	for _, pc := range r.Changes {
		span := pc.From + "-" + pc.To
		t.Rows = append(t.Rows, []string{span, "total", f.Number(pc.TotalChange), f.Percent(100)})
		for _, c := range pc.Components {
			t.Rows = append(t.Rows, []string{span, c.Name, f.Number(c.Contribution), f.Percent(c.Percent)})
		}
	}
	return t
}

// PathsTable lists the effect of every path.
func PathsTable(r *structural.PathsResult, f Formatter) *Table {
	t := &Table{
		Title:   "Path analysis of " + r.Outcome,
		Headers: []string{"Path", "Chain", "Coefficients", "Total effect", "Explained variance", "%"},
	}
	for _, p := range r.Paths {
		coefs := ""
		for i, c := range p.Coefficients {
			if i > 0 {
				coefs += " × "
			}
			coefs += f.Number(c)
		}
		chain := ""
		for _, v := range p.Variables {
			chain += v + " → "
		}
		t.Rows = append(t.Rows, []string{p.Name, chain + r.Outcome, coefs, f.Number(p.TotalEffect), f.Number(p.ExplainedVariance), f.Percent(p.PercentExplained)})
	}
	return t
}

// SeriesTable lists one or more series side by side, aligned on labels.
func SeriesTable(title string, series []*timeseries.Series, f Formatter) *Table {
	t := &Table{Title: title, Headers: []string{"Period"}}
	var labels []string
	seen := make(map[string]bool)
	values := make([]map[string]float64, len(series))
	for i, s := range series {
		t.Headers = append(t.Headers, s.Name)
		values[i] = make(map[string]float64, s.Len())
		for j, l := range s.Labels {
			values[i][l] = s.Values[j]
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	for _, l := range labels {
		row := []string{l}
		for i := range series {
			if v, ok := values[i][l]; ok {
				row = append(row, f.Number(v))
			} else {
				row = append(row, "")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TrendTable summarizes the change of each series. The last column is a
// KPSS level-stationarity verdict, empty for fewer than 10 observations.
func TrendTable(series []*timeseries.Series, f Formatter) *Table {
	t := &Table{Title: "Trend summary", Headers: []string{"Series", "From", "To", "Start", "End", "Change", "Growth", "Mean", "Std", "Stable level"}}
	for _, s := range series {
		if s.Len() == 0 {
			continue
		}
		stable := ""
		if k := timeseries.KPSS(s.Values, false, 0); k != nil {
			stable = "no"
			if k.Stationary {
				stable = "yes"
			}
		}
		t.Rows = append(t.Rows, []string{
			s.Name, s.Labels[0], s.Labels[s.Len()-1],
			f.Number(s.Values[0]), f.Number(s.Values[s.Len()-1]),
			f.Number(s.Change()), f.Percent(s.GrowthRate()),
			f.Number(s.Mean()), f.Number(s.Std()), stable,
		})
	}
	return t
}

// DecompositionTable lists the components of a seasonal decomposition.
func DecompositionTable(d *timeseries.Decomposition, f Formatter) *Table {
	t := &Table{
		Title:   fmt.Sprintf("%s decomposition (period %d)", d.Method, d.Period),
		Headers: []string{"Period", "Observed", "Trend", "Seasonal", "Residual"},
	}
	for i, l := range d.Original.Labels {
		t.Rows = append(t.Rows, []string{l, f.Number(d.Original.Values[i]), f.Number(d.Trend.Values[i]), f.Number(d.Seasonal.Values[i]), f.Number(d.Residual.Values[i])})
	}
	return t
}

// DiagnosticsTable reports component strengths and the residual Ljung-Box
// test of a decomposition.
func DiagnosticsTable(d *timeseries.Decomposition, f Formatter) *Table {
	trend, seasonal := d.Strength()
	t := &Table{
		Title:   "Decomposition diagnostics",
		Headers: []string{"Measure", "Value"},
		Rows: [][]string{
			{"Trend strength", f.Number(trend)},
			{"Seasonal strength", f.Number(seasonal)},
		},
	}
	if lb := d.Diagnostics(); lb != nil {
		verdict := "autocorrelated"
		if lb.White() {
			verdict = "white noise"
		}
		t.Rows = append(t.Rows,
			[]string{fmt.Sprintf("Ljung-Box Q (%d lags)", lb.Lags), f.Number(lb.Statistic)},
			[]string{"Ljung-Box p-value", f.PValue(lb.PValue)},
			[]string{"Residuals", verdict},
		)
	}
	return t
}

// SummaryRow is one analysis in a summary table.
type SummaryRow struct {
	ID          string // shortened to 8 characters
	Date        string
	Type        string
	Title       string
	TotalChange float64
	First       float64 // composition or explained percent
	Second      float64 // behavior or unexplained percent
}

// SummaryTable lists past analyses.
func SummaryTable(rows []SummaryRow, f Formatter) *Table {
	t := &Table{Title: "Analysis summary", Headers: []string{"ID", "Date", "Type", "Title", "Total change", "Composition / explained", "Behavior / unexplained"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{shortID(r.ID), r.Date, r.Type, truncate(r.Title, 32), f.Number(r.TotalChange), f.Percent(r.First), f.Percent(r.Second)})
	}
	return t
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
