package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/report"
	"github.com/sartorproj/godecomp/structural"
	"github.com/sartorproj/godecomp/timeseries"
)

// The parameter structs are filled from flags by the commands and from YAML
// by batch files.

type demographicParams struct {
	Group   string   `yaml:"group"`
	Periods []string `yaml:"periods"` // derives w_<p> and y_<p> columns
	W1      string   `yaml:"w1"`
	Y1      string   `yaml:"y1"`
	W2      string   `yaml:"w2"`
	Y2      string   `yaml:"y2"`
}

func (p demographicParams) columns() (demographic.Columns, error) {
	cols := demographic.Columns{Group: p.Group, W1: p.W1, Y1: p.Y1, W2: p.W2, Y2: p.Y2}
	if len(p.Periods) > 0 {
		if len(p.Periods) != 2 {
			return cols, fmt.Errorf("periods must name exactly two periods, got %d", len(p.Periods))
		}
		derive := func(col *string, prefix, period string) {
			if *col == "" {
				*col = prefix + "_" + period
			}
		}
		derive(&cols.W1, "w", p.Periods[0])
		derive(&cols.Y1, "y", p.Periods[0])
		derive(&cols.W2, "w", p.Periods[1])
		derive(&cols.Y2, "y", p.Periods[1])
	}
	if cols.Group == "" || cols.W1 == "" || cols.Y1 == "" || cols.W2 == "" || cols.Y2 == "" {
		return cols, fmt.Errorf("group and the four weight/rate columns are required (or --periods)")
	}
	return cols, nil
}

func runDemographic(f *dataset.Frame, source string, p demographicParams) (*outcome, error) {
	cols, err := p.columns()
	if err != nil {
		return nil, err
	}
	opts := demographic.Options{
		Normalize:             cfg.Analysis.NormalizeWeights,
		PercentTolerance:      cfg.Analysis.PercentTolerance,
		VerificationTolerance: cfg.Analysis.VerificationTolerance,
	}
	res, err := demographic.Analyze(f, cols, opts)
	if err != nil {
		return nil, err
	}
	rf := cfg.Formatter()
	return &outcome{
		kind:     string(report.KindDemographic),
		title:    fmt.Sprintf("Demographic decomposition by %s", cols.Group),
		source:   source,
		result:   res,
		tables:   []*report.Table{report.DemographicSummary(res, rf), report.DemographicTable(res, rf)},
		extra:    report.ContributionChart(res, 10, 30, rf) + "\n",
		warnings: res.Warnings,
	}, nil
}

type mathematicalParams struct {
	Formula        string   `yaml:"formula"`
	Expression     string   `yaml:"expression"`
	Name           string   `yaml:"name"`
	VariableColumn string   `yaml:"variable_column"`
	Periods        []string `yaml:"periods"`
}

func runMathematical(f *dataset.Frame, source string, p mathematicalParams) (*outcome, error) {
	if p.VariableColumn == "" {
		p.VariableColumn = "variable"
	}
	d := mathematical.New()
	id := p.Formula
	if p.Expression != "" {
		var err error
		if id, err = d.Register(p.Expression, p.Name); err != nil {
			return nil, err
		}
	}
	if id == "" {
		return nil, fmt.Errorf("a formula or an expression is required")
	}

	data, err := mathematical.DataFromFrame(f, p.VariableColumn)
	if err != nil {
		return nil, err
	}
	periods, err := twoPeriods(p.Periods, func() []string {
		var cols []string
		for _, c := range f.Columns {
			if c != p.VariableColumn {
				cols = append(cols, c)
			}
		}
		return cols
	})
	if err != nil {
		return nil, err
	}

	res, err := d.Analyze(id, data, periods)
	if err != nil {
		return nil, err
	}
	return &outcome{
		kind:   string(report.KindMathematical),
		title:  fmt.Sprintf("Mathematical decomposition of %s", res.Expression),
		source: source,
		result: res,
	}, nil
}

type oaxacaParams struct {
	Outcome    string   `yaml:"outcome"`
	Group      string   `yaml:"group"`
	Predictors []string `yaml:"predictors"`
	Groups     []string `yaml:"groups"`
	Method     string   `yaml:"method"`
}

func runOaxaca(f *dataset.Frame, source string, p oaxacaParams) (*outcome, error) {
	if p.Method == "" {
		p.Method = cfg.Analysis.OaxacaMethod
	}
	groups, err := twoPeriods(p.Groups, nil)
	if err != nil {
		return nil, err
	}
	res, err := regression.OaxacaBlinder(f, regression.Spec{
		Outcome:    p.Outcome,
		Predictors: p.Predictors,
		GroupVar:   p.Group,
		Group1:     groups[0],
		Group2:     groups[1],
		Method:     regression.Method(p.Method),
	})
	if err != nil {
		return nil, err
	}
	rf := cfg.Formatter()
	return &outcome{
		kind:   string(report.KindRegression),
		title:  fmt.Sprintf("Oaxaca-Blinder decomposition of %s by %s", p.Outcome, p.Group),
		source: source,
		result: res,
		tables: []*report.Table{
			report.OaxacaTable(res, rf),
			report.ContributionTable("Detailed contributions", "Explained", "Unexplained", res.Detailed, rf),
			report.ModelTable("Regression: "+res.Group1.Label, res.Group1.Model, rf),
			report.ModelTable("Regression: "+res.Group2.Label, res.Group2.Model, rf),
		},
		warnings: res.Warnings,
	}, nil
}

type timeParams struct {
	Outcome    string   `yaml:"outcome"`
	Predictors []string `yaml:"predictors"`
	TimeVar    string   `yaml:"time"`
	Periods    []string `yaml:"periods"`
}

func runTime(f *dataset.Frame, source string, p timeParams) (*outcome, error) {
	periods, err := twoPeriods(p.Periods, nil)
	if err != nil {
		return nil, err
	}
	res, err := regression.TimeDecomposition(f, regression.TimeSpec{
		Outcome:    p.Outcome,
		Predictors: p.Predictors,
		TimeVar:    p.TimeVar,
		Time1:      periods[0],
		Time2:      periods[1],
	})
	if err != nil {
		return nil, err
	}
	return &outcome{
		kind:     string(report.KindTime),
		title:    fmt.Sprintf("Time decomposition of %s", p.Outcome),
		source:   source,
		result:   res,
		warnings: res.Warnings,
	}, nil
}

type nestedParams struct {
	Outcome   string   `yaml:"outcome"`
	Primary   string   `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
	PeriodVar string   `yaml:"period_var"`
	Periods   []string `yaml:"periods"`
}

func runNested(ctx context.Context, f *dataset.Frame, source string, p nestedParams) (*outcome, error) {
	periods, err := twoPeriods(p.Periods, nil)
	if err != nil {
		return nil, err
	}
	res, err := structural.Nested(ctx, f, structural.NestedSpec{
		Outcome:   p.Outcome,
		Primary:   p.Primary,
		Secondary: p.Secondary,
		PeriodVar: p.PeriodVar,
		Periods:   periods,
	})
	if err != nil {
		return nil, err
	}
	rf := cfg.Formatter()
	tables := []*report.Table{report.NestedTable(res, rf), report.LevelTable("Primary level: "+res.Primary, res.PrimaryLevel, rf)}
	for _, cat := range res.Categories {
		for _, l := range res.SecondaryBy[cat] {
			tables = append(tables, report.LevelTable(fmt.Sprintf("%s = %s: %s", res.Primary, cat, l.Variable), l, rf))
		}
	}
	return &outcome{
		kind:   string(report.KindNested),
		title:  fmt.Sprintf("Nested decomposition of %s by %s", p.Outcome, p.Primary),
		source: source,
		result: res,
		tables: tables,
	}, nil
}

type componentsParams struct {
	Outcome   string `yaml:"outcome"`
	AgeVar    string `yaml:"age"`
	PeriodVar string `yaml:"period_var"`
}

func runComponents(f *dataset.Frame, source string, p componentsParams) (*outcome, error) {
	res, err := structural.Components(f, structural.ComponentSpec{
		Outcome:   p.Outcome,
		AgeVar:    p.AgeVar,
		PeriodVar: p.PeriodVar,
	})
	if err != nil {
		return nil, err
	}
	return &outcome{
		kind:   string(report.KindComponents),
		title:  fmt.Sprintf("Demographic components of %s", p.Outcome),
		source: source,
		result: res,
	}, nil
}

type pathsParams struct {
	Outcome string              `yaml:"outcome"`
	Paths   map[string][]string `yaml:"paths"`
}

// parsePaths reads name=var1,var2 specifications.
func parsePaths(specs []string) (map[string][]string, error) {
	paths := make(map[string][]string, len(specs))
	for _, s := range specs {
		name, vars, ok := strings.Cut(s, "=")
		if !ok || name == "" || vars == "" {
			return nil, fmt.Errorf("invalid path %q, expected name=var1,var2", s)
		}
		paths[name] = strings.Split(vars, ",")
	}
	return paths, nil
}

func runPaths(f *dataset.Frame, source string, p pathsParams) (*outcome, error) {
	if len(p.Paths) == 0 {
		return nil, fmt.Errorf("at least one path is required")
	}
	res, err := structural.PathAnalysis(f, p.Outcome, p.Paths)
	if err != nil {
		return nil, err
	}
	return &outcome{
		kind:   string(report.KindPaths),
		title:  fmt.Sprintf("Path analysis of %s", p.Outcome),
		source: source,
		result: res,
	}, nil
}

type trendParams struct {
	TimeVar  string `yaml:"time"`
	ValueVar string `yaml:"value"`
	GroupVar string `yaml:"group"`
	Period   int    `yaml:"period"` // 0 skips the seasonal decomposition
	Method   string `yaml:"method"`
	Robust   int    `yaml:"robust_iterations"`
}

// trendResult is the exported form of a trend analysis.
type trendResult struct {
	Series        []*timeseries.Series       `json:"series"`
	Decomposition *timeseries.Decomposition  `json:"decomposition,omitempty"`
	Diagnostics   *timeseries.LjungBoxResult `json:"diagnostics,omitempty"`
}

func runTrend(f *dataset.Frame, source string, p trendParams) (*outcome, error) {
	var series []*timeseries.Series
	if p.GroupVar != "" {
		var err error
		if series, err = timeseries.GroupedFromFrame(f, p.TimeVar, p.ValueVar, p.GroupVar); err != nil {
			return nil, err
		}
	} else {
		s, err := timeseries.FromFrame(f, p.TimeVar, p.ValueVar)
		if err != nil {
			return nil, err
		}
		series = []*timeseries.Series{s}
	}

	rf := cfg.Formatter()
	res := &trendResult{Series: series}
	tables := []*report.Table{report.TrendTable(series, rf), report.SeriesTable(p.ValueVar+" by "+p.TimeVar, series, rf)}

	var extra strings.Builder
	for _, s := range series {
		fmt.Fprintf(&extra, "%-20s %s\n", s.Name, report.Sparkline(s))
	}

	if p.Period > 0 {
		if len(series) != 1 {
			return nil, fmt.Errorf("seasonal decomposition needs a single series, got %d groups", len(series))
		}
		var (
			d   *timeseries.Decomposition
			err error
		)
		switch timeseries.Method(p.Method) {
		case timeseries.MethodSTL:
			robust := p.Robust
			if robust == 0 {
				robust = 2
			}
			d, err = timeseries.STL(series[0], p.Period, robust)
		case timeseries.Multiplicative:
			d, err = timeseries.Decompose(series[0], p.Period, timeseries.Multiplicative)
		default:
			d, err = timeseries.Decompose(series[0], p.Period, timeseries.Additive)
		}
		if err != nil {
			return nil, err
		}
		res.Decomposition = d
		res.Diagnostics = d.Diagnostics()
		tables = append(tables, report.DecompositionTable(d, rf), report.DiagnosticsTable(d, rf))
	}

	return &outcome{
		kind:   "trend",
		title:  fmt.Sprintf("Trend of %s", p.ValueVar),
		source: source,
		result: res,
		tables: tables,
		extra:  extra.String(),
	}, nil
}

// twoPeriods validates an optional pair of labels. When none are given and
// candidates is set, the first and last candidates in sorted order are used.
func twoPeriods(given []string, candidates func() []string) ([2]string, error) {
	switch {
	case len(given) == 2:
		return [2]string{given[0], given[1]}, nil
	case len(given) != 0:
		return [2]string{}, fmt.Errorf("expected exactly two values, got %v", given)
	case candidates == nil:
		return [2]string{}, nil
	}
	sorted := dataset.SortLabels(candidates())
	if len(sorted) < 2 {
		return [2]string{}, fmt.Errorf("at least two periods are required, got %v", sorted)
	}
	return [2]string{sorted[0], sorted[len(sorted)-1]}, nil
}
