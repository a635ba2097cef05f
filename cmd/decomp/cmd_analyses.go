package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/report"
)

var (
	demoParams       demographicParams
	mathParams       mathematicalParams
	oaxParams        oaxacaParams
	timeDecompParams timeParams
	nestParams       nestedParams
	compParams       componentsParams
	pathOutcome      string
	pathSpecs        []string
	trendOpts        trendParams
)

// demographicCmd runs a Kitagawa decomposition
var demographicCmd = &cobra.Command{
	Use:   "demographic",
	Short: "Kitagawa decomposition into composition and behavior effects",
	Long: `Decomposes the change of a weighted mean between two periods. The input has
one row per group with a weight and a rate for each period.

  decomp demographic --example education_africa --group Country --periods 2015,2020`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runDemographic(in.frame, in.source, demoParams)
		})
	},
}

var mathematicalCmd = &cobra.Command{
	Use:   "mathematical",
	Short: "Decompose the change of a formula into the effects of its variables",
	Long: `The input has one row per variable (column --variable-column) and one column
per period. Use a built-in formula (see "decomp mathematical formulas") or a
custom --expression such as "A*B/C".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runMathematical(in.frame, in.source, mathParams)
		})
	},
}

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "List the built-in formulas",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := &report.Table{Title: "Formulas", Headers: []string{"ID", "Name", "Expression", "Variables", "Rule"}}
		for _, f := range mathematical.New().Formulas() {
			t.Rows = append(t.Rows, []string{f.ID, f.Name, f.Expression, joinArgs(f.Variables), f.Rule})
		}
		return printTable(cmd, t)
	},
}

var regressionCmd = &cobra.Command{
	Use:   "regression",
	Short: "Regression-based decompositions",
}

var oaxacaCmd = &cobra.Command{
	Use:   "oaxaca",
	Short: "Oaxaca-Blinder decomposition of the gap between two groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runOaxaca(in.frame, in.source, oaxParams)
		})
	},
}

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Three-way decomposition of the change of a mean between two periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runTime(in.frame, in.source, timeDecompParams)
		})
	},
}

var structuralCmd = &cobra.Command{
	Use:   "structural",
	Short: "Nested, age-component and path decompositions",
}

var nestedCmd = &cobra.Command{
	Use:   "nested",
	Short: "Hierarchical Kitagawa decomposition over a primary and secondary grouping",
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runNested(cmd.Context(), in.frame, in.source, nestParams)
		})
	},
}

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Split the change of a mean into age-structure and age-specific effects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runComponents(in.frame, in.source, compParams)
		})
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Estimate the effect of chains of variables on an outcome",
	Long: `Each --path names a chain of variables leading to the outcome:

  decomp structural paths --outcome income --path schooling=education_rate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := parsePaths(pathSpecs)
		if err != nil {
			return err
		}
		return analyze(cmd, func(in input) (*outcome, error) {
			return runPaths(in.frame, in.source, pathsParams{Outcome: pathOutcome, Paths: paths})
		})
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Summarize an indicator over time and decompose its seasonality",
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, func(in input) (*outcome, error) {
			return runTrend(in.frame, in.source, trendOpts)
		})
	},
}

func init() {
	demographicCmd.Flags().StringVar(&demoParams.Group, "group", "", "Group column")
	demographicCmd.Flags().StringSliceVar(&demoParams.Periods, "periods", nil, "Two periods; reads w_<period> and y_<period> columns")
	demographicCmd.Flags().StringVar(&demoParams.W1, "w1", "", "Weight column, first period")
	demographicCmd.Flags().StringVar(&demoParams.Y1, "y1", "", "Rate column, first period")
	demographicCmd.Flags().StringVar(&demoParams.W2, "w2", "", "Weight column, second period")
	demographicCmd.Flags().StringVar(&demoParams.Y2, "y2", "", "Rate column, second period")

	mathematicalCmd.Flags().StringVar(&mathParams.Formula, "formula", "", "Built-in formula ID")
	mathematicalCmd.Flags().StringVar(&mathParams.Expression, "expression", "", "Custom formula expression")
	mathematicalCmd.Flags().StringVar(&mathParams.Name, "name", "", "Name of the custom formula")
	mathematicalCmd.Flags().StringVar(&mathParams.VariableColumn, "variable-column", "variable", "Column holding the variable names")
	mathematicalCmd.Flags().StringSliceVar(&mathParams.Periods, "periods", nil, "Two period columns (default: first and last)")
	mathematicalCmd.AddCommand(formulasCmd)

	oaxacaCmd.Flags().StringVar(&oaxParams.Outcome, "outcome", "", "Outcome column")
	oaxacaCmd.Flags().StringVar(&oaxParams.Group, "group", "", "Column splitting the two groups")
	oaxacaCmd.Flags().StringSliceVar(&oaxParams.Predictors, "predictors", nil, "Predictor columns")
	oaxacaCmd.Flags().StringSliceVar(&oaxParams.Groups, "groups", nil, "The two group labels, reference first")
	oaxacaCmd.Flags().StringVar(&oaxParams.Method, "method", "", "oaxaca, oaxaca_reverse, cotton or neumark (default from config)")
	timeCmd.Flags().StringVar(&timeDecompParams.Outcome, "outcome", "", "Outcome column")
	timeCmd.Flags().StringSliceVar(&timeDecompParams.Predictors, "predictors", nil, "Predictor columns")
	timeCmd.Flags().StringVar(&timeDecompParams.TimeVar, "time", "period", "Time column")
	timeCmd.Flags().StringSliceVar(&timeDecompParams.Periods, "periods", nil, "The two periods to compare")
	regressionCmd.AddCommand(oaxacaCmd, timeCmd)

	nestedCmd.Flags().StringVar(&nestParams.Outcome, "outcome", "", "Outcome column")
	nestedCmd.Flags().StringVar(&nestParams.Primary, "primary", "", "Primary grouping column")
	nestedCmd.Flags().StringSliceVar(&nestParams.Secondary, "secondary", nil, "Secondary grouping columns")
	nestedCmd.Flags().StringVar(&nestParams.PeriodVar, "period-var", "period", "Period column")
	nestedCmd.Flags().StringSliceVar(&nestParams.Periods, "periods", nil, "The two periods to compare (default: first and last)")
	componentsCmd.Flags().StringVar(&compParams.Outcome, "outcome", "", "Outcome column")
	componentsCmd.Flags().StringVar(&compParams.AgeVar, "age", "age_group", "Age group column")
	componentsCmd.Flags().StringVar(&compParams.PeriodVar, "period-var", "period", "Period column")
	pathsCmd.Flags().StringVar(&pathOutcome, "outcome", "", "Outcome column")
	pathsCmd.Flags().StringArrayVar(&pathSpecs, "path", nil, "Path as name=var1,var2 (repeatable)")
	structuralCmd.AddCommand(nestedCmd, componentsCmd, pathsCmd)

	trendCmd.Flags().StringVar(&trendOpts.TimeVar, "time", "period", "Time column")
	trendCmd.Flags().StringVar(&trendOpts.ValueVar, "value", "", "Value column")
	trendCmd.Flags().StringVar(&trendOpts.GroupVar, "group", "", "One series per value of this column")
	trendCmd.Flags().IntVar(&trendOpts.Period, "period", 0, "Seasonal period; 0 skips the decomposition")
	trendCmd.Flags().StringVar(&trendOpts.Method, "method", "additive", "additive, multiplicative or stl")
	trendCmd.Flags().IntVar(&trendOpts.Robust, "robust", 2, "STL robustness iterations")
}

// input is the frame an analysis runs on.
type input struct {
	frame  *dataset.Frame
	source string
}

// analyze loads the input, runs fn and emits its outcome.
func analyze(cmd *cobra.Command, fn func(input) (*outcome, error)) error {
	f, source, err := loadInput(dataPath, sheetName, exampleName)
	if err != nil {
		return err
	}
	logger.Debug("input loaded", zap.String("source", source), zap.Int("rows", f.Len()))
	o, err := fn(input{frame: f, source: source})
	if err != nil {
		return err
	}
	return emit(cmd.Context(), cmd.OutOrStdout(), o)
}

func printTable(cmd *cobra.Command, t *report.Table) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render(report.Style(cfg.Output.Style)))
	return err
}

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}
