package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/sartorproj/godecomp/export"
	"github.com/sartorproj/godecomp/report"
)

// batchFile describes several analyses run together:
//
//	output_dir: results
//	format: xlsx
//	jobs:
//	  - name: africa
//	    type: demographic
//	    example: education_africa
//	    params: {group: Country, periods: ["2015", "2020"]}
type batchFile struct {
	OutputDir   string     `yaml:"output_dir"`
	Format      string     `yaml:"format"`      // csv, json or xlsx (default: json)
	Concurrency int        `yaml:"concurrency"` // default: GOMAXPROCS
	Jobs        []batchJob `yaml:"jobs"`
}

type batchJob struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Data    string    `yaml:"data"`
	Sheet   string    `yaml:"sheet"`
	Example string    `yaml:"example"`
	Params  yaml.Node `yaml:"params"`
}

// jobRunners maps a job type to its analysis. Defaults set before decoding
// match the command flags.
var jobRunners = map[string]func(ctx context.Context, f *dataset.Frame, source string, params *yaml.Node) (*outcome, error){
	"demographic": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		var p demographicParams
		return decodeThen(n, &p, func() (*outcome, error) { return runDemographic(f, source, p) })
	},
	"mathematical": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		var p mathematicalParams
		return decodeThen(n, &p, func() (*outcome, error) { return runMathematical(f, source, p) })
	},
	"oaxaca": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		var p oaxacaParams
		return decodeThen(n, &p, func() (*outcome, error) { return runOaxaca(f, source, p) })
	},
	"time": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		p := timeParams{TimeVar: "period"}
		return decodeThen(n, &p, func() (*outcome, error) { return runTime(f, source, p) })
	},
	"nested": func(ctx context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		var p nestedParams
		return decodeThen(n, &p, func() (*outcome, error) { return runNested(ctx, f, source, p) })
	},
	"components": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		p := componentsParams{AgeVar: "age_group", PeriodVar: "period"}
		return decodeThen(n, &p, func() (*outcome, error) { return runComponents(f, source, p) })
	},
	"paths": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		var p pathsParams
		return decodeThen(n, &p, func() (*outcome, error) { return runPaths(f, source, p) })
	},
	"trend": func(_ context.Context, f *dataset.Frame, source string, n *yaml.Node) (*outcome, error) {
		p := trendParams{TimeVar: "period", Method: "additive"}
		return decodeThen(n, &p, func() (*outcome, error) { return runTrend(f, source, p) })
	},
}

func decodeThen[P any](n *yaml.Node, p *P, run func() (*outcome, error)) (*outcome, error) {
	if n.Kind != 0 {
		if err := n.Decode(p); err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
	}
	return run()
}

var batchCmd = &cobra.Command{
	Use:   "batch [file.yaml]",
	Short: "Run the analyses listed in a YAML file concurrently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBatch(args[0])
		if err != nil {
			return err
		}
		start := time.Now()
		outcomes, err := runBatch(cmd.Context(), b)
		if err != nil {
			return err
		}
		logger.Info("batch finished", zap.Int("jobs", len(outcomes)), zap.Duration("elapsed", time.Since(start)))

		if err := writeBatch(b, outcomes); err != nil {
			return err
		}
		if err := printTable(cmd, batchSummary(outcomes)); err != nil {
			return err
		}
		if noHistory || !cfg.History.Enabled {
			return nil
		}
		return record(cmd.Context(), outcomes)
	},
}

func loadBatch(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	b := &batchFile{}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if b.Format == "" {
		b.Format = string(export.FormatJSON)
	}
	if b.Concurrency <= 0 {
		b.Concurrency = runtime.GOMAXPROCS(0)
	}
	if len(b.Jobs) == 0 {
		return nil, fmt.Errorf("batch file %s has no jobs", path)
	}

	seen := make(map[string]bool, len(b.Jobs))
	for i, j := range b.Jobs {
		if j.Name == "" {
			return nil, fmt.Errorf("job %d has no name", i+1)
		}
		if j.Name == "." || j.Name == ".." || strings.ContainsAny(j.Name, `/\`) || filepath.Base(j.Name) != j.Name {
			return nil, fmt.Errorf("job %q: name must be a plain file name", j.Name)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("duplicate job name %q", j.Name)
		}
		seen[j.Name] = true
		if _, ok := jobRunners[j.Type]; !ok {
			return nil, fmt.Errorf("job %q: unknown type %q", j.Name, j.Type)
		}
	}
	if _, err := export.FormatOf("x." + b.Format); err != nil {
		return nil, err
	}
	return b, nil
}

// runBatch runs every job and returns the outcomes in job order. The first
// failing job cancels the others.
func runBatch(ctx context.Context, b *batchFile) ([]*outcome, error) {
	outcomes := make([]*outcome, len(b.Jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Concurrency)

	for i, job := range b.Jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, source, err := loadInput(job.Data, job.Sheet, job.Example)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			o, err := jobRunners[job.Type](ctx, f, source, &job.Params)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			o.title = job.Name + ": " + o.title
			for _, msg := range o.warnings {
				logger.Warn("analysis warning", zap.String("analysis", o.kind), zap.String("job", job.Name), zap.String("warning", msg))
			}
			logger.Debug("job finished", zap.String("job", job.Name), zap.String("type", job.Type))
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func writeBatch(b *batchFile, outcomes []*outcome) error {
	if b.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return err
	}
	for i, o := range outcomes {
		path := filepath.Join(b.OutputDir, b.Jobs[i].Name+"."+b.Format)
		if err := exportOutcome(path, o); err != nil {
			return fmt.Errorf("job %q: export: %w", b.Jobs[i].Name, err)
		}
	}
	return nil
}

func batchSummary(outcomes []*outcome) *report.Table {
	rows := make([]report.SummaryRow, 0, len(outcomes))
	now := time.Now().Format("2006-01-02 15:04")
	for _, o := range outcomes {
		row := report.SummaryRow{Date: now, Type: o.kind, Title: o.title}
		if h, ok := report.HeadlineOf(o.result); ok {
			row.TotalChange, row.First, row.Second = h.TotalChange, h.First, h.Second
		}
		rows = append(rows, row)
	}
	return report.SummaryTable(rows, cfg.Formatter())
}
