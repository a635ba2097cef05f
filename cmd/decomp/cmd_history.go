package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/godecomp"
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/history"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/report"
	"github.com/sartorproj/godecomp/structural"
)

var (
	historyLimit int
	reportOutput string
	reportWidth  int
	reportStyle  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *history.Store) error {
			records, err := s.List(ctx, historyLimit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No analyses recorded yet.")
				return err
			}
			rows := make([]report.SummaryRow, len(records))
			for i, r := range records {
				rows[i] = report.SummaryRow{
					ID:          r.ID.String(),
					Date:        r.CreatedAt.Local().Format("2006-01-02 15:04"),
					Type:        r.Type,
					Title:       r.Title,
					TotalChange: r.Summary.TotalChange,
					First:       r.Summary.FirstPercent,
					Second:      r.Summary.SecondPercent,
				}
			}
			return printTable(cmd, report.SummaryTable(rows, cfg.Formatter()))
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *history.Store) error {
			r, err := s.Get(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\nDate:    %s\nType:    %s\nTitle:   %s\nSource:  %s\n\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Type, r.Title, r.Source)
			_, err = out.Write(r.Payload)
			return err
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *history.Store) error {
			if err := s.Clear(ctx); err != nil {
				return err
			}
			logger.Info("history cleared", zap.String("path", cfg.History.Path))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return err
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Render a stored analysis as a report (default: the latest)",
	Long: `Renders an analysis from the history. Without --output the report is shown
in the terminal; with --output it is written as Markdown (.md) or HTML (.html).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *history.Store) error {
			r, err := latestOr(ctx, s, args)
			if err != nil {
				return err
			}
			result, err := decodeResult(r)
			if err != nil {
				return err
			}
			doc, err := report.Build(result, report.Metadata{
				App:     "Decomposition Analysis",
				Version: godecomp.Version,
				Title:   r.Title,
				Source:  r.Source,
				Date:    r.CreatedAt.Local(),
				Extra:   map[string]string{"id": r.ID.String()},
			}, cfg.Formatter())
			if err != nil {
				return err
			}
			return writeReport(cmd, doc)
		})
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit, "Number of analyses to list (0 = all)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)

	reportCmd.Flags().StringVar(&reportOutput, "output", "", "Write the report to a .md or .html file")
	reportCmd.Flags().IntVar(&reportWidth, "width", 100, "Terminal word wrap")
	reportCmd.Flags().StringVar(&reportStyle, "style", "", "Terminal style: dark, light, notty (default: automatic)")
}

func withStore(ctx context.Context, fn func(context.Context, *history.Store) error) error {
	s, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer s.Close()
	return fn(ctx, s)
}

func latestOr(ctx context.Context, s *history.Store, args []string) (history.Record, error) {
	if len(args) == 1 {
		return s.Get(ctx, args[0])
	}
	records, err := s.List(ctx, 1)
	if err != nil {
		return history.Record{}, err
	}
	if len(records) == 0 {
		return history.Record{}, history.ErrNotFound
	}
	return records[0], nil
}

// decodeResult restores the typed result of a record. Values stored as null
// come back as zero.
func decodeResult(r history.Record) (any, error) {
	var v any
	switch report.Kind(r.Type) {
	case report.KindDemographic:
		v = &demographic.Result{}
	case report.KindRegression:
		v = &regression.OaxacaResult{}
	case report.KindTime:
		v = &regression.TimeResult{}
	case report.KindMathematical:
		v = &mathematical.Result{}
	case report.KindNested:
		v = &structural.NestedResult{}
	case report.KindComponents:
		v = &structural.ComponentsResult{}
	case report.KindPaths:
		v = &structural.PathsResult{}
	default:
		return nil, fmt.Errorf("%w: %s", report.ErrUnsupportedResult, r.Type)
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", r.ID, err)
	}
	return v, nil
}

func writeReport(cmd *cobra.Command, doc *report.Report) error {
	if reportOutput == "" {
		out, err := doc.RenderTerminal(reportWidth, reportStyle)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}

	var content string
	switch strings.ToLower(filepath.Ext(reportOutput)) {
	case ".md", ".markdown":
		content = doc.Markdown()
	case ".html", ".htm":
		var err error
		if content, err = doc.HTML(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported report format %q (use .md or .html)", filepath.Ext(reportOutput))
	}
	if err := os.WriteFile(reportOutput, []byte(content), 0o644); err != nil {
		return err
	}
	logger.Info("report written", zap.String("path", reportOutput))
	return nil
}
