package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sartorproj/godecomp"
	"github.com/sartorproj/godecomp/dataset"
	"github.com/sartorproj/godecomp/export"
	"github.com/sartorproj/godecomp/history"
	"github.com/sartorproj/godecomp/report"
	"github.com/sartorproj/godecomp/sampledata"
)

var errNoInput = errors.New("no input: pass --data or --example")

// outcome is a finished analysis ready to be printed, exported and
// recorded.
type outcome struct {
	kind     string
	title    string
	source   string
	result   any
	tables   []*report.Table // used instead of the report tables when set
	extra    string          // printed after the tables in table format
	warnings []string
}

// loadInput returns the frame selected by --data or --example and a label
// for it.
func loadInput(data, sheet, example string) (*dataset.Frame, string, error) {
	switch {
	case example != "":
		d, err := sampledata.Get(example)
		if err != nil {
			return nil, "", err
		}
		return d.Frame, "example:" + example, nil
	case data == "":
		return nil, "", errNoInput
	case sheet != "":
		f, err := dataset.LoadExcel(data, sheet)
		return f, filepath.Base(data), err
	default:
		f, err := dataset.Load(data)
		return f, filepath.Base(data), err
	}
}

// emit prints o in the selected format, exports it and records it.
func emit(ctx context.Context, w io.Writer, o *outcome) error {
	for _, msg := range o.warnings {
		logger.Warn("analysis warning", zap.String("analysis", o.kind), zap.String("warning", msg))
	}
	if err := render(w, o, format); err != nil {
		return err
	}
	if exportPath != "" {
		if err := exportOutcome(exportPath, o); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("result exported", zap.String("path", exportPath))
	}
	if noHistory || !cfg.History.Enabled {
		return nil
	}
	return record(ctx, []*outcome{o})
}

// exportOutcome writes o to path. Results without a report are exported
// through their tables.
func exportOutcome(path string, o *outcome) error {
	err := export.WriteFile(path, o.result, cfg.Formatter())
	if errors.Is(err, report.ErrUnsupportedResult) && o.tables != nil {
		err = export.WriteTablesFile(path, o.tables)
	}
	return err
}

func render(w io.Writer, o *outcome, format string) error {
	f := cfg.Formatter()
	switch format {
	case "json":
		return export.JSON(w, o.result)
	case "markdown", "html":
		doc, err := report.Build(o.result, metadata(o), f)
		if errors.Is(err, report.ErrUnsupportedResult) && o.tables != nil {
			doc, err = &report.Report{Kind: report.Kind(o.kind), Meta: metadata(o), Tables: o.tables, Warnings: o.warnings}, nil
		}
		if err != nil {
			return err
		}
		if format == "markdown" {
			_, err = io.WriteString(w, doc.Markdown())
			return err
		}
		page, err := doc.HTML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case "table", "":
		tables := o.tables
		if tables == nil {
			doc, err := report.Build(o.result, metadata(o), f)
			if err != nil {
				return err
			}
			tables = doc.Tables
		}
		var b strings.Builder
		for _, t := range tables {
			if cfg.Output.MaxTableRows > 0 {
				t = t.Truncate(cfg.Output.MaxTableRows)
			}
			b.WriteString(t.Render(report.Style(cfg.Output.Style)))
			b.WriteString("\n\n")
		}
		b.WriteString(o.extra)
		for _, msg := range o.warnings {
			fmt.Fprintf(&b, "warning: %s\n", msg)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, markdown, html)", format)
}

func metadata(o *outcome) report.Metadata {
	return report.Metadata{
		App:     "Decomposition Analysis",
		Version: godecomp.Version,
		Title:   o.title,
		Source:  o.source,
		Date:    time.Now(),
	}
}

// record stores the outcomes that have a headline and prunes the history to
// the configured limit.
func record(ctx context.Context, outcomes []*outcome) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	for _, o := range outcomes {
		h, ok := report.HeadlineOf(o.result)
		if !ok {
			continue
		}
		var payload bytes.Buffer
		if err := export.JSON(&payload, o.result); err != nil {
			return err
		}
		r := history.NewRecord(string(h.Kind), o.title, o.source, history.Summary{
			TotalChange:   h.TotalChange,
			FirstPercent:  h.First,
			SecondPercent: h.Second,
		}, payload.Bytes())
		if _, err := store.Save(ctx, r); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		logger.Debug("analysis recorded", zap.String("id", r.ID.String()), zap.String("type", r.Type))
	}

	n, err := store.Prune(ctx, cfg.History.Limit)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if n > 0 {
		logger.Debug("history pruned", zap.Int64("removed", n))
	}
	return nil
}

// splitPair parses "a,b" into two labels.
func splitPair(s, what string) ([2]string, error) {
	if s == "" {
		return [2]string{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return [2]string{}, fmt.Errorf("%s must be two comma-separated values, got %q", what, s)
	}
	return [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}, nil
}
