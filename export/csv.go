package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/report"
)

// CSV writes a table with its header row.
func CSV(w io.Writer, t *report.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// GroupCSV writes the per-group results with full precision.
func GroupCSV(w io.Writer, r *demographic.Result) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{
		"group", "w1", "y1", "w2", "y2",
		"effect_composition", "effect_behavior", "total_contribution", "contribution_percent", "contribution_abs",
	}}
	for _, g := range r.Groups {
		rows = append(rows, []string{
			g.Group,
			num(g.W1), num(g.Y1), num(g.W2), num(g.Y2),
			num(g.Composition), num(g.Behavior), num(g.Total), num(g.ContributionPercent), num(g.ContributionAbs),
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// AggregateCSV writes the aggregate results as metric,value pairs.
func AggregateCSV(w io.Writer, r *demographic.Result) error {
	a := r.Aggregate
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"metric", "value"},
		{"Y1", num(a.Y1)},
		{"Y2", num(a.Y2)},
		{"total_change", num(a.TotalChange)},
		{"composition_effect", num(a.Composition)},
		{"behavior_effect", num(a.Behavior)},
		{"composition_percent", num(a.CompositionPercent)},
		{"behavior_percent", num(a.BehaviorPercent)},
		{"verification", num(a.Verification)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
