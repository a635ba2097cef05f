package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/report"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a workbook. Cells may be strings, numbers or
// booleans.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// SheetFromTable converts a report table into a sheet of formatted strings.
func SheetFromTable(name string, t *report.Table) Sheet {
	s := Sheet{Name: name, Headers: t.Headers}
	for _, r := range t.Rows {
		row := make([]any, len(r))
		for i, c := range r {
			row[i] = c
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// DemographicWorkbook lays out a demographic result as Groups, Summary and
// Metadata sheets.
func DemographicWorkbook(r *demographic.Result) []Sheet {
	groups := Sheet{
		Name: "Groups",
		Headers: []string{"group", "w1", "y1", "w2", "y2",
			"effect_composition", "effect_behavior", "total_contribution", "contribution_percent"},
	}
	for _, g := range r.Groups {
		groups.Rows = append(groups.Rows, []any{
			g.Group, g.W1, g.Y1, g.W2, g.Y2, g.Composition, g.Behavior, g.Total, g.ContributionPercent,
		})
	}

	a := r.Aggregate
	summary := Sheet{
		Name:    "Summary",
		Headers: []string{"metric", "value"},
		Rows: [][]any{
			{"Y1", a.Y1},
			{"Y2", a.Y2},
			{"total_change", a.TotalChange},
			{"composition_effect", a.Composition},
			{"behavior_effect", a.Behavior},
			{"composition_percent", a.CompositionPercent},
			{"behavior_percent", a.BehaviorPercent},
			{"verification", a.Verification},
		},
	}

	m := r.Metadata
	meta := Sheet{
		Name:    "Metadata",
		Headers: []string{"key", "value"},
		Rows: [][]any{
			{"num_groups", m.NumGroups},
			{"group", m.Columns.Group},
			{"w1", m.Columns.W1},
			{"y1", m.Columns.Y1},
			{"w2", m.Columns.W2},
			{"y2", m.Columns.Y2},
			{"normalized", m.Normalized},
		},
	}
	for i, w := range r.Warnings {
		meta.Rows = append(meta.Rows, []any{fmt.Sprintf("warning_%d", i+1), w})
	}
	return []Sheet{groups, summary, meta}
}

// Excel writes the sheets as an xlsx workbook.
func Excel(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("excel: no sheets")
	}
	wb := excelize.NewFile()
	defer wb.Close()

	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	used := make(map[string]bool)
	for i, s := range sheets {
		name := sheetName(s.Name, i, used)
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return err
		}

		header := make([]any, len(s.Headers))
		for j, h := range s.Headers {
			header[j] = h
		}
		if err := wb.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		if len(s.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(s.Headers), 1)
			if err := wb.SetCellStyle(name, "A1", last, bold); err != nil {
				return err
			}
		}
		for r, row := range s.Rows {
			cells := make([]any, len(row))
			for j, c := range row {
				cells[j] = cell(c)
			}
			addr, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := wb.SetSheetRow(name, addr, &cells); err != nil {
				return err
			}
		}
	}
	_, err = wb.WriteTo(w)
	return err
}

func cell(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return ""
	}
	return v
}

// sheetName makes a unique worksheet name of at most 31 characters without
// the characters Excel forbids.
func sheetName(name string, i int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[name] = true
	return name
}
