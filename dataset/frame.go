package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrColumnNotFound is returned when a named column is absent.
	ErrColumnNotFound = errors.New("column not found")
	// ErrMissingValue is returned for empty or NA-style cells.
	ErrMissingValue = errors.New("missing value")
	// ErrNotNumeric is returned for a cell that does not parse as a number.
	ErrNotNumeric = errors.New("non-numeric value")
	// ErrRaggedRow is returned when a row has more or fewer cells than the header.
	ErrRaggedRow = errors.New("row length does not match header")
	// ErrEmpty is returned when a file has no data rows.
	ErrEmpty = errors.New("no data rows")
	// ErrUnsupportedFormat is returned for a file extension that cannot be loaded.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Frame is an in-memory table of named columns.
type Frame struct {
	Columns []string
	rows    [][]string
	index   map[string]int
}

// FromRecords builds a frame from a header and its rows.
func FromRecords(header []string, rows [][]string) (*Frame, error) {
	f := &Frame{
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		f.Columns[i] = h
		if _, dup := f.index[h]; !dup {
			f.index[h] = i
		}
	}
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d: %w (%d cells, %d columns)", n+1, ErrRaggedRow, len(row), len(header))
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(strings.Trim(c, "\""))
		}
		f.rows = append(f.rows, cells)
	}
	return f, nil
}

// MustFromRecords is like FromRecords but panics on error. Intended for
// literal datasets.
func MustFromRecords(header []string, rows [][]string) *Frame {
	f, err := FromRecords(header, rows)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Has reports whether the frame has the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Row returns a copy of the i-th row.
func (f *Frame) Row(i int) []string {
	out := make([]string, len(f.rows[i]))
	copy(out, f.rows[i])
	return out
}

// Records returns a copy of all rows.
func (f *Frame) Records() [][]string {
	out := make([][]string, len(f.rows))
	for i := range f.rows {
		out[i] = f.Row(i)
	}
	return out
}

// Column returns the raw cells of a column.
func (f *Frame) Column(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats parses a column as float64 values. Empty and NA-like cells are
// reported as ErrMissingValue.
func (f *Frame) Floats(name string) ([]float64, error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := ParseCell(c)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// IsNumeric reports whether every non-missing cell of a column parses as a number.
func (f *Frame) IsNumeric(name string) bool {
	cells, err := f.Column(name)
	if err != nil {
		return false
	}
	seen := false
	for _, c := range cells {
		if isMissing(c) {
			continue
		}
		if _, err := ParseCell(c); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// Unique returns the distinct values of a column in first-appearance order.
func (f *Frame) Unique(name string) []string {
	cells, err := f.Column(name)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, c := range cells {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Filter returns the rows whose column equals value. An unknown column yields
// an empty frame.
func (f *Frame) Filter(name, value string) *Frame {
	out := &Frame{Columns: f.Columns, index: f.index}
	idx, ok := f.index[name]
	if !ok {
		return out
	}
	for _, row := range f.rows {
		if row[idx] == value {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Concat appends the rows of other frames sharing this frame's columns.
func (f *Frame) Concat(others ...*Frame) *Frame {
	out := &Frame{Columns: f.Columns, index: f.index}
	out.rows = append(out.rows, f.rows...)
	for _, o := range others {
		out.rows = append(out.rows, o.rows...)
	}
	return out
}

// Mean returns the arithmetic mean of a numeric column, NaN when empty.
func (f *Frame) Mean(name string) (float64, error) {
	vals, err := f.Floats(name)
	if err != nil {
		return math.NaN(), err
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	return stat.Mean(vals, nil), nil
}

// Dummies one-hot encodes a categorical column. The baseline level is left
// out; an empty baseline drops the first level seen. The returned names are
// "<column>[<level>]".
func (f *Frame) Dummies(name, baseline string) (names []string, cols [][]float64, err error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, nil, err
	}
	levels := f.Unique(name)
	if baseline == "" && len(levels) > 0 {
		baseline = levels[0]
	}
	for _, lvl := range levels {
		if lvl == baseline {
			continue
		}
		col := make([]float64, len(cells))
		for i, c := range cells {
			if c == lvl {
				col[i] = 1
			}
		}
		names = append(names, fmt.Sprintf("%s[%s]", name, lvl))
		cols = append(cols, col)
	}
	return names, cols, nil
}

// ParseCell parses a numeric cell. Missing markers such as "" or "NA" return
// ErrMissingValue; anything else that is not a complete number returns
// ErrNotNumeric.
func ParseCell(c string) (float64, error) {
	if isMissing(c) {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, c)
	}
	return v, nil
}

func isMissing(c string) bool {
	switch strings.TrimSpace(c) {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL":
		return true
	}
	return false
}

// SortLabels orders labels numerically when all parse as numbers and
// lexically otherwise.
func SortLabels(labels []string) []string {
	out := append([]string(nil), labels...)
	nums := make(map[string]float64, len(out))
	numeric := true
	for _, l := range out {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[l] = v
	}
	if numeric {
		sort.SliceStable(out, func(i, j int) bool { return nums[out[i]] < nums[out[j]] })
	} else {
		sort.Strings(out)
	}
	return out
}
