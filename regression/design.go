package regression

import (
	"fmt"

	"github.com/sartorproj/godecomp/dataset"
	"gonum.org/v1/gonum/stat"
)

// design holds the encoded outcome and predictors of a whole frame.
type design struct {
	y       []float64
	names   []string
	columns [][]float64
}

// encode builds the design over the full frame so that dummy encodings are
// shared by every subset.
func encode(f *dataset.Frame, outcome string, predictors []string) (*design, error) {
	if err := dataset.RequireColumns(f, append([]string{outcome}, predictors...)...); err != nil {
		return nil, err
	}
	y, err := f.Floats(outcome)
	if err != nil {
		return nil, err
	}
	d := &design{y: y}
	for _, p := range predictors {
		if f.IsNumeric(p) {
			col, err := f.Floats(p)
			if err != nil {
				return nil, err
			}
			d.names = append(d.names, p)
			d.columns = append(d.columns, col)
			continue
		}
		names, cols, err := f.Dummies(p, "")
		if err != nil {
			return nil, err
		}
		d.names = append(d.names, names...)
		d.columns = append(d.columns, cols...)
	}
	return d, nil
}

// subset returns the rows at idx.
func (d *design) subset(idx []int) *design {
	out := &design{
		y:       make([]float64, len(idx)),
		names:   d.names,
		columns: make([][]float64, len(d.columns)),
	}
	for i, r := range idx {
		out.y[i] = d.y[r]
	}
	for j, c := range d.columns {
		col := make([]float64, len(idx))
		for i, r := range idx {
			col[i] = c[r]
		}
		out.columns[j] = col
	}
	return out
}

// withColumn returns a copy of d with an extra predictor appended.
func (d *design) withColumn(name string, col []float64) *design {
	return &design{
		y:       d.y,
		names:   append(append([]string(nil), d.names...), name),
		columns: append(append([][]float64(nil), d.columns...), col),
	}
}

func (d *design) fit() (*Model, error) {
	return OLS(d.y, d.columns, d.names)
}

func (d *design) means() []float64 {
	out := make([]float64, len(d.columns))
	for j, c := range d.columns {
		out[j] = stat.Mean(c, nil)
	}
	return out
}

// rowsWhere returns the indices of rows whose column equals value.
func rowsWhere(f *dataset.Frame, column, value string) ([]int, error) {
	cells, err := f.Column(column)
	if err != nil {
		return nil, err
	}
	var idx []int
	for i, c := range cells {
		if c == value {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// pickTwo resolves the two categories to compare. Empty labels are filled in
// when the column has exactly two distinct values.
func pickTwo(f *dataset.Frame, column, first, second string) (string, string, error) {
	if first != "" && second != "" {
		return first, second, nil
	}
	levels := f.Unique(column)
	if len(levels) != 2 {
		return "", "", fmt.Errorf("%w: %q has %d categories", ErrGroupCount, column, len(levels))
	}
	switch {
	case first == "" && second == "":
		return levels[0], levels[1], nil
	case first == "":
		if levels[0] == second {
			return levels[1], second, nil
		}
		return levels[0], second, nil
	default:
		if levels[0] == first {
			return first, levels[1], nil
		}
		return first, levels[0], nil
	}
}
