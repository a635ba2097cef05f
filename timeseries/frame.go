package timeseries

import (
	"github.com/sartorproj/godecomp/dataset"
)

// FromFrame builds a series from a frame holding one or more records per
// time label. Values sharing a label are averaged; labels are sorted
// numerically when possible.
func FromFrame(f *dataset.Frame, timeCol, valueCol string) (*Series, error) {
	if err := dataset.RequireColumns(f, timeCol, valueCol); err != nil {
		return nil, err
	}
	times, err := f.Column(timeCol)
	if err != nil {
		return nil, err
	}
	values, err := f.Floats(valueCol)
	if err != nil {
		return nil, err
	}
	return aggregate(valueCol, times, values), nil
}

// GroupedFromFrame builds one series per category of groupCol, in order of
// first appearance.
func GroupedFromFrame(f *dataset.Frame, timeCol, valueCol, groupCol string) ([]*Series, error) {
	if err := dataset.RequireColumns(f, timeCol, valueCol, groupCol); err != nil {
		return nil, err
	}
	var out []*Series
	for _, g := range f.Unique(groupCol) {
		sub := f.Filter(groupCol, g)
		times, err := sub.Column(timeCol)
		if err != nil {
			return nil, err
		}
		values, err := sub.Floats(valueCol)
		if err != nil {
			return nil, err
		}
		out = append(out, aggregate(g, times, values))
	}
	return out, nil
}

func aggregate(name string, times []string, values []float64) *Series {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var labels []string
	for i, t := range times {
		if counts[t] == 0 {
			labels = append(labels, t)
		}
		sums[t] += values[i]
		counts[t]++
	}
	labels = dataset.SortLabels(labels)
	s := &Series{Name: name, Labels: labels, Values: make([]float64, len(labels))}
	for i, l := range labels {
		s.Values[i] = sums[l] / float64(counts[l])
	}
	return s
}
