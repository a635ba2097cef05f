package timeseries

import (
	"errors"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrLengthMismatch is returned when labels and values differ in length.
var ErrLengthMismatch = errors.New("labels and values must have the same length")

// Series is an indicator observed at successive time labels (years, quarters).
type Series struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// New creates a series labelled 1..n.
func New(values []float64) *Series {
	labels := make([]string, len(values))
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return &Series{Labels: labels, Values: values}
}

// NewLabeled creates a named series with explicit time labels.
func NewLabeled(name string, labels []string, values []float64) (*Series, error) {
	if len(labels) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Series{Name: name, Labels: labels, Values: values}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean, 0 for an empty series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the sample variance, 0 below two values.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std returns the sample standard deviation.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest value, NaN when empty.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the largest value, NaN when empty.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Median returns the median value, NaN when empty.
func (s *Series) Median() float64 {
	return median(s.Values)
}

// Change returns last − first.
func (s *Series) Change() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1] - s.Values[0]
}

// GrowthRate returns the relative change from first to last in percent, NaN
// when the first value is zero.
func (s *Series) GrowthRate() float64 {
	if len(s.Values) == 0 || s.Values[0] == 0 {
		return math.NaN()
	}
	return (s.Values[len(s.Values)-1]/s.Values[0] - 1) * 100
}

// Diff returns the period-to-period changes, labelled by the later period.
func (s *Series) Diff() *Series {
	if len(s.Values) < 2 {
		return &Series{Name: s.Name + "_diff"}
	}
	values := make([]float64, len(s.Values)-1)
	for i := 1; i < len(s.Values); i++ {
		values[i-1] = s.Values[i] - s.Values[i-1]
	}
	return &Series{
		Name:   s.Name + "_diff",
		Labels: append([]string(nil), s.Labels[1:]...),
		Values: values,
	}
}

// MovingAverage returns a trailing moving average with the given window,
// labelled by the last period of each window.
func (s *Series) MovingAverage(window int) *Series {
	if window <= 0 || window > len(s.Values) {
		return &Series{Name: s.Name + "_ma"}
	}

	result := make([]float64, len(s.Values)-window+1)
	sum := floats.Sum(s.Values[:window])
	result[0] = sum / float64(window)
	for i := window; i < len(s.Values); i++ {
		sum = sum - s.Values[i-window] + s.Values[i]
		result[i-window+1] = sum / float64(window)
	}

	return &Series{
		Name:   s.Name + "_ma",
		Labels: append([]string(nil), s.Labels[window-1:]...),
		Values: result,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	return &Series{
		Name:   s.Name,
		Labels: append([]string(nil), s.Labels...),
		Values: append([]float64(nil), s.Values...),
	}
}

// component returns a series sharing the labels of s.
func (s *Series) component(name string, values []float64) *Series {
	return &Series{Name: name, Labels: s.Labels, Values: values}
}

func median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
