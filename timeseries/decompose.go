package timeseries

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTooShort is returned when a series covers fewer than two full periods.
	ErrTooShort = errors.New("series shorter than two full periods")
	// ErrInvalidPeriod is returned for a seasonal period below 2.
	ErrInvalidPeriod = errors.New("period must be at least 2")
)

// Method identifies how a series was decomposed.
type Method string

const (
	Additive       Method = "additive"       // Y = T + S + R
	Multiplicative Method = "multiplicative" // Y = T · S · R
	MethodSTL      Method = "stl"
)

// Decomposition splits a series into trend, seasonal and residual parts.
// Classical decompositions leave the trend NaN where the centered moving
// average is undefined.
type Decomposition struct {
	Original *Series `json:"original"`
	Trend    *Series `json:"trend"`
	Seasonal *Series `json:"seasonal"`
	Residual *Series `json:"residual"`
	Period   int     `json:"period"`
	Method   Method  `json:"method"`
}

func checkPeriod(s *Series, period int) error {
	if period < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	if s.Len() < 2*period {
		return fmt.Errorf("%w: %d values, period %d", ErrTooShort, s.Len(), period)
	}
	return nil
}

// Decompose performs classical seasonal decomposition using a centered moving
// average for the trend. Unknown methods fall back to Additive.
func Decompose(s *Series, period int, method Method) (*Decomposition, error) {
	if err := checkPeriod(s, period); err != nil {
		return nil, err
	}
	if method != Multiplicative {
		method = Additive
	}
	n := s.Len()
	mult := method == Multiplicative

	trend := centeredMA(s.Values, period)

	detrended := make([]float64, n)
	for i := range detrended {
		switch {
		case math.IsNaN(trend[i]), mult && trend[i] == 0:
			detrended[i] = math.NaN()
		case mult:
			detrended[i] = s.Values[i] / trend[i]
		default:
			detrended[i] = s.Values[i] - trend[i]
		}
	}

	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		if !math.IsNaN(v) {
			pattern[i%period] += v
			counts[i%period]++
		}
	}
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}
	center := floats.Sum(pattern) / float64(period)
	if mult {
		floats.Scale(1/center, pattern)
	} else {
		floats.AddConst(-center, pattern)
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := range seasonal {
		seasonal[i] = pattern[i%period]
		switch {
		case math.IsNaN(trend[i]), mult && (trend[i] == 0 || seasonal[i] == 0):
			residual[i] = math.NaN()
		case mult:
			residual[i] = s.Values[i] / (trend[i] * seasonal[i])
		default:
			residual[i] = s.Values[i] - trend[i] - seasonal[i]
		}
	}

	return &Decomposition{
		Original: s,
		Trend:    s.component("trend", trend),
		Seasonal: s.component("seasonal", seasonal),
		Residual: s.component("residual", residual),
		Period:   period,
		Method:   method,
	}, nil
}

// centeredMA is a 2×period moving average for even periods and a simple
// centered one for odd periods.
func centeredMA(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}
	half := period / 2
	for i := half; i < n-half; i++ {
		var sum float64
		if period%2 == 0 {
			sum = 0.5*values[i-half] + 0.5*values[i+half] + floats.Sum(values[i-half+1:i+half])
		} else {
			sum = floats.Sum(values[i-half : i+half+1])
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

// STL performs a simplified Seasonal-Trend decomposition with Loess-style
// tricube smoothing and robustIters bisquare reweighting passes (default 2).
func STL(s *Series, period int, robustIters int) (*Decomposition, error) {
	if err := checkPeriod(s, period); err != nil {
		return nil, err
	}
	if robustIters < 1 {
		robustIters = 2
	}
	n := s.Len()
	trend := make([]float64, n)
	seasonal := make([]float64, n)
	residual := make([]float64, n)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}

	window := period
	if window%2 == 0 {
		window++
	}
	half := window / 2

	for iter := 0; iter < robustIters; iter++ {
		pattern := make([]float64, period)
		mass := make([]float64, period)
		for i := 0; i < n; i++ {
			pattern[i%period] += (s.Values[i] - trend[i]) * weights[i]
			mass[i%period] += weights[i]
		}
		for i := range pattern {
			if mass[i] > 0 {
				pattern[i] /= mass[i]
			}
		}
		floats.AddConst(-floats.Sum(pattern)/float64(period), pattern)
		for i := range seasonal {
			seasonal[i] = pattern[i%period]
		}

		for i := 0; i < n; i++ {
			var sum, wsum float64
			for j := -half; j <= half; j++ {
				k := i + j
				if k < 0 || k >= n {
					continue
				}
				w := weights[k] * (1 - math.Abs(float64(j))/float64(half+1))
				sum += (s.Values[k] - seasonal[k]) * w
				wsum += w
			}
			if wsum > 0 {
				trend[i] = sum / wsum
			}
		}

		for i := range residual {
			residual[i] = s.Values[i] - trend[i] - seasonal[i]
		}

		if iter < robustIters-1 {
			abs := make([]float64, n)
			for i, r := range residual {
				abs[i] = math.Abs(r)
			}
			if h := 6 * median(abs); h > 0 {
				for i, r := range residual {
					u := math.Abs(r) / h
					if u < 1 {
						weights[i] = (1 - u*u) * (1 - u*u)
					} else {
						weights[i] = 0
					}
				}
			}
		}
	}

	return &Decomposition{
		Original: s,
		Trend:    s.component("trend", trend),
		Seasonal: s.component("seasonal", seasonal),
		Residual: s.component("residual", residual),
		Period:   period,
		Method:   MethodSTL,
	}, nil
}
