package timeseries

import (
	"errors"
	"math"
	"testing"
)

func seasonalSeries(n, period int) *Series {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		trend := float64(i) * 0.5
		seasonal := 10 * math.Sin(2*math.Pi*float64(i%period)/float64(period))
		noise := float64(i%5-2) / 5
		values[i] = 20 + trend + seasonal + noise
	}
	return New(values)
}

func TestDecompose(t *testing.T) {
	n, period := 120, 12
	series := seasonalSeries(n, period)

	result, err := Decompose(series, period, Additive)
	if err != nil {
		t.Fatal(err)
	}
	if result.Trend.Len() != n || result.Seasonal.Len() != n || result.Residual.Len() != n {
		t.Fatalf("Component length mismatch")
	}
	if !math.IsNaN(result.Trend.Values[0]) {
		t.Errorf("Expected undefined trend at the edge, got %f", result.Trend.Values[0])
	}

	for i := period; i < n-period; i++ {
		reconstructed := result.Trend.Values[i] + result.Seasonal.Values[i] + result.Residual.Values[i]
		if math.Abs(reconstructed-series.Values[i]) > 1e-9 {
			t.Errorf("Reconstruction error at index %d: original=%f, reconstructed=%f",
				i, series.Values[i], reconstructed)
		}
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += result.Seasonal.Values[i]
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("Additive seasonal pattern should sum to zero, got %f", sum)
	}
}

func TestDecomposeMultiplicative(t *testing.T) {
	period := 4
	values := make([]float64, 24)
	factors := []float64{0.8, 1.1, 1.3, 0.8}
	for i := range values {
		values[i] = (100 + float64(i)) * factors[i%period]
	}

	result, err := Decompose(New(values), period, Multiplicative)
	if err != nil {
		t.Fatal(err)
	}
	if result.Method != Multiplicative {
		t.Errorf("Expected multiplicative, got %s", result.Method)
	}
	var mean float64
	for i := 0; i < period; i++ {
		mean += result.Seasonal.Values[i]
	}
	mean /= float64(period)
	if math.Abs(mean-1) > 1e-9 {
		t.Errorf("Multiplicative seasonal factors should average 1, got %f", mean)
	}
	if result.Seasonal.Values[2] <= result.Seasonal.Values[0] {
		t.Errorf("Expected the third season to be the strongest, got %v", result.Seasonal.Values[:period])
	}
}

func TestDecomposeErrors(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		period int
		want   error
	}{
		{"too short", 10, 6, ErrTooShort},
		{"period one", 10, 1, ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(make([]float64, tt.n))
			if _, err := Decompose(s, tt.period, Additive); !errors.Is(err, tt.want) {
				t.Errorf("Decompose: expected %v, got %v", tt.want, err)
			}
			if _, err := STL(s, tt.period, 2); !errors.Is(err, tt.want) {
				t.Errorf("STL: expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSTL(t *testing.T) {
	n, period := 120, 12
	series := seasonalSeries(n, period)

	result, err := STL(series, period, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result.Method != MethodSTL {
		t.Errorf("Expected stl, got %s", result.Method)
	}
	if result.Trend.Len() != n || result.Seasonal.Len() != n || result.Residual.Len() != n {
		t.Fatalf("STL component length mismatch")
	}

	for i := 0; i < n; i++ {
		sum := result.Trend.Values[i] + result.Seasonal.Values[i] + result.Residual.Values[i]
		if math.Abs(sum-series.Values[i]) > 1e-9 {
			t.Errorf("STL components do not add up at %d", i)
		}
	}
	for i := period; i < n; i += period {
		if result.Seasonal.Values[i] != result.Seasonal.Values[i-period] {
			t.Errorf("Seasonal component is not periodic at %d", i)
		}
	}
}
