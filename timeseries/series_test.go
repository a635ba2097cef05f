package timeseries

import (
	"errors"
	"math"
	"testing"

	"github.com/sartorproj/godecomp/dataset"
)

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	if s.Len() != 5 {
		t.Errorf("Expected length 5, got %d", s.Len())
	}
	if s.Labels[0] != "1" || s.Labels[4] != "5" {
		t.Errorf("Unexpected labels %v", s.Labels)
	}
}

func TestNewLabeled(t *testing.T) {
	if _, err := NewLabeled("x", []string{"2000"}, []float64{1, 2}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
	s, err := NewLabeled("x", []string{"2000", "2010"}, []float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "x" {
		t.Errorf("Expected name x, got %q", s.Name)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.values).Mean()
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("Expected mean %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestVarianceStd(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := 4.571428571428571

	if math.Abs(s.Variance()-expected) > 1e-10 {
		t.Errorf("Expected variance %f, got %f", expected, s.Variance())
	}
	if math.Abs(s.Std()-math.Sqrt(expected)) > 1e-10 {
		t.Errorf("Expected std %f, got %f", math.Sqrt(expected), s.Std())
	}
	if New([]float64{3}).Variance() != 0 {
		t.Error("Expected zero variance for a single value")
	}
}

func TestMinMaxMedian(t *testing.T) {
	s := New([]float64{5, 2, 8, 1, 9, 3})

	if s.Min() != 1 {
		t.Errorf("Expected min 1, got %f", s.Min())
	}
	if s.Max() != 9 {
		t.Errorf("Expected max 9, got %f", s.Max())
	}
	if s.Median() != 4 {
		t.Errorf("Expected median 4, got %f", s.Median())
	}
	empty := New(nil)
	if !math.IsNaN(empty.Min()) || !math.IsNaN(empty.Median()) {
		t.Error("Expected NaN statistics for an empty series")
	}
}

func TestChangeAndGrowth(t *testing.T) {
	s := New([]float64{50, 55, 60})
	if s.Change() != 10 {
		t.Errorf("Expected change 10, got %f", s.Change())
	}
	if math.Abs(s.GrowthRate()-20) > 1e-10 {
		t.Errorf("Expected growth 20%%, got %f", s.GrowthRate())
	}
	if !math.IsNaN(New([]float64{0, 1}).GrowthRate()) {
		t.Error("Expected NaN growth from zero")
	}
}

func TestDiff(t *testing.T) {
	s, _ := NewLabeled("y", []string{"a", "b", "c", "d", "e"}, []float64{1, 3, 6, 10, 15})
	diff := s.Diff()

	expected := []float64{2, 3, 4, 5}
	if len(diff.Values) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(diff.Values))
	}
	for i, v := range diff.Values {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}
	if diff.Labels[0] != "b" {
		t.Errorf("Expected first label b, got %s", diff.Labels[0])
	}
}

func TestMovingAverage(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5, 6, 7})
	ma := s.MovingAverage(3)

	expected := []float64{2, 3, 4, 5, 6}
	if len(ma.Values) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(ma.Values))
	}
	for i, v := range ma.Values {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}
	if ma.Labels[0] != "3" {
		t.Errorf("Expected first label 3, got %s", ma.Labels[0])
	}
	if New([]float64{1}).MovingAverage(3).Len() != 0 {
		t.Error("Expected empty moving average for a short series")
	}
}

func TestCopy(t *testing.T) {
	s := New([]float64{1, 2, 3})
	copied := s.Copy()

	s.Values[0] = 100
	s.Labels[0] = "x"

	if copied.Values[0] != 1 || copied.Labels[0] != "1" {
		t.Errorf("Copy was modified when original changed")
	}
}

func TestFromFrame(t *testing.T) {
	f := dataset.MustFromRecords(
		[]string{"year", "party", "opinion"},
		[][]string{
			{"2010", "left", "40"},
			{"1972", "left", "30"},
			{"2010", "right", "60"},
			{"1972", "right", "50"},
			{"1990", "left", "35"},
		},
	)

	s, err := FromFrame(f, "year", "opinion")
	if err != nil {
		t.Fatal(err)
	}
	wantLabels := []string{"1972", "1990", "2010"}
	wantValues := []float64{40, 35, 50}
	for i := range wantLabels {
		if s.Labels[i] != wantLabels[i] || s.Values[i] != wantValues[i] {
			t.Errorf("At %d expected %s=%f, got %s=%f", i, wantLabels[i], wantValues[i], s.Labels[i], s.Values[i])
		}
	}

	groups, err := GroupedFromFrame(f, "year", "opinion", "party")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(groups))
	}
	if groups[0].Name != "left" || groups[0].Len() != 3 || groups[1].Len() != 2 {
		t.Errorf("Unexpected grouped series: %+v %+v", groups[0], groups[1])
	}

	if _, err := FromFrame(f, "year", "missing"); !errors.Is(err, dataset.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}
