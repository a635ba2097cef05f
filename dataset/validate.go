package dataset

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// RequireColumns checks that every named column exists.
func RequireColumns(f *Frame, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// CheckPercentages reports whether values sum to 100 within tolerance.
func CheckPercentages(values []float64, tolerance float64) bool {
	return math.Abs(floats.Sum(values)-100) < tolerance
}

// CheckPositive reports whether all values are strictly positive, or
// non-negative when allowZero is set.
func CheckPositive(values []float64, allowZero bool) bool {
	for _, v := range values {
		if v < 0 || (!allowZero && v == 0) {
			return false
		}
	}
	return true
}
