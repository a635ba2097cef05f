package report

import (
	"math"
	"strconv"
)

// DefaultDecimals is used when Formatter.Decimals is negative.
const DefaultDecimals = 4

// Formatter formats numbers for display.
type Formatter struct {
	Decimals int // digits after the decimal point; negative selects DefaultDecimals
}

// DefaultFormatter returns a Formatter with DefaultDecimals.
func DefaultFormatter() Formatter {
	return Formatter{Decimals: DefaultDecimals}
}

func (f Formatter) decimals() int {
	if f.Decimals < 0 {
		return DefaultDecimals
	}
	return f.Decimals
}

// Number formats v with the configured decimals, "N/A" for NaN or ±Inf.
func (f Formatter) Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', f.decimals(), 64)
}

// Percent formats v with one decimal and a percent sign.
func (f Formatter) Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// PValue formats a p-value, using "<0.001" for very small values.
func (f Formatter) PValue(p float64) string {
	switch {
	case math.IsNaN(p):
		return "N/A"
	case p < 0.001:
		return "<0.001"
	default:
		return strconv.FormatFloat(p, 'f', 3, 64)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
