package timeseries

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// KPSSResult is the outcome of a KPSS stationarity test.
type KPSSResult struct {
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"` // interpolated, clamped to [0.01, 0.10]
	Lags       int     `json:"lags"`
	Trend      bool    `json:"trend"`
	Stationary bool    `json:"stationary"`
}

// kpssCritical holds the 10%, 5%, 2.5% and 1% critical values.
var kpssCritical = map[bool][4]float64{
	false: {0.347, 0.463, 0.574, 0.739},
	true:  {0.119, 0.146, 0.176, 0.216},
}

var kpssLevels = [4]float64{0.10, 0.05, 0.025, 0.01}

// KPSS tests the null hypothesis that values are stationary around a level,
// or around a linear trend when trend is set. lags ≤ 0 selects the
// Schwert bandwidth. It returns nil for fewer than 10 finite values.
func KPSS(values []float64, trend bool, lags int) *KPSSResult {
	x := finite(values)
	n := len(x)
	if n < 10 {
		return nil
	}
	if lags <= 0 {
		lags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	lags = min(lags, n-1)

	residuals := make([]float64, n)
	if trend {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i)
		}
		a, b := stat.LinearRegression(t, x, nil, false)
		for i, v := range x {
			residuals[i] = v - a - b*t[i]
		}
	} else {
		mean := stat.Mean(x, nil)
		for i, v := range x {
			residuals[i] = v - mean
		}
	}

	// Newey-West long-run variance with Bartlett weights
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= lags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		s2 += 2 * (1 - float64(l)/float64(lags+1)) * cov / float64(n)
	}
	if s2 <= 0 {
		// constant residuals carry no evidence against stationarity
		return &KPSSResult{PValue: 0.10, Lags: lags, Trend: trend, Stationary: true}
	}

	eta, cum := 0.0, 0.0
	for _, r := range residuals {
		cum += r
		eta += cum * cum
	}
	q := eta / (float64(n) * float64(n) * s2)
	p := kpssPValue(q, kpssCritical[trend])
	return &KPSSResult{
		Statistic:  q,
		PValue:     p,
		Lags:       lags,
		Trend:      trend,
		Stationary: p > 0.05,
	}
}

// kpssPValue interpolates linearly between the tabulated critical values.
func kpssPValue(q float64, crit [4]float64) float64 {
	if q <= crit[0] {
		return kpssLevels[0]
	}
	for i := 1; i < len(crit); i++ {
		if q <= crit[i] {
			frac := (q - crit[i-1]) / (crit[i] - crit[i-1])
			return kpssLevels[i-1] + frac*(kpssLevels[i]-kpssLevels[i-1])
		}
	}
	return kpssLevels[len(kpssLevels)-1]
}
