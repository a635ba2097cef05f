package timeseries

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ACF returns the autocorrelation of values for lags 0 to maxLag. NaN
// values are skipped. It returns nil when fewer than two finite values
// remain or their variance is zero.
func ACF(values []float64, maxLag int) []float64 {
	x := finite(values)
	n := len(x)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 || n < 2 {
		return nil
	}

	mean := stat.Mean(x, nil)
	variance := 0.0
	for _, v := range x {
		variance += (v - mean) * (v - mean)
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (x[i] - mean) * (x[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf
}

// LjungBoxResult is the outcome of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DOF       int     `json:"dof"`
}

// White reports whether no autocorrelation is detected at the 5% level.
func (r *LjungBoxResult) White() bool {
	return r.PValue >= 0.05
}

// LjungBox tests for autocorrelation up to lag h. The null hypothesis is
// that there is none. fitdf is the number of fitted parameters. It
// returns nil for fewer than 10 finite values.
func LjungBox(values []float64, lags, fitdf int) *LjungBoxResult {
	n := len(finite(values))
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(values, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := max(lags-fitdf, 1)
	chi := distuv.ChiSquared{K: float64(dof)}
	return &LjungBoxResult{
		Statistic: q,
		PValue:    1 - chi.CDF(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// Strength measures how much of the variation the trend and seasonal
// components explain, each in [0, 1]. Multiplicative decompositions are
// measured on the log scale.
func (d *Decomposition) Strength() (trend, seasonal float64) {
	t, s, r := d.Trend.Values, d.Seasonal.Values, d.Residual.Values
	if d.Method == Multiplicative {
		t, s, r = logs(t), logs(s), logs(r)
	}

	var tr, sr, res []float64
	for i := range r {
		if math.IsNaN(t[i]) || math.IsNaN(s[i]) || math.IsNaN(r[i]) {
			continue
		}
		tr = append(tr, t[i]+r[i])
		sr = append(sr, s[i]+r[i])
		res = append(res, r[i])
	}
	if len(res) < 2 {
		return math.NaN(), math.NaN()
	}
	vr := stat.Variance(res, nil)
	return strength(vr, stat.Variance(tr, nil)), strength(vr, stat.Variance(sr, nil))
}

// Diagnostics runs a Ljung-Box test on the residuals using twice the
// period as the lag, capped at a fifth of the series.
func (d *Decomposition) Diagnostics() *LjungBoxResult {
	lags := min(2*d.Period, d.Residual.Len()/5)
	return LjungBox(d.Residual.Values, lags, 0)
}

func strength(residual, combined float64) float64 {
	if combined == 0 {
		return 0
	}
	return math.Max(0, 1-residual/combined)
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func logs(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log(v)
	}
	return out
}
