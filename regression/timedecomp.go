package regression

import (
	"fmt"

	"github.com/sartorproj/godecomp/dataset"
)

// TimeSpec describes a decomposition of change between two periods.
type TimeSpec struct {
	Outcome    string
	Predictors []string
	TimeVar    string
	Time1      string // detected when empty
	Time2      string
}

// TimeContributions are the three effects as percentages of the total change.
type TimeContributions struct {
	Intercept    float64 `json:"intercept"`
	Coefficients float64 `json:"coefficients"`
	Endowments   float64 `json:"endowments"`
}

// TimeResult is the output of TimeDecomposition.
type TimeResult struct {
	Outcome           string            `json:"outcome"`
	Period1           GroupSummary      `json:"period1"`
	Period2           GroupSummary      `json:"period2"`
	TotalChange       float64           `json:"total_change"`
	InterceptEffect   float64           `json:"intercept_effect"`
	CoefficientEffect float64           `json:"coefficient_effect"`
	EndowmentEffect   float64           `json:"endowment_effect"`
	Contributions     TimeContributions `json:"contributions"`
	Detailed          []Contribution    `json:"detailed_contributions"`
	Interpretation    map[string]string `json:"interpretation"`
	Warnings          []string          `json:"warnings,omitempty"`
}

// TimeDecomposition splits the change in the mean outcome between two periods
// into intercept, coefficient and endowment effects. In the detailed
// contributions, Explained holds the endowment part and Unexplained the
// coefficient part.
func TimeDecomposition(f *dataset.Frame, spec TimeSpec) (*TimeResult, error) {
	if err := dataset.RequireColumns(f, spec.TimeVar); err != nil {
		return nil, err
	}
	t1, t2, err := pickTwo(f, spec.TimeVar, spec.Time1, spec.Time2)
	if err != nil {
		return nil, err
	}
	full, err := encode(f, spec.Outcome, spec.Predictors)
	if err != nil {
		return nil, err
	}
	idx1, _ := rowsWhere(f, spec.TimeVar, t1)
	idx2, _ := rowsWhere(f, spec.TimeVar, t2)
	if len(idx1) == 0 {
		return nil, fmt.Errorf("%w: period %q", ErrEmptyGroup, t1)
	}
	if len(idx2) == 0 {
		return nil, fmt.Errorf("%w: period %q", ErrEmptyGroup, t2)
	}

	d1, d2 := full.subset(idx1), full.subset(idx2)
	s1, err := summarize(t1, d1)
	if err != nil {
		return nil, fmt.Errorf("period %q: %w", t1, err)
	}
	s2, err := summarize(t2, d2)
	if err != nil {
		return nil, fmt.Errorf("period %q: %w", t2, err)
	}

	b1, b2 := s1.Model.Coef, s2.Model.Coef
	x1, x2 := d1.means(), d2.means()

	res := &TimeResult{
		Outcome:         spec.Outcome,
		Period1:         *s1,
		Period2:         *s2,
		TotalChange:     s2.MeanY - s1.MeanY,
		InterceptEffect: b2[0] - b1[0],
		Interpretation: map[string]string{
			"intercept":    "Change in the baseline value (constant)",
			"coefficients": "Change in returns (slopes)",
			"endowments":   "Change in characteristics",
		},
	}
	for j, name := range full.names {
		xBar := (x1[j] + x2[j]) / 2
		bBar := (b1[j+1] + b2[j+1]) / 2
		coef := xBar * (b2[j+1] - b1[j+1])
		endow := bBar * (x2[j] - x1[j])
		res.CoefficientEffect += coef
		res.EndowmentEffect += endow
		res.Detailed = append(res.Detailed, Contribution{Variable: name, Explained: endow, Unexplained: coef})
	}
	res.Contributions = TimeContributions{
		Intercept:    percentOf(res.InterceptEffect, res.TotalChange),
		Coefficients: percentOf(res.CoefficientEffect, res.TotalChange),
		Endowments:   percentOf(res.EndowmentEffect, res.TotalChange),
	}
	res.Warnings = fallbackWarnings(s1, s2)
	return res, nil
}
