package regression

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/godecomp/dataset"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrGroupCount is returned when the groups to compare cannot be resolved to two categories.
	ErrGroupCount = errors.New("group variable must have exactly 2 categories")
	// ErrUnknownMethod is returned for an unrecognised Oaxaca-Blinder method.
	ErrUnknownMethod = errors.New("unknown decomposition method")
	// ErrEmptyGroup is returned when a compared group has no rows.
	ErrEmptyGroup = errors.New("group has no observations")
)

// Method selects the reference coefficients of an Oaxaca-Blinder decomposition.
type Method string

const (
	MethodOaxaca  Method = "oaxaca"
	MethodReverse Method = "oaxaca_reverse"
	MethodCotton  Method = "cotton"
	MethodNeumark Method = "neumark"
)

// Methods lists the supported methods.
func Methods() []Method {
	return []Method{MethodOaxaca, MethodReverse, MethodCotton, MethodNeumark}
}

// Spec describes an Oaxaca-Blinder decomposition.
type Spec struct {
	Outcome    string
	Predictors []string
	GroupVar   string
	Group1     string // reference group; detected when empty
	Group2     string
	Method     Method // default: MethodOaxaca
}

// GroupSummary describes one side of a comparison.
type GroupSummary struct {
	Label string             `json:"label"`
	N     int                `json:"n"`
	MeanY float64            `json:"mean_y"`
	MeanX map[string]float64 `json:"mean_x"`
	// Predicted is the model evaluated at the group means.
	Predicted float64 `json:"predicted_mean"`
	Model     *Model  `json:"regression"`
}

// Decomposition holds the two-fold split of a gap.
type Decomposition struct {
	Total              float64 `json:"total_difference"`
	Explained          float64 `json:"explained_difference"`
	Unexplained        float64 `json:"unexplained_difference"`
	ExplainedPercent   float64 `json:"explained_percent"`
	UnexplainedPercent float64 `json:"unexplained_percent"`
}

// Contribution is the share of one predictor in each part. The intercept
// only contributes to the unexplained part.
type Contribution struct {
	Variable    string  `json:"variable"`
	Explained   float64 `json:"explained"`
	Unexplained float64 `json:"unexplained"`
}

// OaxacaResult is the output of OaxacaBlinder.
type OaxacaResult struct {
	Method         Method            `json:"method"`
	Outcome        string            `json:"outcome"`
	Group1         GroupSummary      `json:"group1"`
	Group2         GroupSummary      `json:"group2"`
	Reference      []float64         `json:"reference_coefficients"`
	Decomposition  Decomposition     `json:"decomposition"`
	Detailed       []Contribution    `json:"detailed_contributions"`
	Interpretation map[string]string `json:"interpretation"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// OaxacaBlinder decomposes the mean outcome gap Group2 − Group1.
func OaxacaBlinder(f *dataset.Frame, spec Spec) (*OaxacaResult, error) {
	if spec.Method == "" {
		spec.Method = MethodOaxaca
	}
	switch spec.Method {
	case MethodOaxaca, MethodReverse, MethodCotton, MethodNeumark:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, spec.Method)
	}
	if err := dataset.RequireColumns(f, spec.GroupVar); err != nil {
		return nil, err
	}
	g1, g2, err := pickTwo(f, spec.GroupVar, spec.Group1, spec.Group2)
	if err != nil {
		return nil, err
	}

	full, err := encode(f, spec.Outcome, spec.Predictors)
	if err != nil {
		return nil, err
	}
	idx1, err := rowsWhere(f, spec.GroupVar, g1)
	if err != nil {
		return nil, err
	}
	idx2, _ := rowsWhere(f, spec.GroupVar, g2)
	if len(idx1) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyGroup, g1)
	}
	if len(idx2) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyGroup, g2)
	}

	d1, d2 := full.subset(idx1), full.subset(idx2)
	s1, err := summarize(g1, d1)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", g1, err)
	}
	s2, err := summarize(g2, d2)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", g2, err)
	}

	b1, b2 := s1.Model.Coef, s2.Model.Coef
	var ref []float64
	switch spec.Method {
	case MethodOaxaca:
		ref = append([]float64(nil), b1...)
	case MethodReverse:
		ref = append([]float64(nil), b2...)
	case MethodCotton:
		n1, n2 := float64(s1.N), float64(s2.N)
		ref = make([]float64, len(b1))
		for j := range ref {
			ref[j] = (n1*b1[j] + n2*b2[j]) / (n1 + n2)
		}
	case MethodNeumark:
		// The pooled model controls for group membership; the indicator's
		// coefficient is left out of β*.
		both := full.subset(append(append([]int(nil), idx1...), idx2...))
		indicator := make([]float64, len(both.y))
		for i := range idx1 {
			indicator[i] = 1
		}
		pooled, err := both.withColumn(fmt.Sprintf("%s[%s]", spec.GroupVar, g1), indicator).fit()
		if err != nil {
			return nil, fmt.Errorf("pooled regression: %w", err)
		}
		ref = pooled.Coef[:len(b1)]
	}

	x1, x2 := d1.means(), d2.means()
	res := &OaxacaResult{
		Method:    spec.Method,
		Outcome:   spec.Outcome,
		Group1:    *s1,
		Group2:    *s2,
		Reference: ref,
		Interpretation: map[string]string{
			"explained":   "Difference due to observable characteristics (human capital, experience, ...)",
			"unexplained": "Unexplained difference (discrimination, unobserved effects)",
		},
	}

	// Intercept: X̄ = 1 in both groups.
	interceptU := (b2[0] - ref[0]) + (ref[0] - b1[0])
	res.Detailed = append(res.Detailed, Contribution{Variable: InterceptName, Unexplained: interceptU})
	explained, unexplained := 0.0, interceptU
	for j, name := range full.names {
		e := (x2[j] - x1[j]) * ref[j+1]
		u := x2[j]*(b2[j+1]-ref[j+1]) + x1[j]*(ref[j+1]-b1[j+1])
		res.Detailed = append(res.Detailed, Contribution{Variable: name, Explained: e, Unexplained: u})
		explained += e
		unexplained += u
	}

	total := s2.MeanY - s1.MeanY
	res.Decomposition = Decomposition{
		Total:              total,
		Explained:          explained,
		Unexplained:        unexplained,
		ExplainedPercent:   percentOf(explained, total),
		UnexplainedPercent: percentOf(unexplained, total),
	}
	res.Warnings = append(res.Warnings, fallbackWarnings(s1, s2)...)
	if gap := math.Abs(explained + unexplained - total); gap > 1e-6*math.Max(1, math.Abs(total)) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("explained + unexplained differs from the total gap by %g", gap))
	}
	return res, nil
}

func summarize(label string, d *design) (*GroupSummary, error) {
	model, err := d.fit()
	if err != nil {
		return nil, err
	}
	means := d.means()
	mx := make(map[string]float64, len(means))
	for j, name := range d.names {
		mx[name] = means[j]
	}
	return &GroupSummary{
		Label: label,
		N:     len(d.y),
		MeanY: stat.Mean(d.y, nil),
		MeanX: mx,
		Model: model,

		Predicted: model.predict(means),
	}, nil
}

func fallbackWarnings(groups ...*GroupSummary) []string {
	var out []string
	for _, g := range groups {
		if g.Model.Fallback {
			out = append(out, fmt.Sprintf("regression for %q is singular; marginal slopes used", g.Label))
		}
	}
	return out
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
