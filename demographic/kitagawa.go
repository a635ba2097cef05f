package demographic

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sartorproj/godecomp/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrZeroWeight is returned when a period's weights sum to zero.
	ErrZeroWeight = errors.New("period weights sum to zero")
	// ErrNegativeWeight is returned when any weight is negative.
	ErrNegativeWeight = errors.New("negative weight")
)

// Columns names the frame columns holding each input.
type Columns struct {
	Group string
	W1    string // weight, period 1
	Y1    string // value, period 1
	W2    string // weight, period 2
	Y2    string // value, period 2
}

// Options controls the analysis.
type Options struct {
	Normalize             bool    // rescale weights to 100 when they do not sum to it
	PercentTolerance      float64 // allowed |Σw − 100| before rescaling (default: 0.1)
	VerificationTolerance float64 // |Σcontributions − ΔY| above this adds a warning (default: 1e-4)
}

// DefaultOptions returns the default analysis options.
func DefaultOptions() Options {
	return Options{
		Normalize:             true,
		PercentTolerance:      0.1,
		VerificationTolerance: 1e-4,
	}
}

// GroupResult holds the decomposition for one group.
type GroupResult struct {
	Group               string  `json:"group"`
	W1                  float64 `json:"w1"`
	Y1                  float64 `json:"y1"`
	W2                  float64 `json:"w2"`
	Y2                  float64 `json:"y2"`
	Composition         float64 `json:"effect_composition"`
	Behavior            float64 `json:"effect_behavior"`
	Total               float64 `json:"total_contribution"`
	ContributionPercent float64 `json:"contribution_percent"`
	ContributionAbs     float64 `json:"contribution_abs"`
}

// Aggregate holds the population-level decomposition.
type Aggregate struct {
	Y1                 float64 `json:"Y1"`
	Y2                 float64 `json:"Y2"`
	TotalChange        float64 `json:"total_change"`
	Composition        float64 `json:"composition_effect"`
	Behavior           float64 `json:"behavior_effect"`
	CompositionPercent float64 `json:"composition_percent"`
	BehaviorPercent    float64 `json:"behavior_percent"`
	Verification       float64 `json:"verification"`
}

// Metadata describes the inputs of an analysis.
type Metadata struct {
	NumGroups  int     `json:"num_groups"`
	Columns    Columns `json:"variables"`
	Normalized bool    `json:"normalized"`
}

// Result is the output of Analyze.
type Result struct {
	Groups    []GroupResult `json:"group_results"`
	Aggregate Aggregate     `json:"aggregate_results"`
	Metadata  Metadata      `json:"metadata"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// Analyze runs the Kitagawa decomposition over the rows of a frame, one group
// per row.
func Analyze(f *dataset.Frame, cols Columns, opts Options) (*Result, error) {
	if opts.PercentTolerance <= 0 {
		opts.PercentTolerance = 0.1
	}
	if opts.VerificationTolerance <= 0 {
		opts.VerificationTolerance = 1e-4
	}

	if err := dataset.RequireColumns(f, cols.Group, cols.W1, cols.Y1, cols.W2, cols.Y2); err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		return nil, dataset.ErrEmpty
	}

	groups, err := f.Column(cols.Group)
	if err != nil {
		return nil, err
	}
	w1, err := f.Floats(cols.W1)
	if err != nil {
		return nil, err
	}
	y1, err := f.Floats(cols.Y1)
	if err != nil {
		return nil, err
	}
	w2, err := f.Floats(cols.W2)
	if err != nil {
		return nil, err
	}
	y2, err := f.Floats(cols.Y2)
	if err != nil {
		return nil, err
	}

	return Decompose(groups, w1, y1, w2, y2, cols, opts)
}

// Decompose runs the decomposition on raw slices. All slices must have the
// same length. The input slices are not modified.
func Decompose(groups []string, w1, y1, w2, y2 []float64, cols Columns, opts Options) (*Result, error) {
	n := len(groups)
	if len(w1) != n || len(y1) != n || len(w2) != n || len(y2) != n {
		return nil, errors.New("input slices must have the same length")
	}
	if n == 0 {
		return nil, dataset.ErrEmpty
	}

	for _, w := range [][]float64{w1, w2} {
		for i, v := range w {
			if v < 0 {
				return nil, fmt.Errorf("%w: group %q has weight %g", ErrNegativeWeight, groups[i], v)
			}
		}
	}

	w1 = normalizeWeights(w1, opts)
	w2 = normalizeWeights(w2, opts)
	if floats.Sum(w1) == 0 {
		return nil, fmt.Errorf("period 1: %w", ErrZeroWeight)
	}
	if floats.Sum(w2) == 0 {
		return nil, fmt.Errorf("period 2: %w", ErrZeroWeight)
	}

	Y1 := stat.Mean(y1, w1)
	Y2 := stat.Mean(y2, w2)
	deltaY := Y2 - Y1

	res := &Result{
		Groups: make([]GroupResult, n),
		Metadata: Metadata{
			NumGroups:  n,
			Columns:    cols,
			Normalized: opts.Normalize,
		},
	}

	var totalComp, totalBeh, totalContrib float64
	for i := 0; i < n; i++ {
		comp, beh := Kitagawa(w1[i], y1[i], w2[i], y2[i])
		comp /= 100
		beh /= 100
		total := comp + beh

		res.Groups[i] = GroupResult{
			Group:               groups[i],
			W1:                  w1[i],
			Y1:                  y1[i],
			W2:                  w2[i],
			Y2:                  y2[i],
			Composition:         comp,
			Behavior:            beh,
			Total:               total,
			ContributionPercent: percentOf(total, deltaY),
			ContributionAbs:     math.Abs(total),
		}
		totalComp += comp
		totalBeh += beh
		totalContrib += total
	}

	verification := math.Abs(totalContrib - deltaY)
	if verification > opts.VerificationTolerance {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"contributions do not add up: delta_Y=%g, sum of contributions=%g", deltaY, totalContrib))
	}

	res.Aggregate = Aggregate{
		Y1:                 Y1,
		Y2:                 Y2,
		TotalChange:        deltaY,
		Composition:        totalComp,
		Behavior:           totalBeh,
		CompositionPercent: percentOf(totalComp, deltaY),
		BehaviorPercent:    percentOf(totalBeh, deltaY),
		Verification:       verification,
	}

	return res, nil
}

// Kitagawa returns the composition and behavior effects for one group using
// midpoint weights. Weights are taken as given.
func Kitagawa(w1, y1, w2, y2 float64) (composition, behavior float64) {
	composition = ((y1 + y2) / 2) * (w2 - w1)
	behavior = ((w1 + w2) / 2) * (y2 - y1)
	return composition, behavior
}

// SortedByContribution returns the group results ordered by descending
// absolute contribution.
func (r *Result) SortedByContribution() []GroupResult {
	out := make([]GroupResult, len(r.Groups))
	copy(out, r.Groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ContributionAbs > out[j].ContributionAbs
	})
	return out
}

// normalizeWeights rescales a period's weights to sum to 100 when enabled and
// the sum is off by more than the tolerance.
func normalizeWeights(w []float64, opts Options) []float64 {
	out := make([]float64, len(w))
	copy(out, w)
	if !opts.Normalize {
		return out
	}
	total := floats.Sum(out)
	if total == 0 || math.Abs(total-100) <= opts.PercentTolerance {
		return out
	}
	floats.Scale(100/total, out)
	return out
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
