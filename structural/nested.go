package structural

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/sartorproj/godecomp/dataset"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrTooFewPeriods is returned when the period column has fewer than two values.
	ErrTooFewPeriods = errors.New("at least two periods are required")
	// ErrNoSecondary is returned when no secondary grouping variable is given.
	ErrNoSecondary = errors.New("no secondary grouping variable")
)

// DefaultPeriodVar is the period column used when none is given.
const DefaultPeriodVar = "period"

// NestedSpec describes a nested decomposition.
type NestedSpec struct {
	Outcome   string
	Primary   string
	Secondary []string
	PeriodVar string    // default: DefaultPeriodVar
	Periods   [2]string // default: first and last period in sorted order
}

// Share is a pair of composition and behavior percentages.
type Share struct {
	Composition float64 `json:"composition"`
	Behavior    float64 `json:"behavior"`
}

// Contributions summarizes the percentages of every level.
type Contributions struct {
	Primary   Share                       `json:"primary"`
	Secondary map[string]map[string]Share `json:"secondary"`
}

// NestedResult is the output of Nested. Secondary levels are keyed by primary
// category, listed in Categories order.
type NestedResult struct {
	Outcome       string             `json:"outcome"`
	Primary       string             `json:"primary_group"`
	Secondary     []string           `json:"secondary_groups"`
	Periods       [2]string          `json:"periods"`
	PrimaryLevel  Level              `json:"primary"`
	Categories    []string           `json:"categories"`
	SecondaryBy   map[string][]Level `json:"secondary"`
	Contributions Contributions      `json:"hierarchical_contributions"`
}

// Nested decomposes the change of Outcome between two periods across the
// primary grouping and, within each primary category, across every secondary
// grouping. Categories are processed concurrently.
func Nested(ctx context.Context, f *dataset.Frame, spec NestedSpec) (*NestedResult, error) {
	if spec.PeriodVar == "" {
		spec.PeriodVar = DefaultPeriodVar
	}
	if len(spec.Secondary) == 0 {
		return nil, ErrNoSecondary
	}
	cols := append([]string{spec.Outcome, spec.Primary, spec.PeriodVar}, spec.Secondary...)
	if err := dataset.RequireColumns(f, cols...); err != nil {
		return nil, err
	}
	if spec.Periods[0] == "" || spec.Periods[1] == "" {
		periods := dataset.SortLabels(f.Unique(spec.PeriodVar))
		if len(periods) < 2 {
			return nil, fmt.Errorf("%w: %q has %d", ErrTooFewPeriods, spec.PeriodVar, len(periods))
		}
		spec.Periods = [2]string{periods[0], periods[len(periods)-1]}
	}

	f1 := f.Filter(spec.PeriodVar, spec.Periods[0])
	f2 := f.Filter(spec.PeriodVar, spec.Periods[1])
	if f1.Len() == 0 || f2.Len() == 0 {
		return nil, fmt.Errorf("%w: no records for %v", ErrTooFewPeriods, spec.Periods)
	}

	primary1, err := sampleOf(f1, spec.Outcome, spec.Primary)
	if err != nil {
		return nil, err
	}
	primary2, err := sampleOf(f2, spec.Outcome, spec.Primary)
	if err != nil {
		return nil, err
	}
	sec1 := make(map[string]sample, len(spec.Secondary))
	sec2 := make(map[string]sample, len(spec.Secondary))
	for _, s := range spec.Secondary {
		if sec1[s], err = sampleOf(f1, spec.Outcome, s); err != nil {
			return nil, err
		}
		if sec2[s], err = sampleOf(f2, spec.Outcome, s); err != nil {
			return nil, err
		}
	}

	res := &NestedResult{
		Outcome:      spec.Outcome,
		Primary:      spec.Primary,
		Secondary:    spec.Secondary,
		Periods:      spec.Periods,
		PrimaryLevel: decomposeLevel(spec.Primary, primary1, primary2),
		Categories:   f.Unique(spec.Primary),
	}

	levels := make([][]Level, len(res.Categories))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, category := range res.Categories {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in1 := mask(primary1.groups, category)
			in2 := mask(primary2.groups, category)
			out := make([]Level, 0, len(spec.Secondary))
			for _, s := range spec.Secondary {
				out = append(out, decomposeLevel(s, pick(sec1[s], in1), pick(sec2[s], in2)))
			}
			levels[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.SecondaryBy = make(map[string][]Level, len(res.Categories))
	res.Contributions = Contributions{
		Primary: Share{
			Composition: res.PrimaryLevel.Global.CompositionPercent,
			Behavior:    res.PrimaryLevel.Global.BehaviorPercent,
		},
		Secondary: make(map[string]map[string]Share, len(res.Categories)),
	}
	for i, category := range res.Categories {
		res.SecondaryBy[category] = levels[i]
		shares := make(map[string]Share, len(levels[i]))
		for _, l := range levels[i] {
			shares[l.Variable] = Share{Composition: l.Global.CompositionPercent, Behavior: l.Global.BehaviorPercent}
		}
		res.Contributions.Secondary[category] = shares
	}
	return res, nil
}

func sampleOf(f *dataset.Frame, outcome, group string) (sample, error) {
	y, err := f.Floats(outcome)
	if err != nil {
		return sample{}, err
	}
	groups, err := f.Column(group)
	if err != nil {
		return sample{}, err
	}
	return sample{y: y, groups: groups}, nil
}

func mask(groups []string, label string) []bool {
	out := make([]bool, len(groups))
	for i, g := range groups {
		out[i] = g == label
	}
	return out
}

func pick(s sample, keep []bool) sample {
	var out sample
	for i, k := range keep {
		if k {
			out.y = append(out.y, s.y[i])
			out.groups = append(out.groups, s.groups[i])
		}
	}
	return out
}
