package structural

import (
	"fmt"

	"github.com/sartorproj/godecomp/dataset"
)

// ComponentSpec describes a demographic components decomposition.
type ComponentSpec struct {
	Outcome   string
	AgeVar    string
	PeriodVar string // default: DefaultPeriodVar
}

// Component names.
const (
	AgeStructure = "age_structure"
	AgeRates     = "age_rates"
	Residual     = "residual"
)

// Component is one part of the change between two periods.
type Component struct {
	Name           string  `json:"name"`
	Contribution   float64 `json:"contribution"`
	Percent        float64 `json:"percent"`
	Interpretation string  `json:"interpretation"`
}

// PeriodChange decomposes the change between two consecutive periods.
type PeriodChange struct {
	From        string      `json:"from"`
	To          string      `json:"to"`
	TotalChange float64     `json:"total_change"`
	Components  []Component `json:"components"`
}

// Component returns the named component, or nil.
func (p *PeriodChange) Component(name string) *Component {
	for i := range p.Components {
		if p.Components[i].Name == name {
			return &p.Components[i]
		}
	}
	return nil
}

// ComponentsResult is the output of Components.
type ComponentsResult struct {
	Outcome string         `json:"outcome"`
	Periods []string       `json:"periods"`
	Changes []PeriodChange `json:"decompositions"`
}

var interpretations = map[string]string{
	AgeStructure: "Change in the age structure of the population",
	AgeRates:     "Change in age-specific values",
	Residual:     "Behavioral effect and other non-demographic factors",
}

// Components decomposes the change of the mean outcome between every pair of
// consecutive periods. The age-structure effect is Σ ȳₐ·Δwₐ and the rate
// effect Σ w̄ₐ·Δyₐ, where wₐ is the share of records in age group a. An age
// group absent from a period counts with weight and value zero there.
func Components(f *dataset.Frame, spec ComponentSpec) (*ComponentsResult, error) {
	if spec.PeriodVar == "" {
		spec.PeriodVar = DefaultPeriodVar
	}
	if err := dataset.RequireColumns(f, spec.Outcome, spec.AgeVar, spec.PeriodVar); err != nil {
		return nil, err
	}
	periods := dataset.SortLabels(f.Unique(spec.PeriodVar))
	if len(periods) < 2 {
		return nil, fmt.Errorf("%w: %q has %d", ErrTooFewPeriods, spec.PeriodVar, len(periods))
	}

	res := &ComponentsResult{Outcome: spec.Outcome, Periods: periods}
	for i := 0; i+1 < len(periods); i++ {
		s1, err := sampleOf(f.Filter(spec.PeriodVar, periods[i]), spec.Outcome, spec.AgeVar)
		if err != nil {
			return nil, err
		}
		s2, err := sampleOf(f.Filter(spec.PeriodVar, periods[i+1]), spec.Outcome, spec.AgeVar)
		if err != nil {
			return nil, err
		}

		ages := dataset.SortLabels(firstSeen(s1.groups, s2.groups))
		var structure, rates float64
		for _, age := range ages {
			y1, w1, ok1 := s1.stats(age)
			y2, w2, ok2 := s2.stats(age)
			if !ok1 {
				y1 = 0
			}
			if !ok2 {
				y2 = 0
			}
			structure += (y1 + y2) / 2 * (w2 - w1)
			rates += (w1 + w2) / 2 * (y2 - y1)
		}

		total := mean(s2.y) - mean(s1.y)
		pc := PeriodChange{From: periods[i], To: periods[i+1], TotalChange: total}
		for _, c := range []struct {
			name  string
			value float64
		}{
			{AgeStructure, structure},
			{AgeRates, rates},
			{Residual, total - structure - rates},
		} {
			pc.Components = append(pc.Components, Component{
				Name:           c.name,
				Contribution:   c.value,
				Percent:        percentOf(c.value, total),
				Interpretation: interpretations[c.name],
			})
		}
		res.Changes = append(res.Changes, pc)
	}
	return res, nil
}
