package report

import (
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/structural"
)

// Headline holds the three figures that summarize an analysis.
type Headline struct {
	Kind        Kind
	TotalChange float64
	First       float64 // composition, explained or first-effect percent
	Second      float64 // behavior, unexplained or remaining percent
}

// HeadlineOf extracts the summary figures of a result.
func HeadlineOf(result any) (Headline, bool) {
	switch r := result.(type) {
	case *demographic.Result:
		a := r.Aggregate
		return Headline{KindDemographic, a.TotalChange, a.CompositionPercent, a.BehaviorPercent}, true
	case *regression.OaxacaResult:
		d := r.Decomposition
		return Headline{KindRegression, d.Total, d.ExplainedPercent, d.UnexplainedPercent}, true
	case *regression.TimeResult:
		c := r.Contributions
		return Headline{KindTime, r.TotalChange, c.Endowments, c.Coefficients + c.Intercept}, true
	case *mathematical.Result:
		h := Headline{Kind: KindMathematical, TotalChange: r.DeltaY}
		if len(r.Effects) > 0 {
			h.First = r.Effects[0].Percent
			h.Second = 100 - h.First
		}
		return h, true
	case *structural.NestedResult:
		g := r.PrimaryLevel.Global
		return Headline{KindNested, g.DeltaY, g.CompositionPercent, g.BehaviorPercent}, true
	case *structural.ComponentsResult:
		h := Headline{Kind: KindComponents}
		for _, pc := range r.Changes {
			h.TotalChange += pc.TotalChange
		}
		if len(r.Changes) > 0 {
			last := r.Changes[len(r.Changes)-1]
			if c := last.Component(structural.AgeStructure); c != nil {
				h.First = c.Percent
			}
			if c := last.Component(structural.AgeRates); c != nil {
				h.Second = c.Percent
			}
		}
		return h, true
	case *structural.PathsResult:
		h := Headline{Kind: KindPaths}
		if len(r.Paths) > 0 {
			h.TotalChange = r.Paths[0].TotalEffect
			h.First = r.Paths[0].PercentExplained
			h.Second = 100 - h.First
		}
		return h, true
	}
	return Headline{}, false
}
