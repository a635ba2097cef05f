package structural

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// GroupChange describes one group between two periods. Means are NaN when
// the group is absent from a period.
type GroupChange struct {
	Group   string  `json:"group"`
	Mean1   float64 `json:"mean_period1"`
	Mean2   float64 `json:"mean_period2"`
	Change  float64 `json:"change"`
	Weight1 float64 `json:"weight_period1"`
	Weight2 float64 `json:"weight_period2"`
}

// Global is the decomposition of the change of the overall mean.
type Global struct {
	Y1                 float64 `json:"Y1"`
	Y2                 float64 `json:"Y2"`
	DeltaY             float64 `json:"delta_Y"`
	Composition        float64 `json:"composition_effect"`
	Behavior           float64 `json:"behavior_effect"`
	CompositionPercent float64 `json:"composition_percent"`
	BehaviorPercent    float64 `json:"behavior_percent"`
}

// Level is the decomposition of one grouping variable.
type Level struct {
	Variable string        `json:"variable"`
	Groups   []GroupChange `json:"groups"`
	Global   Global        `json:"global"`
}

// sample is the outcome and group label of every record of one period.
type sample struct {
	y      []float64
	groups []string
}

// stats returns the mean outcome of a group and its share of records.
func (s sample) stats(label string) (mean, weight float64, ok bool) {
	var sum float64
	var n int
	for i, g := range s.groups {
		if g == label {
			sum += s.y[i]
			n++
		}
	}
	if len(s.groups) > 0 {
		weight = float64(n) / float64(len(s.groups))
	}
	if n == 0 {
		return math.NaN(), weight, false
	}
	return sum / float64(n), weight, true
}

func mean(y []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	return stat.Mean(y, nil)
}

// decomposeLevel compares two periods across the groups of one variable. A
// group missing from a period takes that period's overall mean in the global
// effects.
func decomposeLevel(variable string, p1, p2 sample) Level {
	lvl := Level{Variable: variable}
	y1, y2 := mean(p1.y), mean(p2.y)
	g := Global{Y1: y1, Y2: y2, DeltaY: y2 - y1}

	for _, label := range firstSeen(p1.groups, p2.groups) {
		m1, w1, ok1 := p1.stats(label)
		m2, w2, ok2 := p2.stats(label)
		change := math.NaN()
		if ok1 && ok2 {
			change = m2 - m1
		}
		lvl.Groups = append(lvl.Groups, GroupChange{
			Group:   label,
			Mean1:   m1,
			Mean2:   m2,
			Change:  change,
			Weight1: w1,
			Weight2: w2,
		})
		if !ok1 {
			m1 = y1
		}
		if !ok2 {
			m2 = y2
		}
		g.Composition += (m1 + m2) / 2 * (w2 - w1)
		g.Behavior += (w1 + w2) / 2 * (m2 - m1)
	}
	g.CompositionPercent = percentOf(g.Composition, g.DeltaY)
	g.BehaviorPercent = percentOf(g.Behavior, g.DeltaY)
	lvl.Global = g
	return lvl
}

func firstSeen(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// percentOf is undefined (NaN) when whole is; a zero whole gives 0.
func percentOf(part, whole float64) float64 {
	if math.IsNaN(whole) || math.IsNaN(part) {
		return math.NaN()
	}
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
