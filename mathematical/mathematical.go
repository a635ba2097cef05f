package mathematical

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sartorproj/godecomp/dataset"
)

var (
	// ErrUnknownFormula is returned for a formula ID that is neither built in nor registered.
	ErrUnknownFormula = errors.New("unknown formula")
	// ErrMissingValue is returned when a formula variable has no value for a period.
	ErrMissingValue = errors.New("missing value")
	// ErrZeroDenominator is returned when a ratio formula divides by zero.
	ErrZeroDenominator = errors.New("zero denominator")
	// ErrNonPositive is returned when a logarithmic formula gets a value <= 0.
	ErrNonPositive = errors.New("value must be positive")
	// ErrInvalidExpression is returned when a custom formula cannot be compiled.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrDuplicateFormula is returned when registering an ID that is already taken.
	ErrDuplicateFormula = errors.New("formula already registered")
)

// Formula describes a decomposable formula.
type Formula struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Variables  []string `json:"variables"`
	Rule       string   `json:"decomposition_rule"`
	Custom     bool     `json:"custom,omitempty"`
}

// Data maps a variable to its value in each period.
type Data map[string]map[string]float64

// Effect is the contribution of one variable.
type Effect struct {
	Name     string  `json:"name"`
	Variable string  `json:"variable"`
	Delta    float64 `json:"delta"`
	Effect   float64 `json:"effect"`
	Percent  float64 `json:"percent"`
}

// Result is the output of a decomposition.
type Result struct {
	Formula        string             `json:"formula"`
	Expression     string             `json:"expression"`
	Periods        [2]string          `json:"periods"`
	Period1        map[string]float64 `json:"period1"`
	Period2        map[string]float64 `json:"period2"`
	Y1             float64            `json:"Y1"`
	Y2             float64            `json:"Y2"`
	DeltaY         float64            `json:"delta_Y"`
	LogScale       bool               `json:"log_scale,omitempty"` // DeltaY and effects are in log points
	Effects        []Effect           `json:"effects"`
	TotalEffect    float64            `json:"total_effect"`
	Residual       float64            `json:"residual"`
	Averages       map[string]float64 `json:"averages"`
	Interpretation map[string]string  `json:"interpretation,omitempty"`
}

// Effect returns the effect with the given name.
func (r *Result) Effect(name string) (Effect, bool) {
	for _, e := range r.Effects {
		if e.Name == name {
			return e, true
		}
	}
	return Effect{}, false
}

type decomposeFunc func(p1, p2 map[string]float64) (*Result, error)

type builtin struct {
	Formula
	run decomposeFunc
}

var builtins = map[string]builtin{
	"ratio": {
		Formula: Formula{
			ID: "ratio", Name: "Simple ratio", Expression: "Y = A / B",
			Variables: []string{"A", "B"},
			Rule:      "ΔY = (1/B̄)ΔA − (Ā/B̄²)ΔB",
		},
		run: decomposeRatio,
	},
	"product": {
		Formula: Formula{
			ID: "product", Name: "Product of ratios", Expression: "Y = (G * k) / P",
			Variables: []string{"G", "k", "P"},
			Rule:      "ΔY = (k̄/P̄)ΔG + (Ḡ/P̄)Δk − (Ḡk̄/P̄²)ΔP",
		},
		run: decomposeProductRatio,
	},
	"product_simple": {
		Formula: Formula{
			ID: "product_simple", Name: "Simple product", Expression: "Y = A * B",
			Variables: []string{"A", "B"},
			Rule:      "ΔY = B̄ΔA + ĀΔB",
		},
		run: decomposeProduct,
	},
	"demographic_dividend": {
		Formula: Formula{
			ID: "demographic_dividend", Name: "Demographic dividend", Expression: "Y = (G/A) * (A/P)",
			Variables: []string{"G", "A", "P"},
			Rule:      "ΔY = ᾱΔπ + π̄Δα",
		},
		run: decomposeDividend,
	},
	"cobb_douglas": {
		Formula: Formula{
			ID: "cobb_douglas", Name: "Cobb-Douglas production function", Expression: "Y = A * K^alpha * L^(1-alpha)",
			Variables: []string{"A", "K", "L", "alpha"},
			Rule:      "ΔlnY = ΔlnA + αΔlnK + (1−α)ΔlnL",
		},
		run: decomposeCobbDouglas,
	},
}

// Decomposer runs built-in and registered custom formulas. It is safe for
// concurrent use.
type Decomposer struct {
	mu     sync.RWMutex
	custom map[string]*customFormula
}

// New creates a Decomposer with the built-in formulas.
func New() *Decomposer {
	return &Decomposer{custom: make(map[string]*customFormula)}
}

// Formulas lists built-in formulas followed by custom ones, each group sorted by ID.
func (d *Decomposer) Formulas() []Formula {
	var out []Formula
	for _, b := range builtins {
		out = append(out, b.Formula)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	d.mu.RLock()
	var custom []Formula
	for _, c := range d.custom {
		custom = append(custom, c.Formula)
	}
	d.mu.RUnlock()
	sort.Slice(custom, func(i, j int) bool { return custom[i].ID < custom[j].ID })

	return append(out, custom...)
}

// Lookup returns the formula registered under id.
func (d *Decomposer) Lookup(id string) (Formula, bool) {
	if b, ok := builtins[id]; ok {
		return b.Formula, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if c, ok := d.custom[id]; ok {
		return c.Formula, true
	}
	return Formula{}, false
}

// Analyze decomposes the change of formula id between the two periods.
func (d *Decomposer) Analyze(id string, data Data, periods [2]string) (*Result, error) {
	formula, ok := d.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormula, id)
	}

	p1, p2, err := extract(data, formula.Variables, periods)
	if err != nil {
		return nil, err
	}

	var res *Result
	if b, ok := builtins[id]; ok {
		res, err = b.run(p1, p2)
	} else {
		d.mu.RLock()
		c := d.custom[id]
		d.mu.RUnlock()
		res, err = c.decompose(p1, p2)
	}
	if err != nil {
		return nil, err
	}

	res.Formula = formula.ID
	res.Expression = formula.Expression
	res.Periods = periods
	res.finish()
	return res, nil
}

// extract validates and pulls the values of each variable in both periods.
func extract(data Data, variables []string, periods [2]string) (p1, p2 map[string]float64, err error) {
	p1 = make(map[string]float64, len(variables))
	p2 = make(map[string]float64, len(variables))
	for _, v := range variables {
		series, ok := data[v]
		if !ok {
			return nil, nil, fmt.Errorf("%w: variable %q", ErrMissingValue, v)
		}
		a, ok := series[periods[0]]
		if !ok {
			return nil, nil, fmt.Errorf("%w: variable %q period %q", ErrMissingValue, v, periods[0])
		}
		b, ok := series[periods[1]]
		if !ok {
			return nil, nil, fmt.Errorf("%w: variable %q period %q", ErrMissingValue, v, periods[1])
		}
		if math.IsNaN(a) || math.IsNaN(b) {
			return nil, nil, fmt.Errorf("%w: variable %q is NaN", ErrMissingValue, v)
		}
		p1[v], p2[v] = a, b
	}
	return p1, p2, nil
}

// finish fills the totals and percentages shared by every formula.
func (r *Result) finish() {
	r.TotalEffect = 0
	for i := range r.Effects {
		r.TotalEffect += r.Effects[i].Effect
		r.Effects[i].Percent = percentOf(r.Effects[i].Effect, r.DeltaY)
	}
	r.Residual = r.DeltaY - r.TotalEffect
}

// DataFromFrame reads a frame laid out with one row per variable and one
// column per period. Missing cells ("", "NA", ...) are left out.
func DataFromFrame(f *dataset.Frame, variableColumn string) (Data, error) {
	if err := dataset.RequireColumns(f, variableColumn); err != nil {
		return nil, err
	}
	names, _ := f.Column(variableColumn)
	data := make(Data, len(names))
	for _, period := range f.Columns {
		if period == variableColumn {
			continue
		}
		cells, _ := f.Column(period)
		for i, c := range cells {
			v, err := dataset.ParseCell(c)
			if errors.Is(err, dataset.ErrMissingValue) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("variable %q period %q: %w", names[i], period, err)
			}
			if data[names[i]] == nil {
				data[names[i]] = make(map[string]float64)
			}
			data[names[i]][period] = v
		}
	}
	return data, nil
}

// GrowthRate returns the compound growth rate in percent per period, NaN when
// the initial value is zero.
func GrowthRate(initial, final float64, periods int) float64 {
	if initial == 0 {
		return math.NaN()
	}
	if periods < 1 {
		periods = 1
	}
	return (math.Pow(final/initial, 1/float64(periods)) - 1) * 100
}

// LogChange returns ln(current) − ln(base).
func LogChange(base, current float64) float64 {
	return math.Log(current) - math.Log(base)
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func mid(a, b float64) float64 {
	return (a + b) / 2
}
