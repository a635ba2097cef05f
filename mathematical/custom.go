package mathematical

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"gonum.org/v1/gonum/diff/fd"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type function struct {
	arity int
	call  func(args []float64) float64
}

func unary(fn func(float64) float64) function {
	return function{arity: 1, call: func(a []float64) float64 { return fn(a[0]) }}
}

// functions callable from custom expressions.
var functions = map[string]function{
	"log":  unary(math.Log),
	"ln":   unary(math.Log),
	"exp":  unary(math.Exp),
	"sqrt": unary(math.Sqrt),
	"pow":  {arity: 2, call: func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
}

// reserved names are never treated as variables.
var reserved = map[string]bool{
	"abs": true, "min": true, "max": true, "round": true, "floor": true, "ceil": true,
}

type customFormula struct {
	Formula
	program *vm.Program
}

// Register compiles a custom formula such as "Y = A * B / C" and returns its
// ID. An empty name assigns "custom_<n>".
func (d *Decomposer) Register(expression, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := strings.TrimSpace(name)
	if id == "" {
		id = fmt.Sprintf("custom_%d", len(d.custom)+1)
	}
	if !identPattern.MatchString(id) {
		return "", fmt.Errorf("%w: formula name %q", ErrInvalidExpression, id)
	}
	if _, ok := builtins[id]; ok {
		return "", fmt.Errorf("%w: %q", ErrDuplicateFormula, id)
	}
	if _, ok := d.custom[id]; ok {
		return "", fmt.Errorf("%w: %q", ErrDuplicateFormula, id)
	}

	cf, err := compileCustom(id, expression)
	if err != nil {
		return "", err
	}
	d.custom[id] = cf
	return id, nil
}

func compileCustom(id, expression string) (*customFormula, error) {
	body := expression
	if i := strings.Index(expression, "="); i >= 0 {
		body = expression[i+1:]
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	tree, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	collector := &identCollector{seen: make(map[string]bool)}
	ast.Walk(&tree.Node, collector)
	if collector.err != nil {
		return nil, collector.err
	}
	if len(collector.names) == 0 {
		return nil, fmt.Errorf("%w: no variables in %q", ErrInvalidExpression, body)
	}

	env := make(map[string]any, len(collector.names))
	for _, v := range collector.names {
		env[v] = 0.0
	}
	opts := []expr.Option{expr.Env(env), expr.AsFloat64()}
	for fname, fn := range functions {
		opts = append(opts, expr.Function(fname, func(params ...any) (any, error) {
			if len(params) != fn.arity {
				return nil, fmt.Errorf("%s expects %d argument(s), got %d", fname, fn.arity, len(params))
			}
			args := make([]float64, len(params))
			for i, p := range params {
				x, err := toFloat(p)
				if err != nil {
					return nil, err
				}
				args[i] = x
			}
			return fn.call(args), nil
		}))
	}

	program, err := expr.Compile(body, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	return &customFormula{
		Formula: Formula{
			ID:         id,
			Name:       id,
			Expression: "Y = " + body,
			Variables:  collector.names,
			Rule:       "ΔY ≈ Σ ∂f/∂xᵢ(x̄)·Δxᵢ",
			Custom:     true,
		},
		program: program,
	}, nil
}

func (c *customFormula) eval(values map[string]float64) (float64, error) {
	env := make(map[string]any, len(values))
	for k, v := range values {
		env[k] = v
	}
	out, err := expr.Run(c.program, env)
	if err != nil {
		return math.NaN(), err
	}
	return toFloat(out)
}

// decompose applies the midpoint gradient rule. The gradient is computed
// with central finite differences.
func (c *customFormula) decompose(p1, p2 map[string]float64) (*Result, error) {
	Y1, err := c.eval(p1)
	if err != nil {
		return nil, fmt.Errorf("period 1: %w", err)
	}
	Y2, err := c.eval(p2)
	if err != nil {
		return nil, fmt.Errorf("period 2: %w", err)
	}
	if math.IsInf(Y1, 0) || math.IsInf(Y2, 0) {
		return nil, ErrZeroDenominator
	}

	n := len(c.Variables)
	center := make([]float64, n)
	for i, v := range c.Variables {
		center[i] = mid(p1[v], p2[v])
	}
	f := func(x []float64) float64 {
		vals := make(map[string]float64, n)
		for i, v := range c.Variables {
			vals[v] = x[i]
		}
		y, err := c.eval(vals)
		if err != nil {
			return math.NaN()
		}
		return y
	}
	grad := fd.Gradient(nil, f, center, &fd.Settings{Formula: fd.Central})

	res := &Result{
		Period1:  copyWith(p1, "Y", Y1),
		Period2:  copyWith(p2, "Y", Y2),
		Y1:       Y1,
		Y2:       Y2,
		DeltaY:   Y2 - Y1,
		Averages: make(map[string]float64, n+1),
	}
	for i, v := range c.Variables {
		delta := p2[v] - p1[v]
		res.Effects = append(res.Effects, Effect{
			Name:     v,
			Variable: v,
			Delta:    delta,
			Effect:   grad[i] * delta,
		})
		res.Averages[v] = center[i]
	}
	res.Averages["Y"] = mid(Y1, Y2)
	return res, nil
}

type identCollector struct {
	seen  map[string]bool
	names []string
	err   error
}

func (c *identCollector) Visit(node *ast.Node) {
	if call, ok := (*node).(*ast.CallNode); ok {
		if callee, ok := call.Callee.(*ast.IdentifierNode); ok {
			if fn, known := functions[callee.Value]; known && len(call.Arguments) != fn.arity && c.err == nil {
				c.err = fmt.Errorf("%w: %s expects %d argument(s), got %d",
					ErrInvalidExpression, callee.Value, fn.arity, len(call.Arguments))
			}
		}
		return
	}
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	if _, isFunc := functions[id.Value]; isFunc || reserved[id.Value] || c.seen[id.Value] {
		return
	}
	c.seen[id.Value] = true
	c.names = append(c.names, id.Value)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("unexpected value %v (%T)", v, v)
	}
}

func copyWith(m map[string]float64, key string, v float64) map[string]float64 {
	out := make(map[string]float64, len(m)+1)
	for k, x := range m {
		out[k] = x
	}
	out[key] = v
	return out
}
