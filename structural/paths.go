package structural

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sartorproj/godecomp/dataset"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyPath is returned when a path lists no variables.
var ErrEmptyPath = errors.New("path has no variables")

// Path is the estimated effect along one chain of variables.
type Path struct {
	Name              string    `json:"name"`
	Variables         []string  `json:"variables"`
	Coefficients      []float64 `json:"coefficients"`
	TotalEffect       float64   `json:"total_effect"`
	ExplainedVariance float64   `json:"explained_variance"`
	PercentExplained  float64   `json:"percent_explained"`
}

// PathsResult is the output of PathAnalysis, paths sorted by name.
type PathsResult struct {
	Outcome string `json:"outcome"`
	Paths   []Path `json:"paths"`
}

// PathAnalysis regresses each variable of a path on its predecessor, the last
// one predicting outcome. The total effect is the product of the slopes; a
// constant predictor has slope zero. Explained variance is
// total²·var(first variable).
func PathAnalysis(f *dataset.Frame, outcome string, paths map[string][]string) (*PathsResult, error) {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	y, err := f.Floats(outcome)
	if err != nil {
		return nil, err
	}
	varY := stat.Variance(y, nil)

	res := &PathsResult{Outcome: outcome}
	for _, name := range names {
		vars := paths[name]
		if len(vars) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyPath, name)
		}
		if err := dataset.RequireColumns(f, vars...); err != nil {
			return nil, fmt.Errorf("path %q: %w", name, err)
		}

		chain := make([][]float64, 0, len(vars)+1)
		for _, v := range vars {
			col, err := f.Floats(v)
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", name, err)
			}
			chain = append(chain, col)
		}
		chain = append(chain, y)

		p := Path{Name: name, Variables: vars, TotalEffect: 1}
		for i := 0; i+1 < len(chain); i++ {
			b := slope(chain[i], chain[i+1])
			p.Coefficients = append(p.Coefficients, b)
			p.TotalEffect *= b
		}
		p.ExplainedVariance = p.TotalEffect * p.TotalEffect * stat.Variance(chain[0], nil)
		p.PercentExplained = percentOf(p.ExplainedVariance, varY)
		res.Paths = append(res.Paths, p)
	}
	return res, nil
}

func slope(x, y []float64) float64 {
	if len(x) < 2 || stat.Variance(x, nil) == 0 {
		return 0
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}
