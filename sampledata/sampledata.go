// Package sampledata provides the built-in example datasets used by the
// CLI and by tests.
package sampledata

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/godecomp/dataset"
)

// ErrUnknownDataset is returned by Get for a name not in Names.
var ErrUnknownDataset = errors.New("unknown example dataset")

// DefaultSeed is used by the registry for the generated datasets.
const DefaultSeed = 42

// Dataset is a named example with a hint on how to analyse it.
type Dataset struct {
	Name        string
	Description string
	Hint        string
	Frame       *dataset.Frame
}

var registry = map[string]struct {
	description string
	hint        string
	build       func() *dataset.Frame
}{
	"education_africa": {
		description: "Education spending in 20 African countries, 2015 and 2020",
		hint:        "decomp demographic --example education_africa --group Country --periods 2015,2020",
		build:       EducationAfrica,
	},
	"presidential_opinion": {
		description: "US presidential approval by education level, 1972 and 2010",
		hint:        "decomp demographic --example presidential_opinion --group education --periods 1972,2010",
		build:       PresidentialOpinion,
	},
	"wage_gap": {
		description: "Simulated wages by gender with education, experience and sector",
		hint:        "decomp regression oaxaca --example wage_gap --outcome wage --group gender --groups Male,Female --predictors education,experience,sector",
		build:       func() *dataset.Frame { return WageGap(1000, DefaultSeed) },
	},
	"demographic_structure": {
		description: "Simulated regional population by age group over four periods",
		hint:        "decomp structural nested --example demographic_structure --outcome income --primary region --secondary age_group",
		build:       func() *dataset.Frame { return DemographicStructure(DefaultSeed) },
	},
}

// Names returns the registered dataset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get builds the named dataset.
func Get(name string) (*Dataset, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return &Dataset{Name: name, Description: e.description, Hint: e.hint, Frame: e.build()}, nil
}

// WriteAll writes every dataset as <name>.csv into dir and returns the
// paths written.
func WriteAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range Names() {
		d, err := Get(name)
		if err != nil {
			return paths, err
		}
		p := filepath.Join(dir, name+".csv")
		if err := dataset.SaveCSV(d.Frame, p); err != nil {
			return paths, fmt.Errorf("writing %s: %w", name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// EducationAfrica returns education spending shares (w) and rates (y)
// for 20 countries in 2015 and 2020.
func EducationAfrica() *dataset.Frame {
	countries := []string{"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso",
		"Cameroon", "Congo, Dem. Rep.", "Egypt", "Ethiopia", "Ghana",
		"Kenya", "Morocco", "Mozambique", "Nigeria", "South Africa",
		"Sudan", "Tanzania", "Tunisia", "Uganda", "Zambia"}
	w2015 := []float64{3.30, 2.35, 0.91, 0.19, 1.56, 1.92, 6.56, 8.15, 8.54, 2.41,
		3.91, 2.89, 2.24, 15.34, 4.66, 3.18, 4.38, 0.96, 3.12, 1.35}
	y2015 := []float64{3.28, 1.53, 2.76, 9.67, 4.15, 2.55, 2.15, 4.68, 3.79, 4.25,
		5.79, 4.94, 3.55, 0.64, 4.56, 4.64, 3.69, 5.44, 1.55, 2.89}
	w2020 := []float64{3.20, 2.46, 0.93, 0.19, 1.58, 1.95, 6.83, 7.91, 8.62, 2.37,
		3.83, 2.70, 2.29, 15.33, 4.33, 3.27, 4.54, 0.90, 3.27, 1.39}
	y2020 := []float64{4.02, 3.93, 3.33, 10.12, 4.84, 2.94, 2.15, 5.34, 3.32, 4.47,
		5.37, 6.04, 5.62, 0.82, 7.43, 2.55, 4.02, 6.79, 1.65, 3.37}
	return columns([]string{"Country", "w_2015", "y_2015", "w_2020", "y_2020"},
		countries, w2015, y2015, w2020, y2020)
}

// PresidentialOpinion returns approval rates by education level in 1972
// and 2010.
func PresidentialOpinion() *dataset.Frame {
	levels := []string{"No diploma", "Secondary", "Some college", "Bachelor", "Master+"}
	return columns([]string{"education", "w_1972", "y_1972", "w_2010", "y_2010"},
		levels,
		[]float64{40.705, 46.923, 1.090, 7.949, 3.333},
		[]float64{69, 75, 71, 84, 89},
		[]float64{14.922, 48.973, 7.094, 18.346, 10.665},
		[]float64{93, 96, 99, 98, 100})
}

// WageGap simulates n wage records. Men earn a 3000 premium on top of
// education, experience and private-sector effects.
func WageGap(n int, seed uint64) *dataset.Frame {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	male := distuv.Bernoulli{P: 0.6, Src: src}
	private := distuv.Bernoulli{P: 0.5, Src: src}
	edu := distuv.Normal{Mu: 12, Sigma: 3, Src: src}
	exp := distuv.Exponential{Rate: 0.1, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 2000, Src: src}

	rows := make([][]string, n)
	for i := range rows {
		m := male.Rand()
		e := clip(edu.Rand(), 0, 20)
		x := clip(exp.Rand(), 0, 40)
		p := private.Rand()
		wage := 20000 + 3000*m + 1500*e + 800*x + 2000*p + noise.Rand()

		gender, sector := "Female", "Public"
		if m == 1 {
			gender = "Male"
		}
		if p == 1 {
			sector = "Private"
		}
		rows[i] = []string{gender, format(e), format(x), sector, format(wage)}
	}
	return dataset.MustFromRecords([]string{"gender", "education", "experience", "sector", "wage"}, rows)
}

// DemographicStructure simulates a full region x age group x period grid.
func DemographicStructure(seed uint64) *dataset.Frame {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	pop := distuv.Poisson{Lambda: 100000, Src: src}
	income := distuv.Gamma{Alpha: 2, Beta: 1.0 / 500, Src: src}
	edu := distuv.Beta{Alpha: 5, Beta: 2, Src: src}

	regions := []string{"North", "South", "East", "West"}
	ages := []string{"0-14", "15-29", "30-49", "50-64", "65+"}
	periods := []string{"2010", "2015", "2020", "2025"}

	var rows [][]string
	for _, r := range regions {
		for _, p := range periods {
			for _, a := range ages {
				rows = append(rows, []string{r, a, p,
					strconv.FormatFloat(pop.Rand(), 'f', 0, 64),
					format(income.Rand()),
					format(edu.Rand())})
			}
		}
	}
	return dataset.MustFromRecords(
		[]string{"region", "age_group", "period", "population", "income", "education_rate"}, rows)
}

func columns(header []string, labels []string, values ...[]float64) *dataset.Frame {
	rows := make([][]string, len(labels))
	for i, l := range labels {
		row := []string{l}
		for _, v := range values {
			row = append(row, format(v[i]))
		}
		rows[i] = row
	}
	return dataset.MustFromRecords(header, rows)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
