package report

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/mathematical"
	"github.com/sartorproj/godecomp/regression"
	"github.com/sartorproj/godecomp/structural"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrUnsupportedResult is returned by Build for result types without a report.
var ErrUnsupportedResult = errors.New("no report for this result type")

// Kind identifies the analysis a report describes.
type Kind string

const (
	KindDemographic  Kind = "demographic"
	KindRegression   Kind = "regression"
	KindTime         Kind = "time"
	KindMathematical Kind = "mathematical"
	KindNested       Kind = "nested"
	KindComponents   Kind = "components"
	KindPaths        Kind = "paths"
)

// Metadata is shown in the header and the information section.
type Metadata struct {
	App     string
	Version string
	Title   string
	Source  string
	Date    time.Time
	Extra   map[string]string
}

// Report is an assembled analysis document.
type Report struct {
	Kind           Kind
	Meta           Metadata
	Summary        string
	Tables         []*Table
	Interpretation string
	Methodology    string
	Warnings       []string
}

// Build assembles the report for a result of any supported analysis.
func Build(result any, meta Metadata, f Formatter) (*Report, error) {
	if meta.App == "" {
		meta.App = "Decomposition Analysis"
	}
	if meta.Date.IsZero() {
		meta.Date = time.Now()
	}
	r := &Report{Meta: meta}

	switch res := result.(type) {
	case *demographic.Result:
		a := res.Aggregate
		r.Kind = KindDemographic
		r.Summary = fmt.Sprintf("The demographic decomposition finds a total change of **%s**. "+
			"**%s** of it comes from a composition effect (a change in the structure of the population) "+
			"and **%s** from a behavior effect (a change in the groups' own values).",
			f.Number(a.TotalChange), f.Percent(a.CompositionPercent), f.Percent(a.BehaviorPercent))
		r.Tables = []*Table{DemographicSummary(res, f), DemographicTable(res, f).Truncate(10)}
		r.Interpretation = interpretShares(a.CompositionPercent, a.BehaviorPercent)
		r.Warnings = res.Warnings
	case *regression.OaxacaResult:
		d := res.Decomposition
		r.Kind = KindRegression
		r.Summary = fmt.Sprintf("The regression decomposition finds a total difference of **%s** between %s and %s. "+
			"**%s** is explained by observable characteristics, while **%s** remains unexplained "+
			"(possibly discrimination or unobserved factors).",
			f.Number(d.Total), res.Group1.Label, res.Group2.Label, f.Percent(d.ExplainedPercent), f.Percent(d.UnexplainedPercent))
		r.Tables = []*Table{
			OaxacaTable(res, f),
			ContributionTable("Detailed contributions", "Explained", "Unexplained", res.Detailed, f),
		}
		r.Interpretation = interpretUnexplained(d.UnexplainedPercent)
		r.Warnings = res.Warnings
	case *regression.TimeResult:
		c := res.Contributions
		r.Kind = KindTime
		r.Summary = fmt.Sprintf("Between %s and %s the mean of %s changed by **%s**: "+
			"**%s** from the baseline, **%s** from changing returns and **%s** from changing characteristics.",
			res.Period1.Label, res.Period2.Label, res.Outcome, f.Number(res.TotalChange),
			f.Percent(c.Intercept), f.Percent(c.Coefficients), f.Percent(c.Endowments))
		r.Tables = []*Table{TimeTable(res, f), ContributionTable("Detailed contributions", "Endowments", "Coefficients", res.Detailed, f)}
		r.Interpretation = interpretShares(c.Endowments, c.Coefficients+c.Intercept)
		r.Warnings = res.Warnings
	case *mathematical.Result:
		r.Kind = KindMathematical
		r.Summary = fmt.Sprintf("%s moved from **%s** to **%s** between %s and %s.",
			res.Expression, f.Number(res.Y1), f.Number(res.Y2), res.Periods[0], res.Periods[1])
		r.Tables = []*Table{MathematicalTable(res, f), EffectsTable(res, f)}
		r.Interpretation = interpretEffects(res, f)
	case *structural.NestedResult:
		p := res.Contributions.Primary
		r.Kind = KindNested
		r.Summary = fmt.Sprintf("Across %s, the change of %s is **%s** composition and **%s** behavior.",
			res.Primary, res.Outcome, f.Percent(p.Composition), f.Percent(p.Behavior))
		r.Tables = []*Table{NestedTable(res, f), LevelTable("Primary level", res.PrimaryLevel, f)}
		r.Interpretation = interpretShares(p.Composition, p.Behavior)
	case *structural.ComponentsResult:
		r.Kind = KindComponents
		r.Summary = fmt.Sprintf("The change of %s is split over %d period pairs into age-structure, age-specific and residual effects.",
			res.Outcome, len(res.Changes))
		r.Tables = []*Table{ComponentsTable(res, f)}
	case *structural.PathsResult:
		r.Kind = KindPaths
		r.Summary = fmt.Sprintf("%d paths leading to %s were estimated.", len(res.Paths), res.Outcome)
		r.Tables = []*Table{PathsTable(res, f)}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedResult, result)
	}
	r.Methodology = methodology[r.Kind]
	return r, nil
}

func interpretShares(first, second float64) string {
	switch {
	case first > 70:
		return "**Dominant composition effect.** The change mostly comes from shifts in the structure " +
			"of the population (composition effect above 70%). Policies targeting specific groups could be effective."
	case second > 70:
		return "**Dominant behavior effect.** The change mostly comes from changes in behavior within groups " +
			"(behavior effect above 70%). General policies reaching the whole population may be appropriate."
	default:
		return "**Combined effects.** The change results from both composition and behavior. " +
			"A mixed policy approach may be needed."
	}
}

func interpretUnexplained(unexplained float64) string {
	if unexplained > 50 {
		return "**Possible discrimination.** More than 50% of the gap between the groups is not explained by " +
			"observable characteristics. This may indicate discrimination or the effect of unmeasured factors."
	}
	return "**Gap mostly explained.** Most of the gap between the groups is explained by observable " +
		"characteristics. Policies should focus on reducing the differences in those characteristics."
}

func interpretEffects(r *mathematical.Result, f Formatter) string {
	if len(r.Effects) == 0 {
		return ""
	}
	effects := append([]mathematical.Effect(nil), r.Effects...)
	sort.SliceStable(effects, func(i, j int) bool { return math.Abs(effects[i].Effect) > math.Abs(effects[j].Effect) })
	top := effects[0]
	return fmt.Sprintf("The largest contribution comes from **%s** (%s, %s of the change).", top.Name, top.Variable, f.Percent(top.Percent))
}

var methodology = map[Kind]string{
	KindDemographic: "**Demographic decomposition (Kitagawa, 1955).**\n\n" +
		"ΔY = Σ[(y₂ᵢ + y₁ᵢ)/2 × (w₂ᵢ − w₁ᵢ)] + Σ[(w₂ᵢ + w₁ᵢ)/2 × (y₂ᵢ − y₁ᵢ)]\n\n" +
		"where y is the outcome and w the demographic weight of group i.",
	KindRegression: "**Oaxaca-Blinder decomposition (1973).**\n\n" +
		"ΔY = (X̄₂ − X̄₁)β* + X̄₂(β₂ − β*) + X̄₁(β* − β₁)\n\n" +
		"The gap between groups splits into an explained part (characteristics) and an unexplained part (returns).",
	KindTime: "**Three-way decomposition of change.**\n\n" +
		"ΔY = Δα + X̄Δβ + β̄ΔX\n\n" +
		"with averages taken over the two periods.",
	KindMathematical: "**Exact mathematical decomposition.**\n\n" +
		"Each variable contributes its change weighted by the partial derivative of the formula at the midpoint of the two periods.",
	KindNested: "**Nested decomposition.**\n\n" +
		"The Kitagawa decomposition is repeated across the primary grouping and, within each primary category, across secondary groupings, with record shares as weights.",
	KindComponents: "**Demographic components.**\n\n" +
		"Age-structure effect Σ ȳₐΔwₐ, age-specific effect Σ w̄ₐΔyₐ, and a residual.",
	KindPaths: "**Path analysis.**\n\n" +
		"Each link of a path is a simple regression slope; the path effect is their product.",
}

const conclusion = `**Key points:**

1. The analysis identifies the main sources of the observed change.
2. The results help target policy interventions.
3. The method attributes contributions exactly.

**Limitations:**

- Decomposition identifies sources, not ultimate causes.
- Results depend on the quality and completeness of the data.
- Interpretation requires knowledge of the context.`

// Markdown renders the whole report.
func (r *Report) Markdown() string {
	var b strings.Builder
	version := r.Meta.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(&b, "_%s · version %s · %s_\n\n", r.Meta.App, version, r.Meta.Date.Format("2006-01-02 15:04"))

	title := r.Meta.Title
	if title == "" {
		title = string(r.Kind)
	}
	fmt.Fprintf(&b, "# Decomposition report: %s\n\n", title)

	info := [][2]string{{"analysis", string(r.Kind)}}
	if r.Meta.Source != "" {
		info = append(info, [2]string{"source", r.Meta.Source})
	}
	keys := make([]string, 0, len(r.Meta.Extra))
	for k := range r.Meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info = append(info, [2]string{k, r.Meta.Extra[k]})
	}
	b.WriteString("## Analysis information\n\n")
	for _, kv := range info {
		fmt.Fprintf(&b, "- **%s**: %s\n", kv[0], kv[1])
	}

	b.WriteString("\n## Executive summary\n\n" + r.Summary + "\n\n")

	b.WriteString("## Detailed results\n\n")
	for _, t := range r.Tables {
		b.WriteString(t.Markdown() + "\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("**Warnings:**\n\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
		b.WriteString("\n")
	}
	if r.Interpretation != "" {
		b.WriteString("## Interpretation\n\n" + r.Interpretation + "\n\n")
	}
	if r.Methodology != "" {
		b.WriteString("## Methodology\n\n" + r.Methodology + "\n\n")
	}
	b.WriteString("## Conclusion\n\n" + conclusion + "\n\n")
	b.WriteString("---\n\n_Generated automatically by " + r.Meta.App + "._\n")
	return b.String()
}

// HTML renders the report as a standalone HTML page.
func (r *Report) HTML() (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	title := html.EscapeString(r.Meta.Title)
	if title == "" {
		title = string(r.Kind)
	}
	return fmt.Sprintf(htmlPage, title, body.String()), nil
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Decomposition report - %s</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; color: #333; }
h1 { color: #1E3A8A; }
h2 { color: #3B82F6; border-left: 4px solid #3B82F6; padding-left: 10px; }
table { width: 100%%; border-collapse: collapse; margin: 10px 0; }
th { background-color: #3B82F6; color: white; padding: 10px; text-align: left; }
td { padding: 8px; border-bottom: 1px solid #ddd; }
tr:nth-child(even) { background-color: #F9FAFB; }
</style>
</head>
<body>
%s
</body>
</html>
`

// RenderTerminal renders the report as styled terminal output. style is a
// glamour style name ("dark", "light", "notty"); empty selects automatically.
func (r *Report) RenderTerminal(width int, style string) (string, error) {
	if width <= 0 {
		width = 100
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(r.Markdown())
}
