package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/timeseries"
)

var (
	compositionBar = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	behaviorBar    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	labelStyle     = lipgloss.NewStyle().Width(18)
)

// Bar is one labelled pair of values in a chart.
type Bar struct {
	Label  string
	First  float64
	Second float64
}

// BarChart draws horizontal bars for two values per label, scaled to width
// characters for the largest magnitude. Negative values are drawn with ░.
func BarChart(title, first, second string, bars []Bar, width int, f Formatter) string {
	if width <= 0 {
		width = 40
	}
	var scale float64
	for _, b := range bars {
		scale = math.Max(scale, math.Max(math.Abs(b.First), math.Abs(b.Second)))
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(titleStyle.Render(title) + "\n")
	}
	fmt.Fprintf(&sb, "%s %s   %s %s\n\n", compositionBar.Render("█"), first, behaviorBar.Render("█"), second)
	for _, b := range bars {
		sb.WriteString(labelStyle.Render(truncate(b.Label, 17)))
		sb.WriteString(compositionBar.Render(bar(b.First, scale, width)) + " " + f.Number(b.First) + "\n")
		sb.WriteString(labelStyle.Render(""))
		sb.WriteString(behaviorBar.Render(bar(b.Second, scale, width)) + " " + f.Number(b.Second) + "\n")
	}
	return sb.String()
}

func bar(v, scale float64, width int) string {
	if scale == 0 || math.IsNaN(v) {
		return ""
	}
	n := int(math.Round(math.Abs(v) / scale * float64(width)))
	if v < 0 {
		return strings.Repeat("░", n)
	}
	return strings.Repeat("█", n)
}

// ContributionChart draws composition and behavior effects per group, largest
// total contribution first. limit ≤ 0 shows every group.
func ContributionChart(r *demographic.Result, limit, width int, f Formatter) string {
	groups := r.SortedByContribution()
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	bars := make([]Bar, len(groups))
	for i, g := range groups {
		bars[i] = Bar{Label: g.Group, First: g.Composition, Second: g.Behavior}
	}
	return BarChart("Contributions by group", "composition", "behavior", bars, width, f)
}

// Sparkline draws a series as a one-line chart.
func Sparkline(s *timeseries.Series) string {
	const ticks = "▁▂▃▄▅▆▇█"
	levels := []rune(ticks)
	if s.Len() == 0 {
		return ""
	}
	lo, hi := s.Min(), s.Max()
	var sb strings.Builder
	for _, v := range s.Values {
		if math.IsNaN(v) {
			sb.WriteRune(' ')
			continue
		}
		i := 0
		if hi > lo {
			i = int(math.Round((v - lo) / (hi - lo) * float64(len(levels)-1)))
		}
		sb.WriteRune(levels[i])
	}
	return sb.String()
}
