package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Style selects the border of terminal tables.
type Style string

const (
	StyleRounded  Style = "rounded"
	StyleNormal   Style = "normal"
	StyleASCII    Style = "ascii"
	StyleMarkdown Style = "markdown"
)

// Styles lists the supported table styles.
func Styles() []Style {
	return []Style{StyleRounded, StyleNormal, StyleASCII, StyleMarkdown}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1E3A8A")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle = cellStyle.Foreground(lipgloss.Color("245"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).MarginBottom(1)
)

// Table is a titled grid of formatted cells.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Truncate keeps the first n rows and appends a row counting the rest.
// n ≤ 0 keeps everything.
func (t *Table) Truncate(n int) *Table {
	if n <= 0 || len(t.Rows) <= n {
		return t
	}
	out := &Table{Title: t.Title, Headers: t.Headers, Rows: append([][]string(nil), t.Rows[:n]...)}
	more := make([]string, len(t.Headers))
	more[0] = fmt.Sprintf("… %d more", len(t.Rows)-n)
	out.Rows = append(out.Rows, more)
	return out
}

// Render draws the table for a terminal.
func (t *Table) Render(style Style) string {
	if style == StyleMarkdown {
		return t.Markdown()
	}
	border := lipgloss.RoundedBorder()
	switch style {
	case StyleNormal:
		border = lipgloss.NormalBorder()
	case StyleASCII:
		border = lipgloss.ASCIIBorder()
	}

	tbl := table.New().
		Border(border).
		BorderStyle(borderStyle).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 1:
				return oddRowStyle
			default:
				return cellStyle
			}
		})

	if t.Title == "" {
		return tbl.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(t.Title), tbl.String())
}

// Markdown renders the table as a GitHub-flavored Markdown table.
func (t *Table) Markdown() string {
	var b strings.Builder
	if t.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", t.Title)
	}
	b.WriteString("| " + strings.Join(escapeCells(t.Headers), " | ") + " |\n")
	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("|" + strings.Join(seps, "|") + "|\n")
	for _, r := range t.Rows {
		b.WriteString("| " + strings.Join(escapeCells(r), " | ") + " |\n")
	}
	return b.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}
