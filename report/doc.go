// Package report renders decomposition results for people.
//
// Every result type is first turned into one or more Tables, plain grids of
// formatted cells. Tables render to the terminal with lipgloss, to Markdown,
// and feed the CSV and Excel exports. A Report assembles tables and prose
// into a document that renders to Markdown, HTML (goldmark) or styled
// terminal output (glamour).
//
//	f := report.Formatter{Decimals: 4}
//	fmt.Println(report.DemographicTable(result, f).Render(report.StyleRounded))
//	doc, _ := report.Build(result, report.Metadata{Title: "Education"}, f)
//	html, _ := doc.HTML()
package report
