// Package godecomp decomposes the change of an aggregate indicator into the
// effects that produced it.
//
// The toolkit covers the decompositions used in demography and labour
// economics:
//
//   - Kitagawa composition and behavior effects (package demographic)
//   - formula-based decompositions such as ratios, products and Cobb-Douglas
//     output, including user formulas (package mathematical)
//   - Oaxaca-Blinder group gaps and three-way time decompositions built on
//     OLS (package regression)
//   - nested, age-component and path decompositions (package structural)
//   - classical and STL seasonal decomposition of trends (package timeseries)
//
// Results render as terminal tables, Markdown, HTML or Excel (packages report
// and export) and can be kept in a SQLite history (package history). The
// decomp command in cmd/decomp wires everything together.
//
// # Quick Start
//
//	f, _ := dataset.Load("education.csv")
//	res, _ := demographic.Analyze(f, demographic.Columns{
//		Group: "Country", W1: "w_2015", Y1: "y_2015", W2: "w_2020", Y2: "y_2020",
//	}, demographic.DefaultOptions())
//	fmt.Println(res.Aggregate.Composition, res.Aggregate.Behavior)
package godecomp

// Version is the release of the toolkit reported by the CLI and in reports.
const Version = "1.0.0"
