// Package dataset provides the tabular data structure used by every analysis.
//
// A Frame holds named columns of raw cell text. Analyses pull typed columns out
// of it on demand, so the same frame can carry group labels, period labels and
// numeric measures side by side.
//
// # Loading Data
//
// Load a file by extension (CSV or Excel):
//
//	frame, err := dataset.Load("education_africa.csv")
//
// Load CSV from any reader:
//
//	opts := dataset.DefaultCSVOptions()
//	opts.Delimiter = ';'
//	frame, err := dataset.LoadCSVFromReader(reader, opts)
//
// # Accessing Columns
//
//	weights, err := frame.Floats("w_2015")   // numeric column
//	labels, err := frame.Column("Country")   // raw text
//	regions := frame.Unique("region")         // distinct values, first-seen order
//	north := frame.Filter("region", "Nord")   // row subset
//
// # Validation
//
//	if err := dataset.RequireColumns(frame, "group", "w1", "y1"); err != nil {
//	    // errors.Is(err, dataset.ErrColumnNotFound)
//	}
//	ok := dataset.CheckPercentages(weights, 0.1) // sums to 100 within tolerance
package dataset
