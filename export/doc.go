// Package export writes analysis results to CSV, JSON and Excel files.
//
// Demographic results get dedicated layouts matching the input columns
// (GroupCSV, AggregateCSV, DemographicWorkbook). Every other result is
// exported through the tables of its report.
package export
