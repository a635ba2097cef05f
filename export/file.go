package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/report"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "xlsx"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
}

// Write exports result in the given format. Non-demographic results are
// written through the tables of their report.
func Write(w io.Writer, format Format, result any, f report.Formatter) error {
	if format == FormatJSON {
		return JSON(w, result)
	}

	if r, ok := result.(*demographic.Result); ok {
		switch format {
		case FormatCSV:
			return GroupCSV(w, r)
		case FormatExcel:
			return Excel(w, DemographicWorkbook(r))
		}
	}

	doc, err := report.Build(result, report.Metadata{}, f)
	if err != nil {
		return err
	}
	return WriteTables(w, format, doc.Tables)
}

// WriteTables writes tables as consecutive CSV blocks, one sheet per table,
// or a JSON array of tables.
func WriteTables(w io.Writer, format Format, tables []*report.Table) error {
	switch format {
	case FormatJSON:
		return JSON(w, tables)
	case FormatCSV:
		for i, t := range tables {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := CSV(w, t); err != nil {
				return err
			}
		}
		return nil
	case FormatExcel:
		sheets := make([]Sheet, len(tables))
		for i, t := range tables {
			sheets[i] = SheetFromTable(t.Title, t)
		}
		return Excel(w, sheets)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteFile exports result to path, choosing the format from the extension.
// The file is only replaced once the export succeeded.
func WriteFile(path string, result any, f report.Formatter) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, format, result, f); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteTablesFile is WriteTables to a file, choosing the format from the
// extension.
func WriteTablesFile(path string, tables []*report.Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteTables(&buf, format, tables); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
