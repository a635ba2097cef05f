package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// LoadExcel loads a frame from a workbook sheet. An empty sheet name selects
// the first sheet.
func LoadExcel(filename, sheet string) (*Frame, error) {
	wb, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return frameFromWorkbook(wb, sheet)
}

// LoadExcelFromReader loads a frame from a workbook stream.
func LoadExcelFromReader(r io.Reader, sheet string) (*Frame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return frameFromWorkbook(wb, sheet)
}

func frameFromWorkbook(wb *excelize.File, sheet string) (*Frame, error) {
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmpty
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrEmpty
	}

	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for i, r := range rows[1:] {
		if len(r) == 0 {
			continue
		}
		if len(r) > len(header) {
			return nil, fmt.Errorf("sheet %q row %d: %w: %d cells, header has %d", sheet, i+2, ErrRaggedRow, len(r), len(header))
		}
		// GetRows trims trailing empty cells.
		cells := make([]string, len(header))
		copy(cells, r)
		body = append(body, cells)
	}
	return FromRecords(header, body)
}
