package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadExcelFromReader(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()

	rows := [][]interface{}{
		{"group", "w1", "y1"},
		{"A", 60, 10.5},
		{"B", 40, 20},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := wb.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}

	frame, err := LoadExcelFromReader(&buf, "")
	if err != nil {
		t.Fatalf("Failed to load workbook: %v", err)
	}
	if frame.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", frame.Len())
	}
	y, err := frame.Floats("y1")
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if y[0] != 10.5 || y[1] != 20 {
		t.Errorf("Unexpected y1 values: %v", y)
	}
}

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := wb.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return &buf
}

func TestLoadExcelRowWidth(t *testing.T) {
	short := workbook(t, [][]interface{}{
		{"group", "w1", "y1"},
		{"A", 60},
	})
	frame, err := LoadExcelFromReader(short, "")
	if err != nil {
		t.Fatalf("Short row should be padded: %v", err)
	}
	if got := frame.Row(0); got[2] != "" {
		t.Errorf("Expected padded empty cell, got %q", got[2])
	}

	wide := workbook(t, [][]interface{}{
		{"group", "w1"},
		{"A", 60, 99},
	})
	_, err = LoadExcelFromReader(wide, "")
	if !errors.Is(err, ErrRaggedRow) {
		t.Errorf("Expected ErrRaggedRow, got %v", err)
	}
}

func TestSaveAndLoadCSV(t *testing.T) {
	frame, err := LoadCSVFromReader(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := SaveCSV(frame, path); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != frame.Len() {
		t.Errorf("Expected %d rows, got %d", frame.Len(), loaded.Len())
	}
}
