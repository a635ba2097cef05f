package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sartorproj/godecomp/dataset"
	"github.com/sartorproj/godecomp/demographic"
	"github.com/sartorproj/godecomp/report"
	"github.com/sartorproj/godecomp/structural"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func result(t *testing.T) *demographic.Result {
	t.Helper()
	res, err := demographic.Decompose(
		[]string{"Urban", "Rural"},
		[]float64{50, 50}, []float64{10, 20},
		[]float64{40, 60}, []float64{12, 22},
		demographic.Columns{Group: "area", W1: "w1", Y1: "y1", W2: "w2", Y2: "y2"},
		demographic.DefaultOptions(),
	)
	require.NoError(t, err)
	return res
}

func TestGroupCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GroupCSV(&buf, result(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "group,w1,y1,w2,y2,effect_composition"))
	assert.True(t, strings.HasPrefix(lines[1], "Urban,50,10,40,12,"))
}

func TestAggregateCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, AggregateCSV(&buf, result(t)))
	assert.Contains(t, buf.String(), "Y1,15\n")
	assert.Contains(t, buf.String(), "metric,value\n")
}

func TestCSVTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := &report.Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "x,y"}}}
	require.NoError(t, CSV(&buf, tbl))
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String())
}

func TestJSONReplacesNaN(t *testing.T) {
	type inner struct {
		Value float64 `json:"value"`
		Skip  string  `json:"-"`
		Empty []int   `json:"empty,omitempty"`
	}
	v := struct {
		Name  string             `json:"name"`
		Inner *inner             `json:"inner"`
		Map   map[string]float64 `json:"map"`
		When  time.Time          `json:"when"`
		Plain int
	}{
		Name:  "x",
		Inner: &inner{Value: math.NaN(), Skip: "hidden", Empty: []int{}},
		Map:   map[string]float64{"inf": math.Inf(1), "one": 1},
		When:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Plain: 3,
	}

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, v))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "x", got["name"])
	assert.Equal(t, map[string]any{"value": nil}, got["inner"])
	assert.Equal(t, map[string]any{"inf": nil, "one": 1.0}, got["map"])
	assert.Equal(t, "2024-01-02T00:00:00Z", got["when"])
	assert.Equal(t, 3.0, got["Plain"])
}

func TestJSONDemographicKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, result(t)))
	for _, key := range []string{`"group_results"`, `"aggregate_results"`, `"effect_composition"`, `"composition_percent"`} {
		assert.Contains(t, buf.String(), key)
	}
}

func TestExcelDemographic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, DemographicWorkbook(result(t))))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Groups", "Summary", "Metadata"}, wb.GetSheetList())
	rows, err := wb.GetRows("Groups")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Urban", rows[1][0])
	assert.Equal(t, "50", rows[1][1])

	v, err := wb.GetCellValue("Metadata", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestExcelReadsBackAsFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, DemographicWorkbook(result(t))))
	f, err := dataset.LoadExcelFromReader(&buf, "Groups")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.True(t, f.Has("effect_behavior"))
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "a_b", sheetName("a/b", 0, used))
	assert.Equal(t, "a_b (2)", sheetName("a/b", 1, used))
	assert.Equal(t, "Sheet3", sheetName("", 2, used))
	long := sheetName(strings.Repeat("x", 40), 3, used)
	assert.Len(t, long, 31)
}

func TestWriteFileFormats(t *testing.T) {
	dir := t.TempDir()
	res := result(t)
	for _, name := range []string{"out.csv", "out.json", "out.xlsx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, res, report.DefaultFormatter()), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Error(t, WriteFile(filepath.Join(dir, "out.pdf"), res, report.DefaultFormatter()))
}

func TestWriteStructuralCSV(t *testing.T) {
	paths := &structural.PathsResult{
		Outcome: "y",
		Paths:   []structural.Path{{Name: "p", Variables: []string{"x"}, Coefficients: []float64{2}, TotalEffect: 2, PercentExplained: 50}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, paths, report.Formatter{Decimals: 1}))
	assert.Contains(t, buf.String(), "Path,Chain")
	assert.Contains(t, buf.String(), "p,x → y,2.0,2.0")
}

func TestWriteTables(t *testing.T) {
	tables := []*report.Table{
		{Title: "First", Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}},
		{Title: "Second", Headers: []string{"c"}, Rows: [][]string{{"3"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTables(&buf, FormatCSV, tables))
	assert.Equal(t, "a,b\n1,2\n\nc\n3\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteTables(&buf, FormatJSON, tables))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Second", decoded[1]["title"])

	path := filepath.Join(t.TempDir(), "tables.xlsx")
	require.NoError(t, WriteTablesFile(path, tables))
	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"First", "Second"}, wb.GetSheetList())
}
