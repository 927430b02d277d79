package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "FirstName,Phone,Notes\nAna,+1 555 0001,call after 5pm\nBen,555 0002,\n"
	tbl, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"FirstName", "Phone", "Notes"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Ana", tbl.Rows[0]["FirstName"])
	assert.Equal(t, "+1 555 0001", tbl.Rows[0]["Phone"])
	assert.Equal(t, "call after 5pm", tbl.Rows[0]["Notes"])
	assert.Equal(t, "", tbl.Rows[1]["Notes"])
}

func TestParseCSVPreservesHeaderVerbatim(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader(" firstName ,PHONE,notes\nAna,5550001,x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{" firstName ", "PHONE", "notes"}, tbl.Header)
}

func TestParseCSVEmpty(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestParseCSVMalformed(t *testing.T) {
	// ragged row: fewer fields than the header
	_, err := ParseCSV(strings.NewReader("FirstName,Phone,Notes\nAna,5550001\n"))
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Error(), "parse failure")
}

func TestParseCSVBareQuote(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("FirstName,Phone,Notes\n\"Ana,5550001,x\nBen\",2,3\n,\n"))
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
}

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	path := filepath.Join(t.TempDir(), "upload.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestParseXLSX(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"FirstName", "Phone", "Notes"},
		{"Ana", "+1 555 0001", "vip"},
		{"Ben", "555 0002"}, // short row padded with empty notes
	})

	tbl, err := ParseXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"FirstName", "Phone", "Notes"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Ana", tbl.Rows[0]["FirstName"])
	assert.Equal(t, "vip", tbl.Rows[0]["Notes"])
	assert.Equal(t, "", tbl.Rows[1]["Notes"])
}

func TestParseXLSXCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	_, err := ParseXLSX(path)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
}

func TestParseFileDispatch(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("FirstName,Phone,Notes\nAna,5550001,\n"), 0o644))

	tbl, err := ParseFile(csvPath, MediaTypeCSV, "contacts.csv")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	xlsxPath := writeXLSX(t, [][]string{{"FirstName", "Phone", "Notes"}, {"Ben", "5550002", ""}})
	tbl, err = ParseFile(xlsxPath, MediaTypeXLSX, "contacts.xlsx")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	// extension fallback when the browser sends a generic type
	tbl, err = ParseFile(xlsxPath, "application/octet-stream", "contacts.xlsx")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
}

func TestSupportedMediaType(t *testing.T) {
	assert.True(t, SupportedMediaType(MediaTypeCSV, "a.bin"))
	assert.True(t, SupportedMediaType(MediaTypeXLSX, "a.bin"))
	assert.True(t, SupportedMediaType(MediaTypeLegacyExcel, "a.bin"))
	assert.True(t, SupportedMediaType("application/octet-stream", "contacts.CSV"))
	assert.True(t, SupportedMediaType("", "contacts.xlsx"))
	assert.False(t, SupportedMediaType("application/pdf", "report.pdf"))
	assert.False(t, SupportedMediaType("text/plain", "notes.txt"))
}
