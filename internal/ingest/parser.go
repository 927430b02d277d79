// Package ingest implements the upload pipeline: tabular parsing,
// schema validation, record normalization, distribution, and task
// materialization for one submitted file.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Media types accepted by the parser. Legacy Excel uploads are admitted
// by type and fail as a ParseError if the container is unreadable.
const (
	MediaTypeCSV         = "text/csv"
	MediaTypeCSVAlt      = "application/csv"
	MediaTypeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeLegacyExcel = "application/vnd.ms-excel"
)

// RawRow maps a verbatim column name to the cell value for one source row.
type RawRow map[string]string

// Table is the parsed form of an upload: the header exactly as it
// appeared in the source, plus one RawRow per data row in source order.
type Table struct {
	Header []string
	Rows   []RawRow
}

// SupportedMediaType reports whether the declared type (or, as a
// fallback, the file extension) names a tabular format we can parse.
func SupportedMediaType(mediaType, fileName string) bool {
	switch mediaType {
	case MediaTypeCSV, MediaTypeCSVAlt, MediaTypeXLSX, MediaTypeLegacyExcel:
		return true
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// ParseFile reads the staged upload at path and dispatches on the
// declared media type, falling back to the file extension. The caller
// owns the staging file's lifetime.
func ParseFile(path, mediaType, fileName string) (*Table, error) {
	if isSpreadsheet(mediaType, fileName) {
		return ParseXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Reason: "cannot open staged file", Err: err}
	}
	defer f.Close()
	return ParseCSV(f)
}

func isSpreadsheet(mediaType, fileName string) bool {
	switch mediaType {
	case MediaTypeXLSX, MediaTypeLegacyExcel:
		return true
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// ParseCSV reads delimited text row by row. The first record is the
// header; every data row must have the header's field count, which the
// csv reader enforces.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, &ParseError{Reason: "unreadable header row", Err: err}
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "malformed delimited text", Err: err}
		}
		row := make(RawRow, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseXLSX reads the first sheet of a spreadsheet workbook. Rows
// shorter than the header are padded with empty cells; excelize
// already renders numeric cells as text.
func ParseXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Reason: "unreadable spreadsheet", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: "unreadable sheet " + sheets[0], Err: err}
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	table := &Table{Header: rows[0]}
	for _, record := range rows[1:] {
		row := make(RawRow, len(table.Header))
		for i, col := range table.Header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
