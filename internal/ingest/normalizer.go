package ingest

import (
	"leaddistributor/pkg/models"
)

// NormalizeRow converts one validated raw row into its canonical
// record. rowNum is the 1-based position of the row in the source
// file. Deterministic and total for rows that passed validation.
func NormalizeRow(row RawRow, header []string, rowNum int) models.CanonicalRecord {
	return models.CanonicalRecord{
		FirstName:   cell(row, header, colFirstName),
		Phone:       cell(row, header, colPhone),
		Notes:       cell(row, header, colNotes),
		OriginalRow: rowNum,
	}
}

// NormalizeTable maps every row of a validated table in order.
func NormalizeTable(t *Table) []models.CanonicalRecord {
	records := make([]models.CanonicalRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		records = append(records, NormalizeRow(row, t.Header, i+1))
	}
	return records
}
