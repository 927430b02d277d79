package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaddistributor/pkg/models"
)

func TestNormalizeRow(t *testing.T) {
	header := []string{" FIRSTNAME ", "phone", "Notes"}
	row := RawRow{
		" FIRSTNAME ": "  Ana  ",
		"phone":       " +1 555 0001 ",
		"Notes":       "  vip client ",
	}

	rec := NormalizeRow(row, header, 3)
	assert.Equal(t, models.CanonicalRecord{
		FirstName:   "Ana",
		Phone:       "+1 555 0001",
		Notes:       "vip client",
		OriginalRow: 3,
	}, rec)
}

func TestNormalizeTable(t *testing.T) {
	tbl := table(
		[]string{"FirstName", "Phone", "Notes"},
		[]string{"Ana", "5550001", ""},
		[]string{"Ben", "5550002", "callback"},
	)

	records := NormalizeTable(tbl)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].OriginalRow)
	assert.Equal(t, 2, records[1].OriginalRow)
	assert.Equal(t, "Ben", records[1].FirstName)
	assert.Equal(t, "callback", records[1].Notes)
	assert.Equal(t, "", records[0].Notes)
}
