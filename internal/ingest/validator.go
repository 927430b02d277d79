package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// Logical column names, matched case-insensitively and ignoring
// surrounding whitespace. The notes header must be present even though
// its cells may be blank.
const (
	colFirstName = "firstname"
	colPhone     = "phone"
	colNotes     = "notes"
)

var requiredColumns = []string{colFirstName, colPhone, colNotes}

// phonePattern admits an optional leading plus followed by digits,
// spaces, hyphens, and parentheses.
var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ValidateTable checks a parsed table against the three-column contract
// and returns every violation found; an empty slice means the table is
// valid. Rules are accumulated, not short-circuited, so the caller sees
// all problems in one pass. The input is never mutated.
func ValidateTable(t *Table) []string {
	if t == nil || len(t.Rows) == 0 {
		return []string{"file contains no data rows"}
	}

	var errs []string

	present := make(map[string]bool, len(t.Header))
	var unexpected []string
	for _, h := range t.Header {
		norm := normalizeHeader(h)
		switch norm {
		case colFirstName, colPhone, colNotes:
			present[norm] = true
		default:
			unexpected = append(unexpected, strings.TrimSpace(h))
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, "missing required column(s): "+strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		errs = append(errs, "unexpected column(s): "+strings.Join(unexpected, ", "))
	}

	// Per-row checks only make sense for columns that exist.
	for i, row := range t.Rows {
		rowNum := i + 1
		if present[colFirstName] {
			if cell(row, t.Header, colFirstName) == "" {
				errs = append(errs, fmt.Sprintf("row %d: firstname is required", rowNum))
			}
		}
		if present[colPhone] {
			phone := cell(row, t.Header, colPhone)
			switch {
			case phone == "":
				errs = append(errs, fmt.Sprintf("row %d: phone is required", rowNum))
			case !phonePattern.MatchString(phone):
				errs = append(errs, fmt.Sprintf("row %d: phone contains invalid characters", rowNum))
			}
		}
	}

	return errs
}

// cell looks up the trimmed value of a logical column in one row,
// tolerating whatever header casing the validator accepted.
func cell(row RawRow, header []string, logical string) string {
	for _, h := range header {
		if normalizeHeader(h) == logical {
			return strings.TrimSpace(row[h])
		}
	}
	return ""
}
