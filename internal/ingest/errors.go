package ingest

import (
	"errors"
	"fmt"
)

// ErrNoActiveAgents is returned when a validated upload cannot be
// distributed because the agent directory has no active entries.
var ErrNoActiveAgents = errors.New("no active agents available for distribution")

// ParseError reports a structurally unreadable upload (malformed CSV,
// corrupt spreadsheet container). No partial row sequence survives it.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse failure: %s: %v", e.Reason, e.Err)
	}
	return "parse failure: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError carries every schema violation found in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed with %d error(s)", len(e.Errors))
}

// PersistError reports a create-task failure partway through
// materialization. Created counts how many tasks were already written;
// those remain in place, there is no compensating rollback.
type PersistError struct {
	Created int
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("task persistence failed after %d task(s): %v", e.Created, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
