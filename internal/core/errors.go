package core

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed entry or import payload. The
// operation that raised it aborted without any partial state change.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "validation failed: " + e.Problems[0]
	}
	return fmt.Sprintf("validation failed (%d problems):\n- %s",
		len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// NewValidationError builds a ValidationError from one or more problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// EmptyScopeError reports a report requested over a scope that holds no
// entries. No file is produced.
type EmptyScopeError struct {
	Scope string
}

func (e *EmptyScopeError) Error() string {
	return "no data for scope " + e.Scope
}

// PersistenceError reports a failing storage backend. Reads degrade to the
// backup snapshot instead of surfacing this; writes fail loudly with it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
