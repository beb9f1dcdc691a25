// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTask is the sentinel error wrapped by DuplicateTaskError.
	ErrDuplicateTask = errors.New("duplicate task")
	// ErrUnknownTask is the sentinel error wrapped by UnknownTaskError.
	ErrUnknownTask = errors.New("unknown task")
)

type (
	// DuplicateTaskError reports two definitions sharing one name.
	DuplicateTaskError struct {
		Name TaskName
		// First and Second are the zero-based declaration positions.
		First  int
		Second int
	}

	// UnknownTaskError reports a reference to a name absent from the table.
	// Referrer is empty when the name came from a run request rather than an
	// after/before entry.
	UnknownTaskError struct {
		Name     TaskName
		Referrer TaskName
		// Relation is "after" or "before" for table references.
		Relation string
	}
)

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("duplicate task %q (declared at tasks[%d] and tasks[%d])", e.Name, e.First, e.Second)
}

// Unwrap returns ErrDuplicateTask for errors.Is() compatibility.
func (e *DuplicateTaskError) Unwrap() error { return ErrDuplicateTask }

func (e *UnknownTaskError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unknown task %q", e.Name)
	}
	return fmt.Sprintf("task %q: %s references unknown task %q", e.Referrer, e.Relation, e.Name)
}

// Unwrap returns ErrUnknownTask for errors.Is() compatibility.
func (e *UnknownTaskError) Unwrap() error { return ErrUnknownTask }
