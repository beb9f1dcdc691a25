// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
)

// Validate checks the table-level invariants and returns every violation
// joined with errors.Join, in declaration order:
//   - each task name is well-formed and unique (DuplicateTaskError)
//   - descriptions are not whitespace-only
//   - runtime modes are known
//   - every after/before entry names a task in the table (UnknownTaskError)
//
// A nil return means the table can be turned into a graph.
func (tf *Taskfile) Validate() error {
	var errs []error

	firstSeen := make(map[TaskName]int, len(tf.Tasks))
	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		if err := t.Name.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tasks[%d]: %w", i, err))
		}
		if first, dup := firstSeen[t.Name]; dup {
			errs = append(errs, &DuplicateTaskError{Name: t.Name, First: first, Second: i})
		} else {
			firstSeen[t.Name] = i
		}
		if err := t.Description.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("task %q: %w", t.Name, err))
		}
		if err := t.Runtime.Validate(); err != nil {
			errs = append(errs, &InvalidRuntimeModeError{Task: t.Name, Value: t.Runtime})
		}
	}

	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		for _, ref := range t.After {
			if _, ok := firstSeen[ref]; !ok {
				errs = append(errs, &UnknownTaskError{Name: ref, Referrer: t.Name, Relation: "after"})
			}
		}
		for _, ref := range t.Before {
			if _, ok := firstSeen[ref]; !ok {
				errs = append(errs, &UnknownTaskError{Name: ref, Referrer: t.Name, Relation: "before"})
			}
		}
	}

	return errors.Join(errs...)
}
