// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"
)

var (
	// ErrCommandFailed is the sentinel error wrapped by CommandFailureError.
	ErrCommandFailed = errors.New("command failed")
	// ErrRunFailed is the sentinel error wrapped by RunFailedError.
	ErrRunFailed = errors.New("run failed")
)

type (
	// CommandFailureError reports a command that exited non-zero.
	CommandFailureError struct {
		Task     taskfile.TaskName
		ExitCode types.ExitCode
	}

	// RunFailedError reports a run in which not every planned task succeeded.
	RunFailedError struct {
		Target  taskfile.TaskName
		Failed  []taskfile.TaskName
		Skipped []taskfile.TaskName
		// Causes holds the error of every failed task, in plan order.
		Causes []error
	}
)

func (e *CommandFailureError) Error() string {
	return fmt.Sprintf("task %q exited with status %d", e.Task, e.ExitCode)
}

// Unwrap returns ErrCommandFailed for errors.Is() compatibility.
func (e *CommandFailureError) Unwrap() error { return ErrCommandFailed }

func (e *RunFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run of %q failed", e.Target)
	if len(e.Failed) > 0 {
		fmt.Fprintf(&b, ": %d failed (%s)", len(e.Failed), joinNames(e.Failed))
	}
	if len(e.Skipped) > 0 {
		sep := ", "
		if len(e.Failed) == 0 {
			sep = ": "
		}
		fmt.Fprintf(&b, "%s%d skipped (%s)", sep, len(e.Skipped), joinNames(e.Skipped))
	}
	return b.String()
}

// Unwrap exposes ErrRunFailed and every task failure, so errors.Is and
// errors.As reach e.g. *runtime.InvalidCwdError through a RunFailedError.
func (e *RunFailedError) Unwrap() []error {
	return append([]error{ErrRunFailed}, e.Causes...)
}

func joinNames(names []taskfile.TaskName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
