// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"time"

	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"
)

// Result is the outcome of one Execute call.
type Result struct {
	Target taskfile.TaskName
	// Runs holds one record per planned task, in plan order.
	Runs     []*TaskRun
	Started  time.Time
	Finished time.Time
}

// Run returns the record for name.
func (r *Result) Run(name taskfile.TaskName) (*TaskRun, bool) {
	for _, run := range r.Runs {
		if run.Task == name {
			return run, true
		}
	}
	return nil, false
}

// Succeeded reports whether every planned task succeeded.
func (r *Result) Succeeded() bool {
	for _, run := range r.Runs {
		if run.State != StateSucceeded {
			return false
		}
	}
	return true
}

// Names returns the planned tasks in the given state, in plan order.
func (r *Result) Names(state State) []taskfile.TaskName {
	var out []taskfile.TaskName
	for _, run := range r.Runs {
		if run.State == state {
			out = append(out, run.Task)
		}
	}
	return out
}

// Count returns how many planned tasks ended in state.
func (r *Result) Count(state State) int {
	n := 0
	for _, run := range r.Runs {
		if run.State == state {
			n++
		}
	}
	return n
}

// Duration is the wall time of the whole run.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// ExitCode is the process status for the run: the target's own status, or,
// when the target never ran, the status of the first failed task in plan
// order. Failures without a command status (bad cwd, runtime errors) count
// as types.ExitFailure.
func (r *Result) ExitCode() types.ExitCode {
	target, ok := r.Run(r.Target)
	if ok {
		switch target.State {
		case StateSucceeded:
			return 0
		case StateFailed:
			return failureCode(target)
		}
	}
	for _, run := range r.Runs {
		if run.State == StateFailed {
			return failureCode(run)
		}
	}
	if r.Succeeded() {
		return 0
	}
	return types.ExitFailure
}

// Err returns a *RunFailedError unless every planned task succeeded.
func (r *Result) Err() error {
	if r.Succeeded() {
		return nil
	}
	e := &RunFailedError{
		Target:  r.Target,
		Failed:  r.Names(StateFailed),
		Skipped: r.Names(StateSkipped),
	}
	for _, run := range r.Runs {
		if run.State == StateFailed && run.Err != nil {
			e.Causes = append(e.Causes, run.Err)
		}
	}
	return e
}

func failureCode(run *TaskRun) types.ExitCode {
	if run.ExitCode.IsSuccess() {
		return types.ExitFailure
	}
	return run.ExitCode
}
