// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"
)

const (
	// StatePending means the task has not started.
	StatePending State = iota
	// StateRunning means the task's command is executing.
	StateRunning
	// StateSucceeded means the command exited with status 0, or the task
	// has no command.
	StateSucceeded
	// StateFailed means the command could not run or exited non-zero.
	StateFailed
	// StateSkipped means the task never started because a task it depends
	// on failed or the run was cancelled.
	StateSkipped
)

// ErrInvalidTransition is returned for state changes the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid task state transition")

type (
	// State is the lifecycle state of a TaskRun.
	State int

	// TaskRun is the per-invocation record of one planned task.
	TaskRun struct {
		Task     taskfile.TaskName
		State    State
		ExitCode types.ExitCode
		// Err is set for failed tasks.
		Err      error
		Started  time.Time
		Finished time.Time
	}

	// Transition describes one state change of a TaskRun.
	Transition struct {
		Task     taskfile.TaskName
		From     State
		To       State
		ExitCode types.ExitCode
		Err      error
		// Elapsed is the run time for transitions out of StateRunning.
		Elapsed time.Duration
	}
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateSkipped
}

func allowed(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateRunning || to == StateSkipped
	case StateRunning:
		return to == StateSucceeded || to == StateFailed
	default:
		return false
	}
}

// transition moves the run to state to and stamps the start or finish time.
func (r *TaskRun) transition(to State, now time.Time) (Transition, error) {
	from := r.State
	if !allowed(from, to) {
		return Transition{}, fmt.Errorf("%w for %q: %s -> %s", ErrInvalidTransition, r.Task, from, to)
	}
	r.State = to

	tr := Transition{Task: r.Task, From: from, To: to}
	switch to {
	case StateRunning:
		r.Started = now
	case StateSucceeded, StateFailed:
		r.Finished = now
		tr.Elapsed = r.Duration()
		tr.ExitCode = r.ExitCode
		tr.Err = r.Err
	}
	return tr, nil
}

// Duration returns how long the command ran; zero for tasks that never ran.
func (r *TaskRun) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
