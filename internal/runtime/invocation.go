// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"

	"github.com/taskwave/taskwave/pkg/taskfile"
)

// ErrInvalidCwd is the sentinel error wrapped by InvalidCwdError.
var ErrInvalidCwd = errors.New("invalid working directory")

type (
	// Invocation is everything needed to run one task's command. It is
	// derived from the task definition alone (plus the request's arguments
	// and overrides), so the same task always yields the same invocation.
	Invocation struct {
		Task    taskfile.TaskName
		Command string
		// Dir is the absolute or task-file-relative working directory.
		Dir string
		// Env is the complete environment, host variables included.
		Env map[string]string
		// Args become the positional parameters $1, $2, ...
		Args []string
		// Mode selects the runtime; empty means the registry's fallback.
		Mode taskfile.RuntimeMode
	}

	// InvocationOptions carries the per-request inputs of NewInvocation.
	InvocationOptions struct {
		// HostEnv is the inherited environment in KEY=VALUE form. nil means
		// os.Environ().
		HostEnv []string
		// Overrides are applied last (the CLI's --env flags).
		Overrides map[string]string
		// Args are passed as positional parameters.
		Args []string
	}

	// InvalidCwdError is returned when a task's working directory does not
	// exist or is not a directory.
	InvalidCwdError struct {
		Task taskfile.TaskName
		Dir  string
		Err  error
	}
)

func (e *InvalidCwdError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %q: working directory %s: %v", e.Task, e.Dir, e.Err)
	}
	return fmt.Sprintf("task %q: working directory %s is not a directory", e.Task, e.Dir)
}

// Unwrap returns ErrInvalidCwd for errors.Is() compatibility.
func (e *InvalidCwdError) Unwrap() error { return ErrInvalidCwd }

// NewInvocation maps a task to its invocation. The working directory is
// checked here so a bad cwd fails before any process is spawned.
func NewInvocation(tf *taskfile.Taskfile, t *taskfile.Task, opts InvocationOptions) (*Invocation, error) {
	dir := tf.WorkDir(t)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &InvalidCwdError{Task: t.Name, Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidCwdError{Task: t.Name, Dir: dir}
	}

	host := opts.HostEnv
	if host == nil {
		host = os.Environ()
	}
	env, err := BuildEnv(tf, t, host, opts.Overrides)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Name, err)
	}

	return &Invocation{
		Task:    t.Name,
		Command: t.Command,
		Dir:     dir,
		Env:     env,
		Args:    opts.Args,
		Mode:    t.Runtime,
	}, nil
}
