// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/taskwave/taskwave/pkg/types"
)

const (
	// DefaultFileName is the task file looked up in the working directory.
	DefaultFileName = "taskwave.cue"

	// RuntimeNative runs commands through the host shell.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs commands in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"
)

var (
	// ErrInvalidTaskName is the sentinel error wrapped by InvalidTaskNameError.
	ErrInvalidTaskName = errors.New("invalid task name")
	// ErrInvalidRuntimeMode is the sentinel error wrapped by InvalidRuntimeModeError.
	ErrInvalidRuntimeMode = errors.New("invalid runtime mode")

	taskNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)
)

type (
	// TaskName identifies a task. Names are unique within a Taskfile.
	TaskName string

	// RuntimeMode selects how a task's command is executed. The zero value
	// defers to the configured default.
	RuntimeMode string

	// Task is one task definition.
	Task struct {
		// Name is the unique task identifier.
		Name TaskName `json:"name"`
		// Command is the shell command line. Empty means the task is a
		// no-op join point.
		Command string `json:"command,omitempty"`
		// Description is shown by listings.
		Description types.DescriptionText `json:"description,omitempty"`
		// Cwd is the working directory; relative paths resolve against the
		// task file's directory.
		Cwd string `json:"cwd,omitempty"`
		// Env holds task-level environment variables.
		Env map[string]string `json:"env,omitempty"`
		// EnvFiles are dotenv files loaded before Env, in order.
		EnvFiles []string `json:"env_files,omitempty"`
		// After lists tasks that must finish before this one starts.
		After []TaskName `json:"after,omitempty"`
		// Before lists tasks that may only start after this one finishes.
		Before []TaskName `json:"before,omitempty"`
		// Runtime overrides the configured default runtime.
		Runtime RuntimeMode `json:"runtime,omitempty"`
	}

	// Taskfile is the full, ordered task table.
	Taskfile struct {
		// Env holds variables every task inherits; task-level Env wins.
		Env map[string]string `json:"env,omitempty"`
		// EnvFiles are dotenv files every task loads before its own.
		EnvFiles []string `json:"env_files,omitempty"`
		// Tasks in declaration order.
		Tasks []Task `json:"tasks"`

		// FilePath is where the table was loaded from (empty when built in code).
		FilePath string `json:"-"`
	}

	// InvalidTaskNameError is returned when a TaskName does not match the
	// allowed pattern.
	InvalidTaskNameError struct {
		Value TaskName
	}

	// InvalidRuntimeModeError is returned for runtime values other than
	// native, virtual or empty.
	InvalidRuntimeModeError struct {
		Task  TaskName
		Value RuntimeMode
	}
)

// String returns the name as a plain string.
func (n TaskName) String() string { return string(n) }

// Validate checks the name against the allowed pattern.
func (n TaskName) Validate() error {
	if !taskNamePattern.MatchString(string(n)) {
		return &InvalidTaskNameError{Value: n}
	}
	return nil
}

func (e *InvalidTaskNameError) Error() string {
	return fmt.Sprintf("invalid task name %q: must start with a letter or digit and contain only letters, digits, '_', '.', ':' or '-'", e.Value)
}

// Unwrap returns ErrInvalidTaskName for errors.Is() compatibility.
func (e *InvalidTaskNameError) Unwrap() error { return ErrInvalidTaskName }

// Validate checks the runtime mode. The empty value is valid.
func (m RuntimeMode) Validate() error {
	switch m {
	case "", RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return &InvalidRuntimeModeError{Value: m}
	}
}

func (e *InvalidRuntimeModeError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("invalid runtime mode %q (expected %q or %q)", e.Value, RuntimeNative, RuntimeVirtual)
	}
	return fmt.Sprintf("task %q: invalid runtime mode %q (expected %q or %q)", e.Task, e.Value, RuntimeNative, RuntimeVirtual)
}

// Unwrap returns ErrInvalidRuntimeMode for errors.Is() compatibility.
func (e *InvalidRuntimeModeError) Unwrap() error { return ErrInvalidRuntimeMode }

// HasCommand reports whether the task runs anything. Tasks without a command
// only aggregate their predecessors.
func (t *Task) HasCommand() bool { return t.Command != "" }

// Task returns the task with the given name.
func (tf *Taskfile) Task(name TaskName) (*Task, bool) {
	for i := range tf.Tasks {
		if tf.Tasks[i].Name == name {
			return &tf.Tasks[i], true
		}
	}
	return nil, false
}

// Names returns all task names in declaration order.
func (tf *Taskfile) Names() []TaskName {
	names := make([]TaskName, len(tf.Tasks))
	for i := range tf.Tasks {
		names[i] = tf.Tasks[i].Name
	}
	return names
}

// BaseDir is the directory relative paths are resolved against: the task
// file's directory, or "." for tables built in code.
func (tf *Taskfile) BaseDir() string {
	if tf.FilePath == "" {
		return "."
	}
	return filepath.Dir(tf.FilePath)
}

// Resolve joins a task-file-relative path onto BaseDir. Absolute paths are
// returned unchanged.
func (tf *Taskfile) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(tf.BaseDir(), path)
}

// WorkDir returns the directory the task's command runs in.
func (tf *Taskfile) WorkDir(t *Task) string {
	if t.Cwd == "" {
		return tf.BaseDir()
	}
	return tf.Resolve(t.Cwd)
}
