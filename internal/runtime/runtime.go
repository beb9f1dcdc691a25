// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"
)

var (
	// ErrUnknownRuntime is returned when an invocation asks for a runtime that
	// is not registered.
	ErrUnknownRuntime = errors.New("unknown runtime")
	// ErrShellNotFound is returned by the native runtime when no shell can be
	// located.
	ErrShellNotFound = errors.New("no shell found")
)

type (
	// IO holds the standard streams handed to a command.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result contains the result of a command execution.
	Result struct {
		// ExitCode is the command's exit status. It is types.ExitFailure when
		// the command could not be started at all.
		ExitCode types.ExitCode
		// Error is set when the runtime failed independently of the command's
		// own exit status (shell missing, script does not parse, ...).
		Error error
	}

	// Runtime executes prepared invocations.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Run executes the invocation and blocks until it finishes.
		Run(ctx context.Context, inv *Invocation, stdio IO) *Result
	}

	// Registry maps runtime modes to runtimes.
	Registry struct {
		runtimes map[taskfile.RuntimeMode]Runtime
		fallback taskfile.RuntimeMode
	}
)

// StdIO returns the process's own standard streams.
func StdIO() IO {
	return IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Success reports whether the command ran and exited with status 0.
func (r *Result) Success() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

// NewRegistry creates a registry with the native and virtual runtimes.
// fallback is used for invocations that do not name a runtime; empty means
// native.
func NewRegistry(native *NativeRuntime, fallback taskfile.RuntimeMode) *Registry {
	if native == nil {
		native = NewNativeRuntime("")
	}
	if fallback == "" {
		fallback = taskfile.RuntimeNative
	}
	r := &Registry{
		runtimes: make(map[taskfile.RuntimeMode]Runtime),
		fallback: fallback,
	}
	r.Register(taskfile.RuntimeNative, native)
	r.Register(taskfile.RuntimeVirtual, NewVirtualRuntime())
	return r
}

// Register adds or replaces the runtime for mode.
func (r *Registry) Register(mode taskfile.RuntimeMode, rt Runtime) {
	r.runtimes[mode] = rt
}

// Get returns the runtime for mode, resolving the empty mode to the fallback.
func (r *Registry) Get(mode taskfile.RuntimeMode) (Runtime, error) {
	if mode == "" {
		mode = r.fallback
	}
	rt, ok := r.runtimes[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuntime, mode)
	}
	return rt, nil
}

// Run executes inv with the runtime it selects.
func (r *Registry) Run(ctx context.Context, inv *Invocation, stdio IO) *Result {
	rt, err := r.Get(inv.Mode)
	if err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: err}
	}
	return rt.Run(ctx, inv, stdio)
}
