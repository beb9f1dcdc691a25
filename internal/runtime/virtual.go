// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskwave/taskwave/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes commands with the embedded mvdan/sh interpreter,
// so tasks behave the same on hosts without a POSIX shell.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a virtual runtime.
func NewVirtualRuntime() *VirtualRuntime { return &VirtualRuntime{} }

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string { return "virtual" }

// Check parses script without running it.
func (r *VirtualRuntime) Check(name, script string) error {
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), name); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Run interprets the command.
func (r *VirtualRuntime) Run(ctx context.Context, inv *Invocation, stdio IO) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(inv.Command), string(inv.Task))
	if err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("failed to parse script: %w", err)}
	}

	opts := []interp.RunnerOption{
		interp.Dir(inv.Dir),
		interp.Env(expand.ListEnviron(EnvToSlice(inv.Env)...)),
		interp.StdIO(stdio.Stdin, stdio.Stdout, stdio.Stderr),
	}
	// "--" keeps arguments such as "-v" from being read as shell options.
	if len(inv.Args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, inv.Args...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &Result{ExitCode: types.ExitCode(status)}
		}
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("script execution failed: %w", err)}
	}
	return &Result{}
}
