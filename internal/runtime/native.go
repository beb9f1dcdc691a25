// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/taskwave/taskwave/pkg/types"
)

// shellArgZero is passed as $0 to POSIX shells.
const shellArgZero = "taskwave"

// NativeRuntime executes commands using the system shell.
type NativeRuntime struct {
	// Shell overrides shell detection.
	Shell string
}

// NewNativeRuntime creates a native runtime. An empty shell means detect.
func NewNativeRuntime(shell string) *NativeRuntime {
	return &NativeRuntime{Shell: shell}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string { return "native" }

// Run executes the command through the shell. The command inherits only
// inv.Env, and runs in inv.Dir.
func (r *NativeRuntime) Run(ctx context.Context, inv *Invocation, stdio IO) *Result {
	shell, err := r.shell(inv.Env)
	if err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: err}
	}

	cmd := exec.CommandContext(ctx, shell, shellArgs(shell, inv.Command, inv.Args)...)
	cmd.Dir = inv.Dir
	cmd.Env = EnvToSlice(inv.Env)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	return exitResult(cmd.Run())
}

func exitResult(err error) *Result {
	if err == nil {
		return &Result{}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 means the process was killed by a signal.
		if code := exitErr.ExitCode(); code >= 0 {
			return &Result{ExitCode: types.ExitCode(code)}
		}
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("command terminated: %w", err)}
	}
	return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("failed to execute command: %w", err)}
}

// shell picks the configured shell, then $SHELL from the task environment,
// then bash or sh from PATH. On Windows it prefers PowerShell over cmd.
func (r *NativeRuntime) shell(env map[string]string) (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	if goruntime.GOOS == "windows" {
		for _, name := range []string{"pwsh", "powershell", "cmd"} {
			if p, err := exec.LookPath(name); err == nil {
				return p, nil
			}
		}
		return "", ErrShellNotFound
	}

	if s := env["SHELL"]; s != "" {
		return s, nil
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s, nil
	}
	for _, name := range []string{"bash", "sh"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrShellNotFound
}

// shellArgs builds the argument vector for running script with args as its
// positional parameters:
//   - POSIX shells: -c script taskwave args...
//   - PowerShell: -NoProfile -Command script args... ($args)
//   - cmd: /C script (positional arguments are not supported)
func shellArgs(shell, script string, args []string) []string {
	base := filepath.Base(shell)
	if i := strings.LastIndex(base, `\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	switch base {
	case "cmd":
		return []string{"/C", script}
	case "powershell", "pwsh":
		return append([]string{"-NoProfile", "-Command", script}, args...)
	default:
		return append([]string{"-c", script, shellArgZero}, args...)
	}
}
