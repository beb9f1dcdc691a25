// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	goruntime "runtime"
	"strings"
	"testing"

	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"
)

func newInvocation(t *testing.T, command string, args ...string) *Invocation {
	t.Helper()
	return &Invocation{
		Task:    "test",
		Command: command,
		Dir:     t.TempDir(),
		Env:     SliceToEnv(os.Environ()),
		Args:    args,
	}
}

func TestRuntimes(t *testing.T) {
	t.Parallel()

	runtimes := []Runtime{NewVirtualRuntime()}
	if goruntime.GOOS != "windows" {
		runtimes = append(runtimes, NewNativeRuntime(""))
	}

	tests := []struct {
		name       string
		command    string
		args       []string
		env        map[string]string
		wantCode   types.ExitCode
		wantStdout string
	}{
		{name: "success", command: "echo hello", wantStdout: "hello\n"},
		{name: "exit code", command: "exit 3", wantCode: 3},
		{name: "positional args", command: `echo "$1-$2"`, args: []string{"a", "-v"}, wantStdout: "a--v\n"},
		{name: "env", command: `echo "$GREETING"`, env: map[string]string{"GREETING": "hi"}, wantStdout: "hi\n"},
		{name: "false", command: "false", wantCode: 1},
	}

	for _, rt := range runtimes {
		for _, tt := range tests {
			t.Run(rt.Name()+"/"+tt.name, func(t *testing.T) {
				t.Parallel()

				inv := newInvocation(t, tt.command, tt.args...)
				for k, v := range tt.env {
					inv.Env[k] = v
				}
				var stdout, stderr bytes.Buffer

				res := rt.Run(context.Background(), inv, IO{Stdout: &stdout, Stderr: &stderr})
				if res.Error != nil {
					t.Fatalf("Run() error = %v (stderr %q)", res.Error, stderr.String())
				}
				if res.ExitCode != tt.wantCode {
					t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
				}
				if res.Success() != (tt.wantCode == 0) {
					t.Errorf("Success() = %v", res.Success())
				}
				if tt.wantStdout != "" && stdout.String() != tt.wantStdout {
					t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
				}
			})
		}
	}
}

func TestRuntimes_WorkDir(t *testing.T) {
	t.Parallel()

	inv := newInvocation(t, "pwd")
	var stdout bytes.Buffer

	res := NewVirtualRuntime().Run(context.Background(), inv, IO{Stdout: &stdout})
	if !res.Success() {
		t.Fatalf("Run() = %+v", res)
	}
	if got := strings.TrimSpace(stdout.String()); got != inv.Dir {
		t.Errorf("pwd = %q, want %q", got, inv.Dir)
	}
}

func TestVirtualRuntime_ParseError(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()
	res := rt.Run(context.Background(), newInvocation(t, "echo 'unterminated"), IO{})
	if res.Error == nil || res.ExitCode != types.ExitFailure {
		t.Errorf("Run() = %+v, want parse failure", res)
	}

	if err := rt.Check("ok", "echo fine && ls"); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if err := rt.Check("bad", "if then"); err == nil {
		t.Error("Check() expected syntax error")
	}
}

func TestShellArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell string
		want  []string
	}{
		{shell: "/bin/bash", want: []string{"-c", "s", "taskwave", "a"}},
		{shell: "sh", want: []string{"-c", "s", "taskwave", "a"}},
		{shell: `C:\Windows\System32\cmd.exe`, want: []string{"/C", "s"}},
		{shell: "pwsh.exe", want: []string{"-NoProfile", "-Command", "s", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()

			got := shellArgs(tt.shell, "s", []string{"a"})
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("shellArgs(%q) = %v, want %v", tt.shell, got, tt.want)
			}
		})
	}
}

func TestNativeRuntime_MissingShell(t *testing.T) {
	t.Parallel()

	rt := NewNativeRuntime("/definitely/not/a/shell")
	res := rt.Run(context.Background(), newInvocation(t, "true"), IO{})
	if res.Error == nil || res.ExitCode != types.ExitFailure {
		t.Errorf("Run() = %+v, want start failure", res)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil, taskfile.RuntimeVirtual)

	rt, err := r.Get("")
	if err != nil || rt.Name() != "virtual" {
		t.Errorf("Get(\"\") = %v, %v; want virtual fallback", rt, err)
	}
	if rt, _ := r.Get(taskfile.RuntimeNative); rt.Name() != "native" {
		t.Errorf("Get(native) = %s", rt.Name())
	}

	_, err = r.Get("container")
	if !errors.Is(err, ErrUnknownRuntime) {
		t.Errorf("Get(container) error = %v, want ErrUnknownRuntime", err)
	}

	inv := newInvocation(t, "exit 4")
	inv.Mode = "container"
	if res := r.Run(context.Background(), inv, IO{}); !errors.Is(res.Error, ErrUnknownRuntime) {
		t.Errorf("Run() = %+v", res)
	}

	inv.Mode = ""
	if res := r.Run(context.Background(), inv, IO{}); res.ExitCode != 4 {
		t.Errorf("Run() ExitCode = %d, want 4", res.ExitCode)
	}
}
