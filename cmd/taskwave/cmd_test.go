// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/taskwave/taskwave/internal/config"
	"github.com/taskwave/taskwave/internal/engine"
	"github.com/taskwave/taskwave/internal/issue"
	"github.com/taskwave/taskwave/internal/testutil"
	"github.com/taskwave/taskwave/pkg/taskfile"

	"github.com/charmbracelet/fang"
)

type (
	// staticConfig is a ConfigProvider returning a fixed configuration.
	staticConfig struct {
		cfg *config.Config
		err error
	}

	// lockedBuffer serializes writes from concurrently running tasks.
	lockedBuffer struct {
		mu  sync.Mutex
		buf bytes.Buffer
	}

	cliResult struct {
		stdout string
		stderr string
		err    error
	}
)

func (s *staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func virtualConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DefaultRuntime = taskfile.RuntimeVirtual
	cfg.MaxParallel = 2
	return cfg
}

// writeTaskfile writes content as taskwave.cue in a fresh directory and
// returns its path.
func writeTaskfile(t *testing.T, content string) string {
	t.Helper()

	return testutil.TempFile(t, taskfile.DefaultFileName, content)
}

// runCLI executes the command tree in-process against the task file at path.
func runCLI(t *testing.T, path string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr lockedBuffer
	app := NewApp(Dependencies{
		Config: &staticConfig{cfg: virtualConfig()},
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	})

	root := NewRootCommand(app)
	root.SetArgs(append([]string{"--file", path}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

const diamondTaskfile = `
tasks: [
	{name: "a", description: "First", command: "echo ran-a"},
	{name: "b", after: ["a"], command: "echo ran-b"},
	{name: "c", after: ["a"], command: "echo ran-c"},
	{name: "d", after: ["b", "c"], command: "echo ran-d $1"},
	{name: "e", command: "echo ran-e"},
]
`

// executedLine matches output written by a diamond task's command, as
// opposed to the command text shown in a plan listing.
var executedLine = regexp.MustCompile(`(?m)^ran-[a-e]\b`)

func TestRun_Diamond(t *testing.T) {
	t.Parallel()

	res := runCLI(t, writeTaskfile(t, diamondTaskfile), "run", "d", "extra")
	if res.err != nil {
		t.Fatalf("run d: %v\nstderr: %s", res.err, res.stderr)
	}

	out := res.stdout
	pos := func(s string) int {
		t.Helper()
		i := strings.Index(out, s)
		if i < 0 {
			t.Fatalf("output missing %q:\n%s", s, out)
		}
		return i
	}
	a, b, c, d := pos("ran-a\n"), pos("ran-b\n"), pos("ran-c\n"), pos("ran-d extra\n")
	if a > b || a > c || b > d || c > d {
		t.Errorf("tasks ran out of dependency order:\n%s", out)
	}
	if strings.Contains(out, "ran-e") {
		t.Errorf("task outside the closure ran:\n%s", out)
	}
	if !strings.Contains(out, "4 succeeded, 0 failed, 0 skipped") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestRun_FailureExitCode(t *testing.T) {
	t.Parallel()

	path := writeTaskfile(t, `
tasks: [
	{name: "a", command: "echo ran-a"},
	{name: "b", after: ["a"], command: "exit 3"},
	{name: "c", after: ["a"], command: "echo ran-c"},
	{name: "d", after: ["b", "c"], command: "echo ran-d"},
]
`)
	res := runCLI(t, path, "run", "d")

	if got := exitCodeFor(res.err); got != 3 {
		t.Errorf("exit code = %d, want 3 (first failure)", got)
	}
	if !errors.Is(res.err, engine.ErrRunFailed) {
		t.Errorf("error = %v, want ErrRunFailed in chain", res.err)
	}
	if classifyError(res.err) != issue.CommandFailedId {
		t.Errorf("classifyError = %d, want CommandFailedId", classifyError(res.err))
	}
	if strings.Contains(res.stdout, "ran-d") {
		t.Errorf("dependent of the failed task ran:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "1 failed, 1 skipped") {
		t.Errorf("missing summary:\n%s", res.stdout)
	}
}

func TestRun_StructuralErrorsRunNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		target  string
		want    issue.Id
	}{
		{
			name:    "unknown target",
			content: diamondTaskfile,
			target:  "missing",
			want:    issue.TaskNotFoundId,
		},
		{
			name: "cycle",
			content: `
tasks: [
	{name: "a", after: ["b"], command: "echo ran-a"},
	{name: "b", after: ["a"], command: "echo ran-b"},
]
`,
			target: "a",
			want:   issue.DependencyCycleId,
		},
		{
			name: "unknown reference",
			content: `
tasks: [
	{name: "a", after: ["ghost"], command: "echo ran-a"},
]
`,
			target: "a",
			want:   issue.UnknownReferenceId,
		},
		{
			name: "duplicate task",
			content: `
tasks: [
	{name: "a", command: "echo ran-a"},
	{name: "a", command: "echo ran-a"},
]
`,
			target: "a",
			want:   issue.DuplicateTaskId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, writeTaskfile(t, tt.content), "run", tt.target)
			if res.err == nil {
				t.Fatal("run should fail")
			}
			if got := exitCodeFor(res.err); got != 1 {
				t.Errorf("exit code = %d, want 1", got)
			}
			if got := classifyError(res.err); got != tt.want {
				t.Errorf("classifyError = %d, want %d (%v)", got, tt.want, res.err)
			}
			if strings.Contains(res.stdout, "ran-") {
				t.Errorf("a command ran:\n%s", res.stdout)
			}
		})
	}
}

func TestRun_UnknownTargetNamesIdentifier(t *testing.T) {
	t.Parallel()

	res := runCLI(t, writeTaskfile(t, diamondTaskfile), "run", "deploy")
	if res.err == nil || !strings.Contains(res.err.Error(), `"deploy"`) {
		t.Errorf("error = %v, want it to name the target", res.err)
	}
}

func TestRun_EnvOverrideAndRuntimeFlag(t *testing.T) {
	t.Parallel()

	path := writeTaskfile(t, `
env: {GREETING: "hello"}
tasks: [
	{name: "greet", command: "echo \"$GREETING $1\""},
]
`)
	res := runCLI(t, path, "run", "--env", "GREETING=hi", "--runtime", "virtual", "-j", "1", "greet", "world")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if !strings.Contains(res.stdout, "hi world\n") {
		t.Errorf("stdout = %q, want override applied", res.stdout)
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	t.Parallel()

	path := writeTaskfile(t, diamondTaskfile)

	res := runCLI(t, path, "run", "--runtime", "container", "a")
	if classifyError(res.err) != issue.InvalidRuntimeModeId {
		t.Errorf("--runtime container: error = %v", res.err)
	}

	res = runCLI(t, path, "run", "--env", "NOEQUALS", "a")
	if res.err == nil || !strings.Contains(res.err.Error(), "KEY=VALUE") {
		t.Errorf("--env NOEQUALS: error = %v", res.err)
	}

	res = runCLI(t, path, "run", "-j", "-1", "a")
	if res.err == nil || !strings.Contains(res.err.Error(), "max-parallel") {
		t.Errorf("-j -1: error = %v", res.err)
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	res := runCLI(t, writeTaskfile(t, diamondTaskfile), "run", "--dry-run", "d")
	if res.err != nil {
		t.Fatalf("dry run: %v", res.err)
	}
	for _, want := range []string{"Dry Run", "Target: d", "Tasks: 4", "Wave 1", "Wave 3", "echo ran-d $1"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("dry run output missing %q:\n%s", want, res.stdout)
		}
	}
	if executedLine.MatchString(res.stdout) {
		t.Errorf("dry run executed a command:\n%s", res.stdout)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	path := writeTaskfile(t, diamondTaskfile)

	for _, args := range [][]string{{"list"}, {"run"}} {
		res := runCLI(t, path, args...)
		if got := exitCodeFor(res.err); got != 1 {
			t.Errorf("%v: exit code = %d, want 1", args, got)
		}
		want := "Available Tasks\n  a - First\n  b\n  c\n  d\n  e\n"
		if res.stdout != want {
			t.Errorf("%v: stdout = %q, want %q", args, res.stdout, want)
		}
	}
}

func TestList_MissingTaskfile(t *testing.T) {
	t.Parallel()

	res := runCLI(t, filepath.Join(t.TempDir(), "taskwave.cue"), "list")
	if classifyError(res.err) != issue.TaskfileNotFoundId {
		t.Errorf("error = %v, want TaskfileNotFoundId", res.err)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	path := writeTaskfile(t, diamondTaskfile)

	res := runCLI(t, path, "export")
	if res.err != nil {
		t.Fatalf("export: %v", res.err)
	}
	var records []taskfile.ExportRecord
	if err := json.Unmarshal([]byte(res.stdout), &records); err != nil {
		t.Fatalf("export output is not JSON: %v\n%s", err, res.stdout)
	}
	if len(records) != 5 || records[0].Name != "a" || records[3].Name != "d" {
		t.Errorf("records = %+v", records)
	}
	if got := records[3].After; len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("d.after = %v, want [b c]", got)
	}

	res = runCLI(t, path, "export", "--format", "toml")
	if res.err != nil {
		t.Fatalf("export toml: %v", res.err)
	}
	if !strings.Contains(res.stdout, "[[tasks]]") {
		t.Errorf("toml output = %q", res.stdout)
	}

	res = runCLI(t, path, "export", "--format", "yaml")
	if !errors.Is(res.err, taskfile.ErrInvalidExportFormat) {
		t.Errorf("yaml: error = %v, want ErrInvalidExportFormat", res.err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	res := runCLI(t, writeTaskfile(t, diamondTaskfile), "validate")
	if res.err != nil {
		t.Fatalf("validate: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "5 task(s), no dependency cycles") {
		t.Errorf("stdout = %q", res.stdout)
	}

	// The cycle is outside any closure a run would select from "c".
	res = runCLI(t, writeTaskfile(t, `
tasks: [
	{name: "a", after: ["b"]},
	{name: "b", after: ["a"]},
	{name: "c", command: "echo ran-c"},
	{name: "v", runtime: "virtual", command: "echo ("},
]
`), "validate")
	if got := exitCodeFor(res.err); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}
	for _, want := range []string{"dependency cycle detected", `task "v"`, "2 issue(s)"} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, res.stderr)
		}
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	res := runCLI(t, writeTaskfile(t, diamondTaskfile), "config", "show")
	if res.err != nil {
		t.Fatalf("config show: %v", res.err)
	}
	for _, want := range []string{"(using defaults)", `default_runtime: "virtual"`, "max_parallel: 2"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestSetup_ConfigErrors(t *testing.T) {
	t.Parallel()

	path := writeTaskfile(t, diamondTaskfile)
	loadErr := errors.New("broken config")

	newApp := func(stderr *lockedBuffer) *App {
		return NewApp(Dependencies{
			Config: &staticConfig{err: loadErr},
			Stdout: &lockedBuffer{},
			Stderr: stderr,
		})
	}

	// Default location: warn and fall back to defaults.
	var stderr lockedBuffer
	app := newApp(&stderr)
	root := NewRootCommand(app)
	root.SetArgs([]string{"--file", path, "validate"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("validate with broken default config: %v", err)
	}
	if !strings.Contains(stderr.String(), "broken config") {
		t.Errorf("stderr = %q, want a warning", stderr.String())
	}

	// Explicit --config: fail.
	app = newApp(&lockedBuffer{})
	root = NewRootCommand(app)
	root.SetArgs([]string{"--file", path, "--config", "custom.cue", "validate"})
	if err := root.ExecuteContext(context.Background()); !errors.Is(err, loadErr) {
		t.Errorf("error = %v, want the load error", err)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []string
		want    map[string]string
		wantErr bool
	}{
		{name: "none", entries: nil, want: nil},
		{name: "single", entries: []string{"A=1"}, want: map[string]string{"A": "1"}},
		{name: "value with equals", entries: []string{"A=x=y"}, want: map[string]string{"A": "x=y"}},
		{name: "empty value", entries: []string{"A="}, want: map[string]string{"A": ""}},
		{name: "later wins", entries: []string{"A=1", "A=2"}, want: map[string]string{"A": "2"}},
		{name: "missing equals", entries: []string{"A"}, wantErr: true},
		{name: "empty key", entries: []string{"=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseEnvOverrides(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEnvOverrides() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseEnvOverrides() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("x"), 1},
		{"exit error", &ExitError{Code: 42}, 42},
		{"wrapped exit error", errors.Join(errors.New("x"), &ExitError{Code: 7}), 7},
		{"zero code", &ExitError{Code: 0, Err: errors.New("x")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{Config: &staticConfig{cfg: virtualConfig()}})
	err := issue.NewErrorContext().
		WithOperation("schedule task").
		WithResource("a").
		WithIssue(issue.DependencyCycleId).
		WithSuggestion("Remove one edge of the reported cycle").
		Wrap(errors.New("dependency cycle detected: a -> b -> a")).
		BuildError()

	var quiet bytes.Buffer
	app.renderError(&quiet, err)
	if !strings.Contains(quiet.String(), "failed to schedule task: a") || strings.Contains(quiet.String(), "Error chain") {
		t.Errorf("non-verbose output = %q", quiet.String())
	}

	app.flags.verbose = true
	var loud bytes.Buffer
	app.renderError(&loud, err)
	for _, want := range []string{"Error chain", "Dependency cycle detected"} {
		if !strings.Contains(loud.String(), want) {
			t.Errorf("verbose output missing %q:\n%s", want, loud.String())
		}
	}

	var silent bytes.Buffer
	app.handleError(&silent, fang.Styles{}, &ExitError{Code: 1})
	if silent.Len() != 0 {
		t.Errorf("reported ExitError was printed again: %q", silent.String())
	}
}
