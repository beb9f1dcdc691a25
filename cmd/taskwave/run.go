// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskwave/taskwave/internal/engine"
	"github.com/taskwave/taskwave/internal/issue"
	taskrt "github.com/taskwave/taskwave/internal/runtime"
	"github.com/taskwave/taskwave/pkg/taskfile"

	"github.com/spf13/cobra"
)

type runFlags struct {
	runtime     string
	maxParallel int
	env         []string
	dryRun      bool
}

func newRunCommand(app *App) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [task] [args...]",
		Short: "Run a task and everything it depends on",
		Long: `Run a task after every task it transitively depends on.

Only the tasks the target needs are executed. A task starts as soon as
the tasks it runs after have succeeded. When a command fails, the tasks
depending on it are skipped and commands already running finish.

Arguments after the task name are passed to the target task only, as
positional parameters ($1, $2, ...). Flags must come before the task
name. Without a task name, run lists the declared tasks.

The exit status is the target's own status, or the status of the first
failed task when the target was skipped.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), app, flags, args)
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&flags.runtime, "runtime", "", "runtime for tasks that do not set one (native, virtual)")
	cmd.Flags().IntVarP(&flags.maxParallel, "max-parallel", "j", 0, "maximum number of commands running at once (default from config)")
	cmd.Flags().StringArrayVar(&flags.env, "env", nil, "set an environment variable for every task (KEY=VALUE, repeatable)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the execution plan without running anything")

	return cmd
}

func runTask(ctx context.Context, app *App, flags *runFlags, args []string) error {
	if len(args) == 0 {
		return listTasks(app)
	}
	target, extra := args[0], args[1:]

	overrides, err := parseEnvOverrides(flags.env)
	if err != nil {
		return err
	}

	mode := app.cfg.DefaultRuntime
	if flags.runtime != "" {
		mode = taskfile.RuntimeMode(flags.runtime)
	}
	if err := mode.Validate(); err != nil {
		return issue.NewErrorContext().
			WithOperation("select runtime").
			WithResource(string(mode)).
			WithIssue(issue.InvalidRuntimeModeId).
			Wrap(err).
			BuildError()
	}

	maxParallel := app.cfg.MaxParallel
	if flags.maxParallel != 0 {
		maxParallel = flags.maxParallel
	}
	if maxParallel < 1 {
		return fmt.Errorf("--max-parallel must be at least 1, got %d", maxParallel)
	}

	tf, err := app.loadTaskfile()
	if err != nil {
		return err
	}
	plan, err := app.plan(tf, target)
	if err != nil {
		return err
	}

	reporter := app.reporter()
	if flags.dryRun {
		reporter.Plan(plan, extra)
		return nil
	}

	executor := engine.NewExecutor(
		taskrt.NewRegistry(taskrt.NewNativeRuntime(app.cfg.Shell), mode),
		engine.WithMaxParallel(maxParallel),
		engine.WithLogger(app.logger),
		engine.WithObserver(reporter),
	)

	res, err := executor.Execute(ctx, plan, engine.Request{
		Taskfile: tf,
		Args:     extra,
		Env:      overrides,
		IO: taskrt.IO{
			Stdin:  app.stdin,
			Stdout: app.stdout,
			Stderr: app.stderr,
		},
	})
	if res == nil {
		return err
	}

	reporter.Summary(res)
	if err != nil {
		runErr := issue.NewErrorContext().
			WithOperation("run task").
			WithResource(target).
			WithIssue(classifyError(err)).
			Wrap(err).
			BuildError()
		return &ExitError{Code: res.ExitCode(), Err: runErr}
	}
	return nil
}

// parseEnvOverrides turns --env KEY=VALUE entries into a map. Later entries
// win.
func parseEnvOverrides(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q: expected KEY=VALUE", entry)
		}
		env[key] = value
	}
	return env, nil
}
