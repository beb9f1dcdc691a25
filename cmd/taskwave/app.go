// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/taskwave/taskwave/internal/config"
	"github.com/taskwave/taskwave/internal/dag"
	"github.com/taskwave/taskwave/internal/issue"
	"github.com/taskwave/taskwave/internal/report"
	"github.com/taskwave/taskwave/pkg/taskfile"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives the App and reads
	// configuration, streams and the logger from it.
	App struct {
		Config ConfigProvider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		flags  globalFlags
		cfg    *config.Config
		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		file       string
		configPath string
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: newLogger(deps.Stderr, false),
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "taskwave",
		Level:  level,
	})
}

// setup loads the configuration and the logger. A broken default config
// file only produces a warning; a file named with --config must load.
func (a *App) setup(ctx context.Context) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		if a.flags.configPath != "" {
			return err
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	if !a.flags.verbose {
		a.flags.verbose = cfg.UI.Verbose
	}
	a.logger = newLogger(a.stderr, a.flags.verbose)
	a.logger.Debug("configuration loaded", "source", cfg.SourcePath, "default_runtime", cfg.DefaultRuntime, "max_parallel", cfg.MaxParallel)
	return nil
}

func (a *App) verbose() bool { return a.flags.verbose }

func (a *App) reporter() *report.Reporter {
	return report.New(a.stdout, report.WithVerbose(a.verbose()))
}

// taskfilePath is --file, else the configured file name in the working
// directory.
func (a *App) taskfilePath() string {
	if a.flags.file != "" {
		return a.flags.file
	}
	return a.cfg.Taskfile
}

func (a *App) loadTaskfile() (*taskfile.Taskfile, error) {
	path := a.taskfilePath()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, issue.NewErrorContext().
			WithOperation("load taskfile").
			WithResource(path).
			WithIssue(issue.TaskfileNotFoundId).
			WithSuggestion("Run taskwave from the project directory").
			WithSuggestion("Pass the file explicitly with --file").
			Wrap(err).
			BuildError()
	}

	tf, err := taskfile.Parse(path)
	if err != nil {
		id := classifyError(err)
		if id == 0 {
			id = issue.TaskfileParseErrorId
		}
		return nil, issue.NewErrorContext().
			WithOperation("load taskfile").
			WithResource(path).
			WithIssue(id).
			WithSuggestion("Run 'taskwave --verbose validate' to see every problem").
			Wrap(err).
			BuildError()
	}

	a.logger.Debug("taskfile loaded", "path", path, "tasks", len(tf.Tasks))
	return tf, nil
}

// plan builds the graph of tf and schedules target. Nothing runs when this
// fails.
func (a *App) plan(tf *taskfile.Taskfile, target string) (*dag.Plan, error) {
	g, err := dag.Build(tf)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("build task graph").
			WithResource(tf.FilePath).
			WithIssue(classifyError(err)).
			Wrap(err).
			BuildError()
	}

	plan, err := dag.Schedule(g, taskfile.TaskName(target))
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("schedule task").
			WithResource(target).
			WithIssue(classifyError(err))
		if errors.Is(err, taskfile.ErrUnknownTask) {
			ctx.WithSuggestion("Run 'taskwave list' to see the declared tasks")
		}
		if errors.Is(err, dag.ErrCycle) {
			ctx.WithSuggestion("Remove one edge of the reported cycle")
		}
		return nil, ctx.Wrap(err).BuildError()
	}

	a.logger.Debug("plan ready", "target", plan.Target, "tasks", plan.Len(), "waves", len(plan.Waves))
	return plan, nil
}

// glamourStyle picks the markdown style for w: plain text when w is not a
// terminal, the configured scheme otherwise.
func (a *App) glamourStyle(w io.Writer) string {
	if !report.IsTerminal(w) {
		return "notty"
	}
	return a.cfg.UI.ColorScheme.GlamourStyle()
}
