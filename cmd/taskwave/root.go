// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskwave",
		Short: "Run tasks in dependency order",
		Long: TitleStyle.Render("taskwave") + SubtitleStyle.Render(" - run tasks in dependency order") + `

taskwave reads tasks from a CUE file (taskwave.cue by default), orders
them by their after/before constraints and runs only what the requested
task needs. Tasks that do not depend on each other run in parallel.

` + SubtitleStyle.Render("Examples:") + `
  taskwave list                  List the declared tasks
  taskwave run build             Run 'build' and everything it needs
  taskwave run test -count=1     Pass extra arguments to 'test'
  taskwave run --dry-run deploy  Show the waves without running anything
  taskwave export --format toml  Print the task table as TOML`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.flags.file, "file", "f", "", "task file (default is taskwave.cue in the working directory)")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/taskwave/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newListCommand(app),
		newRunCommand(app),
		newExportCommand(app),
		newValidateCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process streams and exits with the status of
// the command. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	os.Exit(exitCodeFor(err))
}
