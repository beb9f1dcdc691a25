// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/taskwave/taskwave/internal/dag"
	taskrt "github.com/taskwave/taskwave/internal/runtime"
	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"

	"github.com/spf13/cobra"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the task file without running anything",
		Long: `Check the task file: schema, unique names, after/before references,
cycles anywhere in the graph and the syntax of commands that run in the
virtual runtime.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(app)
		},
	}
}

func runValidate(app *App) error {
	out, errOut := app.stdout, app.stderr

	fmt.Fprintln(out, TitleStyle.Render("Taskfile Validation"))
	fmt.Fprintf(out, "Path: %s\n\n", app.taskfilePath())

	tf, err := app.loadTaskfile()
	if err != nil {
		return err
	}

	var problems []error
	if g, err := dag.Build(tf); err != nil {
		problems = append(problems, err)
	} else if err := g.DetectCycles(); err != nil {
		problems = append(problems, err)
	}

	virtual := taskrt.NewVirtualRuntime()
	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		mode := t.Runtime
		if mode == "" {
			mode = app.cfg.DefaultRuntime
		}
		if !t.HasCommand() || mode != taskfile.RuntimeVirtual {
			continue
		}
		if err := virtual.Check(t.Name.String(), t.Command); err != nil {
			problems = append(problems, fmt.Errorf("task %q: %w", t.Name, err))
		}
	}

	if len(problems) > 0 {
		for i, p := range problems {
			fmt.Fprintf(errOut, "  %d. %s\n", i+1, p)
		}
		fmt.Fprintf(errOut, "\n%s Validation failed with %d issue(s)\n", ErrorStyle.Render("✗"), len(problems))
		return &ExitError{Code: types.ExitFailure}
	}

	fmt.Fprintf(out, "%s %d task(s), no dependency cycles\n", SuccessStyle.Render("✓"), len(tf.Tasks))
	return nil
}
