// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/taskwave/taskwave/pkg/types"

	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the declared tasks",
		Long: `List every task with its description, in declaration order.

Nothing is executed and the command exits with status 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listTasks(app)
		},
	}
}

func listTasks(app *App) error {
	tf, err := app.loadTaskfile()
	if err != nil {
		return err
	}
	app.reporter().List(tf)
	return &ExitError{Code: types.ExitFailure}
}
