// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/taskwave/taskwave/pkg/taskfile"

	"github.com/spf13/cobra"
)

func newExportCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the task table in a machine-readable format",
		Long: `Print every task (name, description, after, before, cwd) in
declaration order. Nothing is executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := app.loadTaskfile()
			if err != nil {
				return err
			}
			return tf.Export(app.stdout, taskfile.ExportFormat(format))
		},
	}

	cmd.Flags().StringVar(&format, "format", string(taskfile.ExportJSON), "output format (json, toml)")

	return cmd
}
