// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taskwave/taskwave/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `taskwave config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage taskwave configuration",
		Long: `Manage taskwave configuration.

Configuration is read from the --config file, else from:
  - Linux: ~/.config/taskwave/config.cue
  - macOS: ~/Library/Application Support/taskwave/config.cue
  - Windows: %APPDATA%\taskwave\config.cue
and finally ./config.cue. TASKWAVE_* environment variables override file
values (for example TASKWAVE_MAX_PARALLEL=4).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app)
		},
	})

	return cfgCmd
}

func showConfig(app *App) error {
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	source := SubtitleStyle.Render("(using defaults)")
	if app.cfg.SourcePath != "" {
		source = app.cfg.SourcePath
	}
	fmt.Fprintf(out, "%s: %s\n\n", KeyStyle.Render("Config file"), source)
	fmt.Fprint(out, config.GenerateCUE(app.cfg))
	return nil
}

func showConfigPath(app *App) error {
	path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.flags.configPath})
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintln(app.stdout, path)
		return nil
	}

	path, err = defaultConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, path+SubtitleStyle.Render(" (not created, using defaults)"))
	return nil
}

func initConfig(app *App) error {
	path, err := defaultConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(app.stdout, "Configuration file already exists: %s\n", path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if path, err = config.CreateDefaultConfig(filepath.Dir(path)); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Created configuration file: %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func defaultConfigPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}
