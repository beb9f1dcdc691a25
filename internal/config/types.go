// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/taskwave/taskwave/pkg/taskfile"
)

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark style.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light style.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the markdown rendering style.
	ColorScheme string

	// Config holds the application configuration.
	Config struct {
		// DefaultRuntime applies to tasks without a runtime field.
		DefaultRuntime taskfile.RuntimeMode `json:"default_runtime" mapstructure:"default_runtime"`
		// Shell overrides native shell detection.
		Shell string `json:"shell" mapstructure:"shell"`
		// MaxParallel caps concurrently running commands.
		MaxParallel int `json:"max_parallel" mapstructure:"max_parallel"`
		// Taskfile is the file name looked up when --file is not given.
		Taskfile string `json:"taskfile" mapstructure:"taskfile"`
		// UI configures output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// SourcePath is the file the configuration was read from; empty when
		// only defaults and environment variables apply.
		SourcePath string `json:"-" mapstructure:"-"`
	}

	// UIConfig configures user-facing output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: taskfile.RuntimeNative,
		MaxParallel:    runtime.NumCPU(),
		Taskfile:       taskfile.DefaultFileName,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate checks the color scheme.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected auto, dark or light)", ErrInvalidColorScheme, string(c))
	}
}

// GlamourStyle maps the scheme onto a glamour standard style name.
func (c ColorScheme) GlamourStyle() string {
	switch c {
	case ColorSchemeDark:
		return "dark"
	case ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// Validate re-checks the constraints of the CUE schema. Environment
// overrides reach Viper without passing through CUE, so this runs after every
// load.
func (c *Config) Validate() error {
	var errs []error
	if err := c.DefaultRuntime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default_runtime: %w", err))
	}
	if c.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("max_parallel: must be at least 1, got %d", c.MaxParallel))
	}
	if c.Taskfile == "" {
		errs = append(errs, errors.New("taskfile: must not be empty"))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap exposes ErrInvalidConfig and every field error to errors.Is.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
