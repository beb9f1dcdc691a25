// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/taskwave/taskwave/internal/report"

	"github.com/charmbracelet/lipgloss"
)

// Styles for help text and error output. Task output uses report.Styles,
// which is bound to the writer it renders for.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(report.ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(report.ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(report.ColorWarning)

	// KeyStyle is for configuration keys and task names.
	KeyStyle = lipgloss.NewStyle().
			Foreground(report.ColorHighlight)
)
