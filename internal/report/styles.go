// SPDX-License-Identifier: MPL-2.0

package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color palette shared by every piece of taskwave output. Tuned for dark
// terminal backgrounds.
const (
	// ColorPrimary is purple: titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray: secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber: skipped tasks and warnings.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue: task names and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray: details.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

// Styles are the lipgloss styles bound to one output's renderer.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Task      lipgloss.Style
	Detail    lipgloss.Style
	Highlight lipgloss.Style
}

// NewStyles builds the palette for w. Colors are only emitted when w is a
// terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	if !IsTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Subtitle:  r.NewStyle().Foreground(ColorMuted),
		Success:   r.NewStyle().Foreground(ColorSuccess),
		Error:     r.NewStyle().Bold(true).Foreground(ColorError),
		Warning:   r.NewStyle().Foreground(ColorWarning),
		Task:      r.NewStyle().Bold(true).Foreground(ColorHighlight),
		Detail:    r.NewStyle().Foreground(ColorVerbose),
		Highlight: r.NewStyle().Foreground(ColorHighlight),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
