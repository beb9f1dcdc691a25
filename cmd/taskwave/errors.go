// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/taskwave/taskwave/internal/config"
	"github.com/taskwave/taskwave/internal/dag"
	"github.com/taskwave/taskwave/internal/engine"
	"github.com/taskwave/taskwave/internal/issue"
	taskrt "github.com/taskwave/taskwave/internal/runtime"
	"github.com/taskwave/taskwave/pkg/taskfile"

	"github.com/charmbracelet/fang"
)

// classifyError maps an error to the issue catalogue. Specific causes win
// over the generic run failure, so a run that failed on a missing directory
// points at InvalidCwdId. It returns 0 when no entry applies.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	var unknown *taskfile.UnknownTaskError
	switch {
	case errors.Is(err, dag.ErrCycle):
		return issue.DependencyCycleId
	case errors.Is(err, taskfile.ErrDuplicateTask):
		return issue.DuplicateTaskId
	case errors.As(err, &unknown):
		if unknown.Referrer == "" {
			return issue.TaskNotFoundId
		}
		return issue.UnknownReferenceId
	case errors.Is(err, taskrt.ErrInvalidCwd):
		return issue.InvalidCwdId
	case errors.Is(err, taskrt.ErrShellNotFound):
		return issue.ShellNotFoundId
	case errors.Is(err, taskfile.ErrInvalidRuntimeMode), errors.Is(err, taskrt.ErrUnknownRuntime):
		return issue.InvalidRuntimeModeId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	case errors.Is(err, engine.ErrCommandFailed), errors.Is(err, engine.ErrRunFailed):
		return issue.CommandFailedId
	default:
		return 0
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// handleError is the fang error handler. ExitErrors without a cause were
// already reported by the command that returned them.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	a.renderError(w, err)
}

// renderError prints err and, in verbose mode, the matching catalogue entry.
func (a *App) renderError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose()))

	if !a.verbose() {
		return
	}
	entry := issue.Get(classifyError(err))
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(a.glamourStyle(w))
	if renderErr != nil {
		a.logger.Warn("failed to render issue catalog entry", "issue", entry.Id(), "err", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}
