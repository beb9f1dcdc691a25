// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/taskwave/taskwave/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE
// handlers. An ExitError with a nil Err has already been reported.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps the error returned by the root command to a process exit
// status.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && !exitErr.Code.IsSuccess() {
		return int(exitErr.Code)
	}
	return int(types.ExitFailure)
}
