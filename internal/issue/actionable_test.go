// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load taskfile"},
			expected: "failed to load taskfile",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "load taskfile",
				Resource:  "./taskwave.cue",
			},
			expected: "failed to load taskfile: ./taskwave.cue",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load taskfile",
				Resource:  "./taskwave.cue",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load taskfile: ./taskwave.cue: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("specific error")
	wrapped := &ActionableError{Operation: "test", Cause: fmt.Errorf("outer: %w", cause)}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	base := errors.New("no such file")
	err := &ActionableError{
		Operation:   "load taskfile",
		Resource:    "taskwave.cue",
		Suggestions: []string{"Check the path", "Use --file"},
		Cause:       fmt.Errorf("open: %w", base),
	}

	plain := err.Format(false)
	want := "failed to load taskfile: taskwave.cue: open: no such file\n\n  • Check the path\n  • Use --file"
	if plain != want {
		t.Errorf("Format(false) = %q, want %q", plain, want)
	}

	verbose := err.Format(true)
	for _, s := range []string{"Error chain:", "  1. open: no such file", "  2. no such file"} {
		if !strings.Contains(verbose, s) {
			t.Errorf("Format(true) missing %q:\n%s", s, verbose)
		}
	}
}

func TestActionableError_FormatJoined(t *testing.T) {
	t.Parallel()

	err := WrapWithOperation(errors.Join(errors.New("first"), errors.New("second")), "validate taskfile")
	out := err.Format(true)

	for _, s := range []string{"     1. first", "     1. second"} {
		if !strings.Contains(out, s) {
			t.Errorf("Format(true) missing %q:\n%s", s, out)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("run task").
		WithResource("build").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(CommandFailedId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "run task" || ae.Resource != "build" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if len(ae.Suggestions) != 3 {
		t.Errorf("Suggestions = %v, want 3 entries", ae.Suggestions)
	}
	if ae.Issue != CommandFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, CommandFailedId)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap the cause")
	}
	if !ae.HasSuggestions() {
		t.Error("HasSuggestions() = false")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if ae := NewErrorContext().WithResource("x").Build(); ae != nil {
		t.Errorf("Build() = %v, want nil", ae)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	ae := WrapWithOperation(errors.New("bad"), "parse config")
	if got := ae.Error(); got != "failed to parse config: bad" {
		t.Errorf("Error() = %q", got)
	}
}
