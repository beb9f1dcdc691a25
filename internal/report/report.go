// SPDX-License-Identifier: MPL-2.0

// Package report renders task listings, live task status, run summaries and
// dry-run plans.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/taskwave/taskwave/internal/dag"
	"github.com/taskwave/taskwave/internal/engine"
	"github.com/taskwave/taskwave/pkg/taskfile"

	"mvdan.cc/sh/v3/syntax"
)

type (
	// Reporter writes human-readable output to one writer.
	Reporter struct {
		mu      sync.Mutex
		out     io.Writer
		styles  Styles
		verbose bool
	}

	// Option configures a Reporter.
	Option func(*Reporter)
)

// WithVerbose adds dependency and timing details.
func WithVerbose(v bool) Option {
	return func(r *Reporter) { r.verbose = v }
}

// WithStyles overrides the styles derived from the writer.
func WithStyles(s Styles) Option {
	return func(r *Reporter) { r.styles = s }
}

// New creates a reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{out: w, styles: NewStyles(w)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List prints every task with its description, in declaration order.
func (r *Reporter) List(tf *taskfile.Taskfile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, r.styles.Title.Render("Available Tasks"))
	if len(tf.Tasks) == 0 {
		fmt.Fprintln(r.out, r.styles.Subtitle.Render("  (no tasks defined)"))
		return
	}

	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		line := "  " + r.styles.Task.Render(t.Name.String())
		if t.Description != "" {
			line += " - " + r.styles.Detail.Render(t.Description.Summary())
		}
		if r.verbose && len(t.After) > 0 {
			line += " " + r.styles.Subtitle.Render("(after: "+joinNames(t.After)+")")
		}
		fmt.Fprintln(r.out, line)
	}
}

// Observe prints one status line per task state change. It implements
// engine.Observer.
func (r *Reporter) Observe(tr engine.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.styles.Task.Render(tr.Task.String())
	switch tr.To {
	case engine.StateRunning:
		fmt.Fprintf(r.out, "%s %s\n", r.styles.Highlight.Render("▶"), name)
	case engine.StateSucceeded:
		fmt.Fprintf(r.out, "%s %s %s\n", r.styles.Success.Render("✓"), name, r.styles.Subtitle.Render(formatDuration(tr.Elapsed)))
	case engine.StateFailed:
		reason := fmt.Sprintf("exited with status %d", tr.ExitCode)
		var cfe *engine.CommandFailureError
		if tr.Err != nil && !errors.As(tr.Err, &cfe) {
			reason = tr.Err.Error()
		}
		fmt.Fprintf(r.out, "%s %s %s %s\n", r.styles.Error.Render("✗"), name, r.styles.Error.Render(reason), r.styles.Subtitle.Render(formatDuration(tr.Elapsed)))
	case engine.StateSkipped:
		fmt.Fprintf(r.out, "%s %s %s\n", r.styles.Warning.Render("-"), name, r.styles.Warning.Render("skipped"))
	}
}

// Summary prints the aggregate line of a run.
func (r *Reporter) Summary(res *engine.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%d succeeded, %d failed, %d skipped",
		res.Count(engine.StateSucceeded), res.Count(engine.StateFailed), res.Count(engine.StateSkipped))
	style := r.styles.Success
	if !res.Succeeded() {
		style = r.styles.Error
	}
	fmt.Fprintf(r.out, "%s %s\n", style.Render(line), r.styles.Subtitle.Render("in "+formatDuration(res.Duration())))

	if r.verbose {
		for _, run := range res.Runs {
			fmt.Fprintf(r.out, "  %-10s %s %s\n", run.State, run.Task, r.styles.Subtitle.Render(formatDuration(run.Duration())))
		}
	}
}

// Plan prints the waves of plan without running anything. args are the
// extra arguments that would reach the target.
func (r *Reporter) Plan(plan *dag.Plan, args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, r.styles.Title.Render("Dry Run"))
	fmt.Fprintf(r.out, "  %s %s\n", r.styles.Highlight.Render("Target:"), plan.Target)
	if len(args) > 0 {
		fmt.Fprintf(r.out, "  %s %s\n", r.styles.Highlight.Render("Args:"), quoteArgs(args))
	}
	fmt.Fprintf(r.out, "  %s %d\n", r.styles.Highlight.Render("Tasks:"), plan.Len())

	for i, wave := range plan.Waves {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.Subtitle.Render(fmt.Sprintf("  Wave %d", i+1)))
		for _, name := range wave {
			t, _ := plan.Task(name)
			fmt.Fprintf(r.out, "    %s", r.styles.Task.Render(name.String()))
			if preds := plan.Predecessors(name); len(preds) > 0 {
				fmt.Fprintf(r.out, " %s", r.styles.Subtitle.Render("(after: "+joinNames(preds)+")"))
			}
			fmt.Fprintln(r.out)
			if !t.HasCommand() {
				fmt.Fprintf(r.out, "      %s\n", r.styles.Detail.Render("(no command)"))
				continue
			}
			for line := range strings.SplitSeq(t.Command, "\n") {
				fmt.Fprintf(r.out, "      %s\n", r.styles.Detail.Render(line))
			}
			if r.verbose {
				if t.Cwd != "" {
					fmt.Fprintf(r.out, "      %s %s\n", r.styles.Highlight.Render("cwd:"), t.Cwd)
				}
				if t.Runtime != "" {
					fmt.Fprintf(r.out, "      %s %s\n", r.styles.Highlight.Render("runtime:"), t.Runtime)
				}
			}
		}
	}
}

// quoteArgs renders args the way a shell user would type them.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", a)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func joinNames(names []taskfile.TaskName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
