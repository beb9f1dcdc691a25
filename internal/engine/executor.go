// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/taskwave/taskwave/internal/dag"
	taskrt "github.com/taskwave/taskwave/internal/runtime"
	"github.com/taskwave/taskwave/pkg/taskfile"
	"github.com/taskwave/taskwave/pkg/types"
)

type (
	// Observer receives every task state change. Calls are made from a single
	// goroutine, in the order the changes happen.
	Observer interface {
		Observe(Transition)
	}

	// ObserverFunc adapts a function to the Observer interface.
	ObserverFunc func(Transition)

	// Request carries the per-run inputs that are not part of the plan.
	Request struct {
		// Taskfile is the table the plan was built from.
		Taskfile *taskfile.Taskfile
		// Args are passed to the target task only.
		Args []string
		// Env overrides are applied last to every task's environment.
		Env map[string]string
		// HostEnv replaces os.Environ() as the inherited environment when set.
		HostEnv []string
		// IO is handed to every command. Zero value means the process streams.
		IO taskrt.IO
	}

	// Executor runs plans.
	Executor struct {
		runtimes    *taskrt.Registry
		maxParallel int
		logger      *log.Logger
		observer    Observer
		now         func() time.Time
	}

	// Option configures an Executor.
	Option func(*Executor)

	// completion is a finished command reported back to the dispatcher.
	completion struct {
		index    int
		exitCode types.ExitCode
		err      error
	}

	// orderHeap is a min-heap of plan positions.
	orderHeap []int
)

// Observe calls f(t).
func (f ObserverFunc) Observe(t Transition) { f(t) }

// WithMaxParallel caps the number of commands running at once. Values below
// one are ignored.
func WithMaxParallel(n int) Option {
	return func(e *Executor) {
		if n >= 1 {
			e.maxParallel = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers the transition observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates an executor that runs commands through runtimes.
func NewExecutor(runtimes *taskrt.Registry, opts ...Option) *Executor {
	e := &Executor{
		runtimes:    runtimes,
		maxParallel: runtime.NumCPU(),
		logger:      log.New(io.Discard),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runtimes == nil {
		e.runtimes = taskrt.NewRegistry(nil, "")
	}
	return e
}

// Execute runs every task of plan. The returned Result is always complete:
// each planned task ends Succeeded, Failed or Skipped. The error is a
// *RunFailedError when any task did not succeed, or a plain error when the
// inputs are unusable.
//
// Cancelling ctx stops dispatching; tasks not yet started become Skipped and
// running commands receive the cancellation through their runtime.
func (e *Executor) Execute(ctx context.Context, plan *dag.Plan, req Request) (*Result, error) {
	if plan == nil || req.Taskfile == nil {
		return nil, errors.New("execute: plan and task file are required")
	}
	if req.IO.Stdin == nil && req.IO.Stdout == nil && req.IO.Stderr == nil {
		req.IO = taskrt.StdIO()
	}

	d := &dispatch{
		exec:      e,
		plan:      plan,
		req:       req,
		position:  make(map[taskfile.TaskName]int, plan.Len()),
		remaining: make([]int, plan.Len()),
		done:      make(chan completion, plan.Len()),
		result:    &Result{Target: plan.Target, Started: e.now()},
	}
	for i, name := range plan.Order {
		d.position[name] = i
		d.result.Runs = append(d.result.Runs, &TaskRun{Task: name})
		d.remaining[i] = len(plan.Predecessors(name))
	}

	e.logger.Debug("starting run", "target", plan.Target, "tasks", plan.Len(), "waves", len(plan.Waves), "max_parallel", e.maxParallel)

	if err := d.loop(ctx); err != nil {
		return nil, err
	}

	d.result.Finished = e.now()
	e.logger.Debug("run finished",
		"target", plan.Target,
		"succeeded", d.result.Count(StateSucceeded),
		"failed", d.result.Count(StateFailed),
		"skipped", d.result.Count(StateSkipped),
		"duration", d.result.Duration())

	if err := d.result.Err(); err != nil {
		return d.result, err
	}
	return d.result, nil
}

// dispatch holds the state of one Execute call. Only the goroutine running
// loop touches it; workers report back through done.
type dispatch struct {
	exec      *Executor
	plan      *dag.Plan
	req       Request
	position  map[taskfile.TaskName]int
	remaining []int
	ready     orderHeap
	inflight  int
	done      chan completion
	result    *Result
}

func (d *dispatch) loop(ctx context.Context) error {
	workers := pool.New().WithMaxGoroutines(d.exec.maxParallel)
	// done has room for every task, so workers never block on it and
	// workers.Wait cannot deadlock.
	defer workers.Wait()

	for i := range d.plan.Order {
		if d.remaining[i] == 0 {
			heap.Push(&d.ready, i)
		}
	}

	for {
		for d.ready.Len() > 0 && ctx.Err() == nil {
			i := heap.Pop(&d.ready).(int)
			if err := d.start(ctx, workers, i); err != nil {
				return err
			}
		}
		if d.inflight == 0 {
			break
		}
		if err := d.finish(<-d.done); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		d.exec.logger.Warn("run cancelled", "target", d.plan.Target, "err", ctx.Err())
	}
	// Anything still pending was never reachable (cancelled run).
	for _, run := range d.result.Runs {
		if run.State == StatePending {
			if err := d.move(run, StateSkipped); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *dispatch) start(ctx context.Context, workers *pool.Pool, i int) error {
	run := d.result.Runs[i]
	if err := d.move(run, StateRunning); err != nil {
		return err
	}
	d.inflight++

	task, _ := d.plan.Task(run.Task)
	if !task.HasCommand() {
		d.done <- completion{index: i}
		return nil
	}

	var args []string
	if task.Name == d.plan.Target {
		args = d.req.Args
	}

	d.exec.logger.Debug("starting task", "task", task.Name, "wave", d.plan.Wave(task.Name), "runtime", task.Runtime)
	workers.Go(func() {
		d.done <- d.exec.runTask(ctx, d.req, task, args, i)
	})
	return nil
}

func (e *Executor) runTask(ctx context.Context, req Request, task *taskfile.Task, args []string, i int) completion {
	inv, err := taskrt.NewInvocation(req.Taskfile, task, taskrt.InvocationOptions{
		HostEnv:   req.HostEnv,
		Overrides: req.Env,
		Args:      args,
	})
	if err != nil {
		return completion{index: i, exitCode: types.ExitFailure, err: err}
	}

	res := e.runtimes.Run(ctx, inv, req.IO)
	switch {
	case res.Error != nil:
		return completion{index: i, exitCode: types.ExitFailure, err: fmt.Errorf("task %q: %w", task.Name, res.Error)}
	case !res.ExitCode.IsSuccess():
		return completion{index: i, exitCode: res.ExitCode, err: &CommandFailureError{Task: task.Name, ExitCode: res.ExitCode}}
	default:
		return completion{index: i}
	}
}

func (d *dispatch) finish(c completion) error {
	d.inflight--
	run := d.result.Runs[c.index]
	run.ExitCode = c.exitCode
	run.Err = c.err

	if c.err != nil {
		d.exec.logger.Debug("task failed", "task", run.Task, "exit_code", c.exitCode, "err", c.err)
		if err := d.move(run, StateFailed); err != nil {
			return err
		}
		return d.skipDependents(c.index)
	}

	if err := d.move(run, StateSucceeded); err != nil {
		return err
	}
	for _, dep := range d.plan.Dependents(run.Task) {
		j := d.position[dep]
		d.remaining[j]--
		if d.remaining[j] == 0 && d.result.Runs[j].State == StatePending {
			heap.Push(&d.ready, j)
		}
	}
	return nil
}

// skipDependents marks every pending transitive dependent of the task at
// position i Skipped, visiting them in plan order.
func (d *dispatch) skipDependents(i int) error {
	visited := make([]bool, len(d.result.Runs))
	queue := &orderHeap{}
	push := func(from int) {
		for _, dep := range d.plan.Dependents(d.result.Runs[from].Task) {
			if j := d.position[dep]; !visited[j] {
				visited[j] = true
				heap.Push(queue, j)
			}
		}
	}
	push(i)

	for queue.Len() > 0 {
		j := heap.Pop(queue).(int)
		run := d.result.Runs[j]
		switch run.State {
		case StatePending:
			if err := d.move(run, StateSkipped); err != nil {
				return err
			}
		case StateRunning:
			return fmt.Errorf("dependent %q of failed task %q is running", run.Task, d.result.Runs[i].Task)
		}
		push(j)
	}
	return nil
}

func (d *dispatch) move(run *TaskRun, to State) error {
	tr, err := run.transition(to, d.exec.now())
	if err != nil {
		return err
	}
	if d.exec.observer != nil {
		d.exec.observer.Observe(tr)
	}
	return nil
}

func (h orderHeap) Len() int           { return len(h) }
func (h orderHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h orderHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *orderHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *orderHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
