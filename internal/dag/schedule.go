// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/taskwave/taskwave/pkg/taskfile"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError indicates that the tasks a run needs depend on each other
	// in a loop. Cycle is the loop in execution direction and starts and
	// ends with the same task, e.g. [a b a].
	CycleError struct {
		Cycle []taskfile.TaskName
	}

	// Plan is the execution plan for one target: its ancestor closure in
	// topological order, grouped into waves.
	Plan struct {
		// Target is the requested task.
		Target taskfile.TaskName
		// Order lists the closure in a valid execution order. Ties between
		// tasks that become eligible together go to the one declared first.
		Order []taskfile.TaskName
		// Waves partitions Order. Wave 0 holds tasks without predecessors;
		// a task in wave k has at least one predecessor in wave k-1 and none
		// in wave k or later. No two tasks of a wave depend on each other.
		Waves [][]taskfile.TaskName

		graph  *Graph
		member []bool
		wave   []int
	}

	// color is the DFS visitation state.
	color uint8

	// indexHeap is a min-heap of declaration indices.
	indexHeap []int
)

const (
	unvisited color = iota
	inProgress
	done
)

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = string(n)
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// Closure returns the ancestor closure of target: the target and every task
// reachable from it through predecessor edges, in declaration order.
// An unknown target yields a *taskfile.UnknownTaskError.
func (g *Graph) Closure(target taskfile.TaskName) ([]taskfile.TaskName, error) {
	member, err := g.closure(target)
	if err != nil {
		return nil, err
	}
	return g.names(selected(member)), nil
}

// DetectCycles checks the whole graph, not just one closure. It is what
// `taskwave validate` runs.
func (g *Graph) DetectCycles() error {
	member := make([]bool, len(g.tasks))
	for i := range member {
		member[i] = true
	}
	return g.detectCycle(member)
}

// Schedule computes the plan for target. Nothing outside the ancestor
// closure is inspected beyond the reachability walk, so a cycle elsewhere in
// the table does not prevent running an unrelated target.
func Schedule(g *Graph, target taskfile.TaskName) (*Plan, error) {
	member, err := g.closure(target)
	if err != nil {
		return nil, err
	}
	if err := g.detectCycle(member); err != nil {
		return nil, err
	}

	order := g.topologicalOrder(member)

	p := &Plan{
		Target: target,
		graph:  g,
		member: member,
		wave:   make([]int, len(g.tasks)),
		Order:  g.names(order),
	}

	for _, i := range order {
		w := 0
		for _, pi := range g.pred[i] {
			w = max(w, p.wave[pi]+1)
		}
		p.wave[i] = w
		if w == len(p.Waves) {
			p.Waves = append(p.Waves, nil)
		}
		p.Waves[w] = append(p.Waves[w], g.tasks[i].Name)
	}

	return p, nil
}

func (g *Graph) closure(target taskfile.TaskName) ([]bool, error) {
	start, ok := g.index[target]
	if !ok {
		return nil, &taskfile.UnknownTaskError{Name: target}
	}

	member := make([]bool, len(g.tasks))
	member[start] = true
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.pred[i] {
			if !member[p] {
				member[p] = true
				stack = append(stack, p)
			}
		}
	}
	return member, nil
}

// detectCycle runs a three-color DFS along successor edges restricted to
// member. Roots and neighbours are visited in declaration order so the
// reported cycle is stable across runs.
func (g *Graph) detectCycle(member []bool) error {
	state := make([]color, len(g.tasks))
	var path []int

	var visit func(i int) []int
	visit = func(i int) []int {
		state[i] = inProgress
		path = append(path, i)
		for _, s := range g.succ[i] {
			if !member[s] {
				continue
			}
			switch state[s] {
			case inProgress:
				start := slices.Index(path, s)
				cycle := append(slices.Clone(path[start:]), s)
				return cycle
			case unvisited:
				if cycle := visit(s); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[i] = done
		return nil
	}

	for i := range g.tasks {
		if !member[i] || state[i] != unvisited {
			continue
		}
		if cycle := visit(i); cycle != nil {
			return &CycleError{Cycle: g.names(cycle)}
		}
	}
	return nil
}

// topologicalOrder is Kahn's algorithm over member with a min-heap on
// declaration index, so among eligible tasks the earliest declared goes first.
// The caller guarantees member is acyclic.
func (g *Graph) topologicalOrder(member []bool) []int {
	inDegree := make([]int, len(g.tasks))
	ready := &indexHeap{}
	for i := range g.tasks {
		if !member[i] {
			continue
		}
		for _, p := range g.pred[i] {
			if member[p] {
				inDegree[i]++
			}
		}
		if inDegree[i] == 0 {
			*ready = append(*ready, i)
		}
	}
	heap.Init(ready)

	var order []int
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		for _, s := range g.succ[i] {
			if !member[s] {
				continue
			}
			inDegree[s]--
			if inDegree[s] == 0 {
				heap.Push(ready, s)
			}
		}
	}
	return order
}

// Len returns the number of tasks in the plan.
func (p *Plan) Len() int { return len(p.Order) }

// Contains reports whether name is part of the plan.
func (p *Plan) Contains(name taskfile.TaskName) bool {
	i, ok := p.graph.index[name]
	return ok && p.member[i]
}

// Task returns the definition of a planned task.
func (p *Plan) Task(name taskfile.TaskName) (*taskfile.Task, bool) {
	if !p.Contains(name) {
		return nil, false
	}
	return p.graph.Task(name)
}

// Wave returns the wave index of a planned task, or -1.
func (p *Plan) Wave(name taskfile.TaskName) int {
	if !p.Contains(name) {
		return -1
	}
	return p.wave[p.graph.index[name]]
}

// Predecessors returns the planned tasks name waits for. The closure is
// closed under predecessors, so this equals Graph.Predecessors.
func (p *Plan) Predecessors(name taskfile.TaskName) []taskfile.TaskName {
	if !p.Contains(name) {
		return nil
	}
	return p.graph.Predecessors(name)
}

// Dependents returns the planned tasks that wait for name directly.
func (p *Plan) Dependents(name taskfile.TaskName) []taskfile.TaskName {
	if !p.Contains(name) {
		return nil
	}
	var out []taskfile.TaskName
	for _, s := range p.graph.succ[p.graph.index[name]] {
		if p.member[s] {
			out = append(out, p.graph.tasks[s].Name)
		}
	}
	return out
}

func selected(member []bool) []int {
	var out []int
	for i, ok := range member {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
