// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"fmt"
	"slices"

	"github.com/taskwave/taskwave/pkg/taskfile"
)

// Graph is the validated, immutable dependency graph of a task table.
type Graph struct {
	// tasks is the arena, in declaration order. A task's position is its
	// declaration index and doubles as the scheduling tie-breaker.
	tasks []*taskfile.Task
	index map[taskfile.TaskName]int
	// succ[i] holds the tasks that wait for i; pred[i] the tasks i waits for.
	// Both are sorted by declaration index and free of duplicates.
	succ [][]int
	pred [][]int
}

// Build validates tf and builds its graph. Validation (unique names,
// resolvable after/before references) always runs first, so a table with
// structural errors never yields a graph, whether or not anything is run.
func Build(tf *taskfile.Taskfile) (*Graph, error) {
	if tf == nil {
		return nil, fmt.Errorf("nil task table")
	}
	if err := tf.Validate(); err != nil {
		return nil, err
	}

	n := len(tf.Tasks)
	g := &Graph{
		tasks: make([]*taskfile.Task, n),
		index: make(map[taskfile.TaskName]int, n),
		succ:  make([][]int, n),
		pred:  make([][]int, n),
	}
	for i := range tf.Tasks {
		g.tasks[i] = &tf.Tasks[i]
		g.index[tf.Tasks[i].Name] = i
	}

	// after and before feed the same edge set.
	edges := make(map[[2]int]struct{})
	addEdge := func(from, to int) {
		key := [2]int{from, to}
		if _, seen := edges[key]; seen {
			return
		}
		edges[key] = struct{}{}
		g.succ[from] = append(g.succ[from], to)
		g.pred[to] = append(g.pred[to], from)
	}

	for i, t := range g.tasks {
		for _, name := range t.After {
			addEdge(g.index[name], i)
		}
		for _, name := range t.Before {
			addEdge(i, g.index[name])
		}
	}

	for i := range n {
		slices.Sort(g.succ[i])
		slices.Sort(g.pred[i])
	}

	return g, nil
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.tasks) }

// Task returns the definition of the named task.
func (g *Graph) Task(name taskfile.TaskName) (*taskfile.Task, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.tasks[i], true
}

// Has reports whether the graph contains the named task.
func (g *Graph) Has(name taskfile.TaskName) bool {
	_, ok := g.index[name]
	return ok
}

// Names returns every task name in declaration order.
func (g *Graph) Names() []taskfile.TaskName {
	return g.names(allIndices(len(g.tasks)))
}

// Predecessors returns the tasks that must complete before name, in
// declaration order.
func (g *Graph) Predecessors(name taskfile.TaskName) []taskfile.TaskName {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.names(g.pred[i])
}

// Successors returns the tasks that wait for name, in declaration order.
func (g *Graph) Successors(name taskfile.TaskName) []taskfile.TaskName {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.names(g.succ[i])
}

// HasEdge reports whether from must complete before to.
func (g *Graph) HasEdge(from, to taskfile.TaskName) bool {
	fi, ok := g.index[from]
	if !ok {
		return false
	}
	ti, ok := g.index[to]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(g.succ[fi], ti)
	return found
}

func (g *Graph) names(indices []int) []taskfile.TaskName {
	out := make([]taskfile.TaskName, len(indices))
	for k, i := range indices {
		out[k] = g.tasks[i].Name
	}
	return out
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
