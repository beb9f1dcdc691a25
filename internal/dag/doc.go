// SPDX-License-Identifier: MPL-2.0

// Package dag turns a task table into a dependency graph and schedules the
// part of it a run needs.
//
// The graph is an arena: tasks live in one slice in declaration order and
// edges are index lists in both directions, so no task record points at
// another. An edge X->Y means X must complete before Y starts; it comes from
// either Y.after containing X or X.before containing Y, and both declarations
// together still give a single edge.
//
// Schedule restricts the graph to the ancestor closure of a target, rejects
// cycles inside that closure, and produces a deterministic topological order
// grouped into waves.
package dag
