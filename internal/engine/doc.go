// SPDX-License-Identifier: MPL-2.0

// Package engine executes a dag.Plan. Tasks start as soon as their own
// predecessors have succeeded, at most MaxParallel at a time. A failure marks
// every pending dependent Skipped; commands that are already running are left
// to finish, and the run's Result is only produced once all of them have.
package engine
