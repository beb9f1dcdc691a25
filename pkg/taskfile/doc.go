// SPDX-License-Identifier: MPL-2.0

// Package taskfile defines the task table consumed by the scheduler and
// executor, and loads it from CUE.
//
// A task file is a CUE document with an ordered list of tasks:
//
//	env: GOFLAGS: "-trimpath"
//
//	tasks: [
//		{name: "deps", command: "go mod download"},
//		{name: "build", command: "go build ./...", after: ["deps"]},
//		{name: "lint", command: "golangci-lint run", before: ["ci"]},
//		{name: "ci", description: "Everything CI runs", after: ["build"]},
//	]
//
// A task without a command is a join point: it succeeds as soon as its
// predecessors have. "after" and "before" describe the same relation from
// either side; X.before=[Y] and Y.after=[X] yield the same single edge.
//
// The decoded Taskfile is treated as immutable. Validate checks the
// table-level invariants (unique names, resolvable references) that the
// schema cannot express.
package taskfile
