// SPDX-License-Identifier: MPL-2.0

// Package runtime turns a task definition into an Invocation (working
// directory, environment, command line and arguments) and runs it through
// one of the command runtimes:
//
//   - native: the host shell via os/exec
//   - virtual: the embedded mvdan/sh interpreter
//
// Runtimes never change process-wide state; every invocation carries its own
// directory and environment.
package runtime
