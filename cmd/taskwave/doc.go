// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the taskwave command-line interface. Every command is
// built from an App, which carries the injected services and the state of the
// global flags.
package cmd
