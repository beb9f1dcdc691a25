// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the package tests: file
// fixtures that fail the test on error and a controllable clock.
package testutil
