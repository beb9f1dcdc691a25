// SPDX-License-Identifier: MPL-2.0

// Package config handles taskwave configuration using Viper with CUE as the
// file format.
//
// The file is looked up at $XDG_CONFIG_HOME/taskwave/config.cue (the platform
// equivalent on macOS and Windows), then ./config.cue. It is validated
// against the embedded config_schema.cue before being merged into Viper, and
// TASKWAVE_* environment variables override file values
// (TASKWAVE_MAX_PARALLEL, TASKWAVE_UI_VERBOSE, ...).
package config
