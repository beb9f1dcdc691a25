// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing flow shared by the taskfile and config
// packages:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed taskfile_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecodeString[Taskfile](
//	    schema,
//	    data,
//	    "#Taskfile",
//	    cueutil.WithFilename("taskwave.cue"),
//	)
//	if err != nil {
//	    return nil, err // carries the CUE path of the offending field
//	}
//	return result.Value, nil
package cueutil
