// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/taskwave/taskwave/pkg/cueutil"
)

//go:embed taskfile_schema.cue
var taskfileSchema string

// Parse reads, decodes and validates the task file at path.
func Parse(path string) (*Taskfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes decodes task file content against the embedded schema and runs
// Validate on the result. path is used for error messages and as the base
// for relative cwd and env_files entries.
func ParseBytes(data []byte, path string) (*Taskfile, error) {
	result, err := cueutil.ParseAndDecodeString[Taskfile](
		taskfileSchema,
		data,
		"#Taskfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	tf := result.Value
	tf.FilePath = path

	if err := tf.Validate(); err != nil {
		return nil, err
	}

	return tf, nil
}
