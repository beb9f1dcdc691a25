// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ExportJSON renders the table as a JSON array.
	ExportJSON ExportFormat = "json"
	// ExportTOML renders the table as TOML [[tasks]] array tables.
	ExportTOML ExportFormat = "toml"
)

// ErrInvalidExportFormat is returned for unsupported export formats.
var ErrInvalidExportFormat = errors.New("invalid export format")

type (
	// ExportFormat selects the serialization used by Export.
	ExportFormat string

	// ExportRecord is the machine-readable view of one task.
	ExportRecord struct {
		Name        string   `json:"name" toml:"name"`
		Description string   `json:"description" toml:"description"`
		After       []string `json:"after" toml:"after"`
		Before      []string `json:"before" toml:"before"`
		Cwd         string   `json:"cwd,omitempty" toml:"cwd,omitempty"`
	}

	tomlDocument struct {
		Tasks []ExportRecord `toml:"tasks"`
	}
)

// Records returns one ExportRecord per task, in declaration order. After and
// Before are never nil so consumers always see arrays.
func (tf *Taskfile) Records() []ExportRecord {
	records := make([]ExportRecord, 0, len(tf.Tasks))
	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		records = append(records, ExportRecord{
			Name:        string(t.Name),
			Description: string(t.Description),
			After:       namesToStrings(t.After),
			Before:      namesToStrings(t.Before),
			Cwd:         t.Cwd,
		})
	}
	return records
}

// Export writes the task table to w. It has no side effects beyond the write.
func (tf *Taskfile) Export(w io.Writer, format ExportFormat) error {
	switch format {
	case ExportJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tf.Records())
	case ExportTOML:
		enc := toml.NewEncoder(w)
		enc.SetArraysMultiline(true)
		return enc.Encode(tomlDocument{Tasks: tf.Records()})
	default:
		return fmt.Errorf("%w %q (expected %q or %q)", ErrInvalidExportFormat, format, ExportJSON, ExportTOML)
	}
}

func namesToStrings(names []TaskName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}
