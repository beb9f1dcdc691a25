// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#TestConfig: {
	name:         string
	count:        int & >=0
	enabled:      bool | *false
	description?: string
}
`

type testConfig struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document decodes", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "test"
count: 42
enabled: true
description: "A test config"
`)
		result, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "test" || result.Value.Count != 42 || !result.Value.Enabled {
			t.Errorf("unexpected value: %+v", *result.Value)
		}
		if result.Value.Description != "A test config" {
			t.Errorf("Description = %q", result.Value.Description)
		}
	})

	t.Run("defaults apply", func(t *testing.T) {
		t.Parallel()

		result, err := ParseAndDecodeString[testConfig](testSchema, []byte(`name: "x", count: 0`), "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecodeString failed: %v", err)
		}
		if result.Value.Enabled {
			t.Error("expected enabled to default to false")
		}
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(`name: "x", count: -1`), "#TestConfig",
			WithFilename("bad.cue"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "bad.cue") || !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name file and field, got: %v", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(`name: "x`), "#TestConfig")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "<input>") {
			t.Errorf("expected default filename in error, got: %v", err)
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(`name: "x", count: 1`), "#Nope")
		if err == nil || !strings.Contains(err.Error(), "#Nope") {
			t.Fatalf("expected missing definition error, got: %v", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(`name: "x", count: 1`), "#TestConfig",
			WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Fatalf("expected size error, got: %v", err)
		}
	})
}
