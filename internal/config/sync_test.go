// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// cueFields lists the regular field names of a CUE definition.
func cueFields(t *testing.T, def string) map[string]bool {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	val := schema.LookupPath(cue.ParsePath(def))
	if val.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", def, val.Err())
	}

	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	fields := make(map[string]bool)
	for iter.Next() {
		fields[strings.TrimSuffix(iter.Selector().String(), "?")] = true
	}
	return fields
}

// jsonTags lists the json tag names of a struct, skipping json:"-".
func jsonTags(typ reflect.Type) map[string]bool {
	tags := make(map[string]bool)
	for i := range typ.NumField() {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			tags[name] = true
		}
	}
	return tags
}

// The Go structs and the CUE schema must name the same fields, or values
// silently fail to decode.
func TestSchemaSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			t.Parallel()

			cueSet, goSet := cueFields(t, tt.def), jsonTags(tt.typ)
			for f := range cueSet {
				if !goSet[f] {
					t.Errorf("CUE field %q has no Go counterpart", f)
				}
			}
			for f := range goSet {
				if !cueSet[f] {
					t.Errorf("Go field %q missing from the CUE schema", f)
				}
			}
		})
	}
}
