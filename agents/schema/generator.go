/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema reflects Go argument structs into JSON schemas for tool definitions.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// reflector inlines nested structs so every schema is self-contained.
var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	DoNotReference:             true,
}

// ReflectType reflects the schema of T, which is expected to be a struct.
func ReflectType[T any]() *jsonschema.Schema {
	var zero T
	return reflector.Reflect(&zero)
}

// ToMap converts a schema into the generic object form expected by
// function-calling APIs. Document-level keys ($schema, $id) are dropped.
func ToMap(s *jsonschema.Schema) (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}
