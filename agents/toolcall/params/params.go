/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Decode parses the JSON-encoded arguments of a function call.
// An empty or whitespace-only string decodes to an empty map.
func Decode(arguments string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(arguments) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("decoding arguments: %w", err)
	}
	if args == nil {
		// The literal `null` leaves the map nil.
		args = map[string]any{}
	}
	return args, nil
}

// Extract extracts a required parameter from args with type safety.
// Returns an error if the parameter is missing or cannot be converted to T.
func Extract[T any](args map[string]any, name string) (T, error) {
	var zero T

	value, exists := args[name]
	if !exists {
		return zero, fmt.Errorf("%s parameter is required", name)
	}

	if v, ok := convert[T](value); ok {
		return v, nil
	}

	return zero, fmt.Errorf("%s parameter must be of type %T, got %T", name, zero, value)
}

// convert tries a direct type assertion first, then the conversions needed
// for values produced by encoding/json.
func convert[T any](value any) (T, bool) {
	if v, ok := value.(T); ok {
		return v, true
	}

	var zero T
	switch any(zero).(type) {
	case int:
		if f, ok := value.(float64); ok {
			return any(int(f)).(T), true
		}
	case int64:
		if f, ok := value.(float64); ok {
			return any(int64(f)).(T), true
		}
	case []string:
		items, ok := value.([]any)
		if !ok {
			return zero, false
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return zero, false
			}
			out = append(out, s)
		}
		return any(out).(T), true
	}
	return zero, false
}

// Error formats a tool output reporting a failure to the assistant.
func Error(format string, args ...any) string {
	return "Error: " + fmt.Sprintf(format, args...)
}
