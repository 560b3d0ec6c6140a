/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package params decodes function-call arguments and extracts typed values
// from them.
//
// Assistant tool calls carry their arguments as a JSON object encoded in a
// string. Decode turns that string into a map once; Extract then pulls
// individual values out of it, converting the shapes produced by
// encoding/json (float64 numbers, []any arrays) into the Go types handlers
// ask for.
package params
