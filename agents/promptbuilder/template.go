/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"strings"
	"unicode"
)

// segment is either literal text or a placeholder reference.
type segment struct {
	text        string
	placeholder string
}

// parse splits a template into literal and placeholder segments.
func parse(template string) ([]segment, error) {
	var segs []segment
	for template != "" {
		start := strings.Index(template, "{{")
		if start < 0 {
			segs = append(segs, segment{text: template})
			break
		}
		if start > 0 {
			segs = append(segs, segment{text: template[:start]})
		}

		rest := template[start+2:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			return nil, fmt.Errorf("unclosed placeholder at offset %d", start)
		}
		name := strings.TrimSpace(rest[:end])
		if !validName(name) {
			return nil, fmt.Errorf("invalid placeholder name %q", name)
		}
		segs = append(segs, segment{placeholder: name})
		template = rest[end+2:]
	}
	return segs, nil
}

// validName reports whether s starts with a letter and continues with letters, digits or underscores.
func validName(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return s != ""
}
