/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// literal only admits untyped string constants from the caller's source.
type literal string

// encoder renders a bound value.
type encoder func() (string, error)

// Prompt is a parsed template plus the values bound so far.
type Prompt struct {
	segments []segment
	names    map[string]struct{}
	values   map[string]encoder
}

// New parses a template literal.
func New(template literal) (*Prompt, error) {
	segs, err := parse(string(template))
	if err != nil {
		return nil, err
	}
	names := map[string]struct{}{}
	for _, s := range segs {
		if s.placeholder != "" {
			names[s.placeholder] = struct{}{}
		}
	}
	return &Prompt{segments: segs, names: names, values: map[string]encoder{}}, nil
}

// Must panics when err is non-nil. It is meant for package-level templates.
func Must(p *Prompt, err error) *Prompt {
	if err != nil {
		panic(err)
	}
	return p
}

// Placeholders returns the sorted placeholder names of the template.
func (p *Prompt) Placeholders() []string {
	return slices.Sorted(maps.Keys(p.names))
}

func (p *Prompt) bind(name string, enc encoder) (*Prompt, error) {
	if _, ok := p.names[name]; !ok {
		return nil, fmt.Errorf("placeholder %q not found in template", name)
	}
	if _, ok := p.values[name]; ok {
		return nil, fmt.Errorf("placeholder %q already bound", name)
	}
	values := maps.Clone(p.values)
	values[name] = enc
	return &Prompt{segments: p.segments, names: p.names, values: values}, nil
}

// BindYAML binds data marshaled as YAML, without the trailing newline.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	return p.bind(name, func() (string, error) {
		b, err := yaml.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("marshaling %s as YAML: %w", name, err)
		}
		return strings.TrimSuffix(string(b), "\n"), nil
	})
}

// Build renders the prompt. Every placeholder must be bound.
func (p *Prompt) Build() (string, error) {
	rendered := make(map[string]string, len(p.values))
	for _, name := range p.Placeholders() {
		enc, ok := p.values[name]
		if !ok {
			return "", fmt.Errorf("unbound placeholder %q", name)
		}
		v, err := enc()
		if err != nil {
			return "", err
		}
		rendered[name] = v
	}

	var sb strings.Builder
	for _, s := range p.segments {
		if s.placeholder != "" {
			sb.WriteString(rendered[s.placeholder])
			continue
		}
		sb.WriteString(s.text)
	}
	return sb.String(), nil
}
