/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder builds prompts from templates with {{name}} placeholders.
//
// Templates must be string literals. Runtime data is only ever bound as
// YAML, so text coming from an issue cannot masquerade as instructions in
// the template:
//
//	var seed = promptbuilder.Must(promptbuilder.New(`Triage this issue:
//
//	{{issue}}`))
//
//	p, err := seed.BindYAML("issue", meta)
//	if err != nil {
//		return err
//	}
//	text, err := p.Build()
//
// Binding returns a new Prompt; the receiver is left untouched, so a parsed
// template can be shared. Build fails while any placeholder is unbound.
package promptbuilder
