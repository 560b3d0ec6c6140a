/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"fmt"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/schema"
	"chainguard.dev/issueassist/agents/toolcall/params"
	"github.com/invopop/jsonschema"
)

// ToolCall is a provider-independent representation of a tool call.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Definition describes a tool's schema (name, description, parameters).
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Define builds a Definition whose parameters are reflected from Args.
func Define[Args any](name, description string) Definition {
	return Definition{
		Name:        name,
		Description: description,
		Parameters:  schema.ReflectType[Args](),
	}
}

// Handler answers a tool call with the textual output handed back to the run.
// Problems the assistant can act on belong in the output; a non-nil error
// aborts the run.
type Handler func(ctx context.Context, call ToolCall, trace *agenttrace.Trace) (string, error)

// Tool pairs a definition with the handler that serves it.
type Tool struct {
	Def     Definition
	Handler Handler
}

// Tools indexes tools by name.
func Tools(tools ...Tool) map[string]Tool {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Def.Name] = t
	}
	return m
}

// Param extracts a required parameter from the tool call args.
// On error, records a bad tool call on the trace and returns the error output.
func Param[T any](call ToolCall, trace *agenttrace.Trace, name string) (T, string) {
	v, err := params.Extract[T](call.Args, name)
	if err != nil {
		if trace != nil {
			trace.BadToolCall(call.ID, call.Name, call.Args, fmt.Errorf("missing %s parameter", name))
		}
		return v, params.Error("%s", err)
	}
	return v, ""
}
