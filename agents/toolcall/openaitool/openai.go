/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaitool

import (
	"fmt"
	"sort"

	"chainguard.dev/issueassist/agents/schema"
	"chainguard.dev/issueassist/agents/toolcall"
	"chainguard.dev/issueassist/agents/toolcall/params"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// FromTool converts a tool definition into an assistant function tool.
func FromTool(t toolcall.Tool) (openai.AssistantToolUnionParam, error) {
	fn := shared.FunctionDefinitionParam{
		Name: t.Def.Name,
	}
	if t.Def.Description != "" {
		fn.Description = openai.String(t.Def.Description)
	}
	if t.Def.Parameters != nil {
		m, err := schema.ToMap(t.Def.Parameters)
		if err != nil {
			return openai.AssistantToolUnionParam{}, fmt.Errorf("tool %s: %w", t.Def.Name, err)
		}
		fn.Parameters = shared.FunctionParameters(m)
	}
	return openai.AssistantToolUnionParam{
		OfFunction: &openai.FunctionToolParam{Function: fn},
	}, nil
}

// FromTools converts a tool set, ordered by name so requests are stable.
func FromTools(tools map[string]toolcall.Tool) ([]openai.AssistantToolUnionParam, error) {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]openai.AssistantToolUnionParam, 0, len(names))
	for _, name := range names {
		p, err := FromTool(tools[name])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ToolCallFrom decodes a required-action function call.
// The returned call carries ID and Name even when the arguments fail to decode.
func ToolCallFrom(tc openai.RequiredActionFunctionToolCall) (toolcall.ToolCall, error) {
	call := toolcall.ToolCall{
		ID:   tc.ID,
		Name: tc.Function.Name,
	}
	args, err := params.Decode(tc.Function.Arguments)
	if err != nil {
		return call, fmt.Errorf("tool call %s (%s): %w", tc.ID, tc.Function.Name, err)
	}
	call.Args = args
	return call, nil
}
