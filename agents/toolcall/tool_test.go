/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall_test

import (
	"context"
	"testing"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/toolcall"
	"github.com/google/go-cmp/cmp"
)

type labelArgs struct {
	Labels []string `json:"labels" jsonschema:"required,description=Labels to add"`
	Reason string   `json:"reason,omitempty" jsonschema:"description=Why the labels apply"`
}

func TestDefine(t *testing.T) {
	def := toolcall.Define[labelArgs]("add_issue_labels", "Add labels to the issue")

	if def.Name != "add_issue_labels" {
		t.Errorf("Name: got = %q, wanted = %q", def.Name, "add_issue_labels")
	}
	if def.Parameters == nil {
		t.Fatal("Parameters: got = nil")
	}
	if diff := cmp.Diff([]string{"labels"}, def.Parameters.Required); diff != "" {
		t.Errorf("Required: (-want +got):\n%s", diff)
	}
	if _, ok := def.Parameters.Properties.Get("reason"); !ok {
		t.Error("reason property missing")
	}
}

func TestTools(t *testing.T) {
	noop := func(context.Context, toolcall.ToolCall, *agenttrace.Trace) (string, error) { return "Ok", nil }
	tools := toolcall.Tools(
		toolcall.Tool{Def: toolcall.Definition{Name: "a"}, Handler: noop},
		toolcall.Tool{Def: toolcall.Definition{Name: "b"}, Handler: noop},
	)

	if len(tools) != 2 {
		t.Fatalf("len: got = %d, wanted = 2", len(tools))
	}
	if got, err := tools["b"].Handler(context.Background(), toolcall.ToolCall{}, nil); got != "Ok" || err != nil {
		t.Errorf("handler: got = (%q, %v), wanted = Ok", got, err)
	}
}

func TestParam(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr string
		bad     int
	}{{
		name: "present",
		args: map[string]any{"title": "Crash on startup"},
		want: "Crash on startup",
	}, {
		name:    "missing",
		args:    map[string]any{},
		wantErr: "Error: title parameter is required",
		bad:     1,
	}, {
		name:    "wrong type",
		args:    map[string]any{"title": 42.0},
		wantErr: "Error: title parameter must be of type string, got float64",
		bad:     1,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace := agenttrace.StartTrace(context.Background(), "prompt")
			call := toolcall.ToolCall{ID: "call_1", Name: "set_issue_title", Args: tt.args}

			got, errOut := toolcall.Param[string](call, trace, "title")
			if got != tt.want {
				t.Errorf("value: got = %q, wanted = %q", got, tt.want)
			}
			if errOut != tt.wantErr {
				t.Errorf("error output: got = %q, wanted = %q", errOut, tt.wantErr)
			}
			if len(trace.ToolCalls) != tt.bad {
				t.Errorf("bad tool calls: got = %d, wanted = %d", len(trace.ToolCalls), tt.bad)
			}
		})
	}
}
