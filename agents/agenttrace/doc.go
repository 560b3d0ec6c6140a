/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records what happened during one assistant interaction.

# Overview

  - ExecutionContext: repository and issue metadata used to enrich spans and metrics
  - Trace: the interaction from seed prompt to the last stream, with replies and tool-call rounds
  - ToolCall: one dispatched function call and the output sent back for it
  - Recorder: callback invoked when a trace completes

Every Trace and ToolCall opens an OpenTelemetry span. No exporter is installed
here; spans are dropped unless the binary configures a provider.

# Usage

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Repository:  "chainguard-dev/mono",
		IssueNumber: 42,
		EventName:   "issues",
	})

	trace := agenttrace.StartTrace(ctx, "Please triage the attached issue")
	tc := trace.StartToolCall("call_1", "search_github", map[string]any{"query": "crash"})
	tc.Complete("Found 0 related issues:", nil)
	trace.Complete(nil)

WriteTable renders the tool calls of a completed trace as a markdown table.
*/
package agenttrace
