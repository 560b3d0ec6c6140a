/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.dev/issueassist/agents/agenttrace"

// ToolCall represents a single tool invocation within a trace
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Result    string         `json:"result"`
	Error     error          `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	trace     *Trace
	mu        sync.Mutex
	span      oteltrace.Span
}

// Usage holds token consumption reported by completed runs.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// Trace represents a complete assistant interaction from seed prompt to the last stream
type Trace struct {
	ID          string           `json:"id"`
	InputPrompt string           `json:"input_prompt"`
	ExecContext ExecutionContext `json:"exec_context,omitempty"`
	ToolCalls   []*ToolCall      `json:"tool_calls"`
	Replies     []string         `json:"replies,omitempty"`
	Rounds      int              `json:"rounds"`
	Usage       Usage            `json:"usage"`
	Error       error            `json:"error,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	recorder    Recorder
	mu          sync.Mutex
	ctx         context.Context
	span        oteltrace.Span
}

// Recorder is invoked with every completed trace.
type Recorder func(*Trace)

type recorderKey struct{}

// WithRecorder returns a context whose traces are handed to r on completion.
func WithRecorder(ctx context.Context, r Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// recorderFromContext returns the recorder from the context, or one that logs to clog.
func recorderFromContext(ctx context.Context) Recorder {
	if r, ok := ctx.Value(recorderKey{}).(Recorder); ok && r != nil {
		return r
	}
	logger := clog.FromContext(ctx)
	return func(t *Trace) {
		logger.With(
			"trace_id", t.ID,
			"duration_ms", t.Duration().Milliseconds(),
			"tool_calls", len(t.ToolCalls),
			"rounds", t.Rounds,
		).Info("Assistant trace completed", "trace", t.String())
	}
}

// StartTrace starts a new trace for the interaction seeded with prompt.
func StartTrace(ctx context.Context, prompt string) *Trace {
	execCtx := GetExecutionContext(ctx)

	attrs := append([]attribute.KeyValue{attribute.String("agent.prompt", prompt)}, execCtx.SpanAttributes()...)
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "assistant.interaction",
		oteltrace.WithAttributes(attrs...))

	return &Trace{
		ID:          uuid.NewString(),
		InputPrompt: prompt,
		ExecContext: execCtx,
		ToolCalls:   []*ToolCall{},
		StartTime:   time.Now(),
		recorder:    recorderFromContext(ctx),
		ctx:         ctx,
		span:        span,
	}
}

// StartToolCall starts a new tool call and returns it
func (t *Trace) StartToolCall(id, name string, params map[string]any) *ToolCall {
	_, span := otel.Tracer(instrumentationName).Start(t.ctx, "assistant.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
	))

	return &ToolCall{
		ID:        id,
		Name:      name,
		Params:    params,
		StartTime: time.Now(),
		trace:     t,
		span:      span,
	}
}

// BadToolCall records a tool call that failed due to bad arguments or unknown tool
func (t *Trace) BadToolCall(id, name string, params map[string]any, err error) {
	_, span := otel.Tracer(instrumentationName).Start(t.ctx, "assistant.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
		attribute.String("error", err.Error()),
	))
	span.SetStatus(codes.Error, err.Error())
	span.End()

	now := time.Now()
	tc := &ToolCall{
		ID:        id,
		Name:      name,
		Params:    params,
		StartTime: now,
		EndTime:   now,
		Error:     err,
		trace:     t,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ToolCalls = append(t.ToolCalls, tc)
}

// AddReply records a completed assistant message.
func (t *Trace) AddReply(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Replies = append(t.Replies, text)
}

// RecordRound counts one batch of tool outputs submitted back to the run.
func (t *Trace) RecordRound() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Rounds++
	if t.span != nil {
		t.span.SetAttributes(attribute.Int("tool.rounds", t.Rounds))
	}
}

// RecordTokenUsage accumulates token usage and mirrors the totals on the span.
func (t *Trace) RecordTokenUsage(model string, promptTokens, completionTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Usage.PromptTokens += promptTokens
	t.Usage.CompletionTokens += completionTokens
	if t.span != nil {
		t.span.SetAttributes(
			attribute.String("model", model),
			attribute.Int64("tokens.input", t.Usage.PromptTokens),
			attribute.Int64("tokens.output", t.Usage.CompletionTokens),
			attribute.Int64("tokens.total", t.Usage.PromptTokens+t.Usage.CompletionTokens),
		)
	}
}

// Complete marks the tool call as complete and adds it to the parent trace
func (tc *ToolCall) Complete(result string, err error) {
	tc.mu.Lock()
	tc.Result = result
	tc.Error = err
	tc.EndTime = time.Now()
	trace := tc.trace
	span := tc.span
	tc.mu.Unlock()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	trace.mu.Lock()
	defer trace.mu.Unlock()
	trace.ToolCalls = append(trace.ToolCalls, tc)
}

// Duration returns the duration of the tool call
func (tc *ToolCall) Duration() time.Duration {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.EndTime.IsZero() {
		return time.Since(tc.StartTime)
	}
	return tc.EndTime.Sub(tc.StartTime)
}

// Complete marks the trace as complete and hands it to the recorder
func (t *Trace) Complete(err error) {
	t.mu.Lock()
	t.Error = err
	t.EndTime = time.Now()
	recorder := t.recorder
	span := t.span
	t.mu.Unlock()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	if recorder != nil {
		recorder(t)
	}
}

// Duration returns the total duration of the trace
func (t *Trace) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// String returns a structured representation of the trace
func (t *Trace) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder

	var duration time.Duration
	if t.EndTime.IsZero() {
		duration = time.Since(t.StartTime)
	} else {
		duration = t.EndTime.Sub(t.StartTime)
	}

	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	if t.ExecContext.Repository != "" {
		fmt.Fprintf(&sb, "Issue: %s#%d\n", t.ExecContext.Repository, t.ExecContext.IssueNumber)
	}
	fmt.Fprintf(&sb, "Prompt: %q\n", t.InputPrompt)
	fmt.Fprintf(&sb, "Duration: %v\n", duration)
	fmt.Fprintf(&sb, "Rounds: %d\n", t.Rounds)

	if len(t.ToolCalls) > 0 {
		fmt.Fprintf(&sb, "\nTool Calls (%d):\n", len(t.ToolCalls))
		for i, tc := range t.ToolCalls {
			fmt.Fprintf(&sb, "  [%d] %s (ID: %s)\n", i+1, tc.Name, tc.ID)
			for k, v := range tc.Params {
				fmt.Fprintf(&sb, "      %s: %v\n", k, v)
			}
			if tc.Error != nil {
				fmt.Fprintf(&sb, "      Error: %v\n", tc.Error)
			} else {
				fmt.Fprintf(&sb, "      Result: %s\n", truncate(tc.Result, 200))
			}
		}
	} else {
		sb.WriteString("\nNo tool calls\n")
	}

	if len(t.Replies) > 0 {
		fmt.Fprintf(&sb, "\nReplies (%d):\n", len(t.Replies))
		for i, r := range t.Replies {
			fmt.Fprintf(&sb, "  [%d] %s\n", i+1, truncate(r, 500))
		}
	}

	if t.Error != nil {
		fmt.Fprintf(&sb, "\nError: %v\n", t.Error)
	}

	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
