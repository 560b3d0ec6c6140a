/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext identifies the issue an interaction is about.
type ExecutionContext struct {
	Repository  string `json:"repository,omitempty"`   // "owner/repo"
	IssueNumber int    `json:"issue_number,omitempty"` // triggering issue
	EventName   string `json:"event_name,omitempty"`   // "issues" or "workflow_dispatch"
}

// SpanAttributes returns the attributes attached to every span of the interaction.
func (e ExecutionContext) SpanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	if e.IssueNumber != 0 {
		attrs = append(attrs, attribute.Int("issue_number", e.IssueNumber))
	}
	if e.EventName != "" {
		attrs = append(attrs, attribute.String("event_name", e.EventName))
	}
	return attrs
}

// EnrichAttributes adds execution context attributes to the provided base attributes.
//
// Only bounded labels are added. The issue number is left out of metrics
// since every issue would create a new time series; it stays on spans.
func (e ExecutionContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+2)
	copy(attrs, baseAttrs)

	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	if e.EventName != "" {
		attrs = append(attrs, attribute.String("event_name", e.EventName))
	}
	return attrs
}

// contextKey is used for storing execution context in context.Context
type contextKey string

const executionContextKey contextKey = "execution_context"

// WithExecutionContext adds execution context to the Go context
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey, execCtx)
}

// GetExecutionContext retrieves execution context from the Go context
func GetExecutionContext(ctx context.Context) ExecutionContext {
	if val := ctx.Value(executionContextKey); val != nil {
		if execCtx, ok := val.(ExecutionContext); ok {
			return execCtx
		}
	}
	return ExecutionContext{}
}
