/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI provides OpenTelemetry metrics for assistant runs.
// It counts token usage, dispatched tool calls and tool-output rounds,
// degrading to no-op counters if metric creation fails.
type GenAI struct {
	meter            metric.Meter
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCallCounter  metric.Int64Counter
	roundCounter     metric.Int64Counter
	attrEnricher     AttributeEnricher
}

// NewGenAI creates a new GenAI metrics instance with the specified meter name.
// If any counter fails to initialize, a warning is logged and a no-op counter is used instead.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, description, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
		if err != nil {
			slog.Warn("Failed to create counter, metric will be disabled", "error", err, "meter", meterName, "counter", name)
			return noop.Int64Counter{}
		}
		return c
	}

	return &GenAI{
		meter:            meter,
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCallCounter:  counter("genai.tool.calls", "The number of tool calls dispatched during a run", "{calls}"),
		roundCounter:     counter("genai.tool.rounds", "The number of tool output batches submitted to a run", "{rounds}"),
	}
}

// SetAttributeEnricher sets the attribute enricher for this metrics instance.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

func (m *GenAI) attributes(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.AddOption {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	opt := m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordToolCall records a tool invocation.
func (m *GenAI) RecordToolCall(ctx context.Context, model, toolName string, attrs ...attribute.KeyValue) {
	m.toolCallCounter.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("tool", toolName),
	}, attrs))
}

// RecordRound records one batch of tool outputs submitted back to a run.
func (m *GenAI) RecordRound(ctx context.Context, model string, attrs ...attribute.KeyValue) {
	m.roundCounter.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs))
}
