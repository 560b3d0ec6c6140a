/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"

	"chainguard.dev/issueassist/agents/agenttrace"
	"go.opentelemetry.io/otel/attribute"
)

// AttributeEnricher enriches metric attributes with additional context.
// The enricher receives base attributes (model, tool) and returns an enriched set.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// ExecutionContextEnricher adds the bounded execution context labels carried by ctx.
func ExecutionContextEnricher(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	return agenttrace.GetExecutionContext(ctx).EnrichAttributes(baseAttrs)
}
