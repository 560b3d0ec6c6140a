/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall defines provider-independent tool definitions and calls.
//
// A Tool couples a Definition, whose parameter schema is reflected from a Go
// struct, with a Handler producing the textual output submitted back to the
// assistant run:
//
//	type searchArgs struct {
//		Query string `json:"query" jsonschema:"required,description=GitHub search query"`
//	}
//
//	tool := toolcall.Tool{
//		Def: toolcall.Define[searchArgs]("search_github", "Search related issues"),
//		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace) (string, error) {
//			query, errOut := toolcall.Param[string](call, trace, "query")
//			if errOut != "" {
//				return errOut, nil
//			}
//			return search(ctx, query)
//		},
//	}
//
// Conversion to a provider wire format lives in the openaitool subpackage.
package toolcall
