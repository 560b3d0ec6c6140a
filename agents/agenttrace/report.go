/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// createStandardTable creates a table writer with markdown formatting
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 120,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// WriteTable writes a markdown summary of the trace's tool calls to w.
func WriteTable(w io.Writer, t *Trace) error {
	t.mu.Lock()
	calls := make([]*ToolCall, len(t.ToolCalls))
	copy(calls, t.ToolCalls)
	rounds := t.Rounds
	usage := t.Usage
	execCtx := t.ExecContext
	t.mu.Unlock()

	title := "## Assistant run"
	if execCtx.Repository != "" {
		title = fmt.Sprintf("## Assistant run for %s#%d", execCtx.Repository, execCtx.IssueNumber)
	}
	if _, err := fmt.Fprintf(w, "%s\n\nRounds: %d, prompt tokens: %d, completion tokens: %d\n\n",
		title, rounds, usage.PromptTokens, usage.CompletionTokens); err != nil {
		return err
	}

	if len(calls) == 0 {
		_, err := io.WriteString(w, "No tool calls\n")
		return err
	}

	table := createStandardTable([]string{"#", "Tool", "Arguments", "Output"}, w)
	for i, tc := range calls {
		output := firstLine(tc.Result)
		if tc.Error != nil {
			output = "error: " + tc.Error.Error()
		}
		if err := table.Append([]string{
			fmt.Sprint(i + 1),
			tc.Name,
			formatParams(tc.Params),
			output,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatParams renders params as sorted key=value pairs.
func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
