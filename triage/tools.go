/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"context"
	"fmt"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/toolcall"
	"github.com/chainguard-dev/clog"
)

const (
	AddIssueLabels = "add_issue_labels"
	SetIssueTitle  = "set_issue_title"
	SearchGitHub   = "search_github"
)

type labelArgs struct {
	Labels []string `json:"labels" jsonschema:"required,description=Labels to add to the issue"`
}

type titleArgs struct {
	Title string `json:"title" jsonschema:"required,description=The new title of the issue"`
}

type searchArgs struct {
	Query string `json:"query" jsonschema:"required,description=GitHub issue search terms. The repository qualifier is added automatically"`
}

// Tools returns the tool set for a triage of issue number whose thread uses indexID.
func Tools(search *RelatedSearch, indexID string, number int) map[string]toolcall.Tool {
	return toolcall.Tools(
		labelsTool(number),
		titleTool(number),
		searchTool(search, indexID, number),
	)
}

// labelsTool acknowledges label requests without applying them.
func labelsTool(number int) toolcall.Tool {
	return toolcall.Tool{
		Def: toolcall.Define[labelArgs](AddIssueLabels, "Add labels to the issue being triaged"),
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace) (string, error) {
			labels, errOut := toolcall.Param[[]string](call, trace, "labels")
			if errOut != "" {
				return errOut, nil
			}
			tc := trace.StartToolCall(call.ID, call.Name, call.Args)
			clog.FromContext(ctx).With("issue", number).With("labels", labels).Info("Assistant requested labels")
			tc.Complete("Ok", nil)
			return "Ok", nil
		},
	}
}

// titleTool acknowledges rename requests without applying them.
func titleTool(number int) toolcall.Tool {
	return toolcall.Tool{
		Def: toolcall.Define[titleArgs](SetIssueTitle, "Set the title of the issue being triaged"),
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace) (string, error) {
			title, errOut := toolcall.Param[string](call, trace, "title")
			if errOut != "" {
				return errOut, nil
			}
			tc := trace.StartToolCall(call.ID, call.Name, call.Args)
			clog.FromContext(ctx).With("issue", number).With("title", title).Info("Assistant requested title")
			tc.Complete("Ok", nil)
			return "Ok", nil
		},
	}
}

func searchTool(search *RelatedSearch, indexID string, number int) toolcall.Tool {
	return toolcall.Tool{
		Def: toolcall.Define[searchArgs](SearchGitHub, "Search the repository for related issues and add them to the file search index"),
		Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace) (string, error) {
			query, errOut := toolcall.Param[string](call, trace, "query")
			if errOut != "" {
				return errOut, nil
			}
			tc := trace.StartToolCall(call.ID, call.Name, call.Args)
			summary, err := search.Run(ctx, fmt.Sprintf("repo:%s/%s %s", search.Owner, search.Repo, query), indexID, []int{number})
			tc.Complete(summary, err)
			return summary, err
		},
	}
}
