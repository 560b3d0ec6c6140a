/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package trigger reads the workflow event that started the process and
// resolves the issue it refers to.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"chainguard.dev/issueassist/issues"
	"github.com/google/go-github/v84/github"
)

// ErrUnsupportedEvent is returned for event kinds other than issues and workflow_dispatch.
var ErrUnsupportedEvent = errors.New("unsupported event")

const (
	KindIssues           = "issues"
	KindWorkflowDispatch = "workflow_dispatch"
)

// Event identifies the triggering issue.
type Event struct {
	Kind   string
	Number int
	// Issue is embedded in issues events and nil for dispatch events.
	Issue *issues.Issue
}

// Load reads and decodes the event payload at path.
func Load(kind, path string) (Event, error) {
	switch kind {
	case KindIssues, KindWorkflowDispatch:
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnsupportedEvent, kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("reading event payload: %w", err)
	}
	return Parse(kind, raw)
}

// Parse decodes an event payload of the given kind.
func Parse(kind string, raw []byte) (Event, error) {
	switch kind {
	case KindIssues:
		var ev github.IssuesEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return Event{}, fmt.Errorf("decoding issues event: %w", err)
		}
		if ev.Issue == nil || ev.Issue.Number == nil {
			return Event{}, errors.New("issues event has no issue number")
		}
		issue := issues.FromGitHub(ev.Issue)
		return Event{Kind: kind, Number: issue.Number, Issue: &issue}, nil

	case KindWorkflowDispatch:
		var ev github.WorkflowDispatchEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return Event{}, fmt.Errorf("decoding workflow_dispatch event: %w", err)
		}
		n, err := dispatchIssue(ev.Inputs)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: kind, Number: n}, nil

	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnsupportedEvent, kind)
	}
}

// dispatchIssue reads inputs.issue, which is a string for workflow inputs but
// may be a number when the payload is crafted by hand.
func dispatchIssue(inputs json.RawMessage) (int, error) {
	var in struct {
		Issue json.RawMessage `json:"issue"`
	}
	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, &in); err != nil {
			return 0, fmt.Errorf("decoding workflow_dispatch inputs: %w", err)
		}
	}
	if len(in.Issue) == 0 || string(in.Issue) == "null" {
		return 0, errors.New("workflow_dispatch event has no issue input")
	}

	s := string(in.Issue)
	var str string
	if err := json.Unmarshal(in.Issue, &str); err == nil {
		s = str
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("workflow_dispatch issue input %s is not an issue number", in.Issue)
	}
	return n, nil
}

// Getter fetches an issue by number. *issues.Fetcher implements it.
type Getter interface {
	Get(ctx context.Context, owner, repo string, number int) (issues.Issue, error)
}

// Resolve returns the full triggering issue, fetching it for dispatch events.
func Resolve(ctx context.Context, ev Event, getter Getter, owner, repo string) (issues.Issue, error) {
	if ev.Issue != nil {
		return *ev.Issue, nil
	}
	return getter.Get(ctx, owner, repo, ev.Number)
}
