/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package triage_test

import (
	"context"
	"fmt"
	"slices"

	"chainguard.dev/issueassist/agents/executor/assistantexecutor"
	"chainguard.dev/issueassist/issues"
	"github.com/openai/openai-go"
)

// fakeSource serves canned search results and comments.
type fakeSource struct {
	results   []issues.Issue
	searchErr error
	comments  map[int][]issues.Comment
	queries   []string
}

func (f *fakeSource) Search(_ context.Context, query string) ([]issues.Issue, error) {
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeSource) WithComments(_ context.Context, _, _ string, issue issues.Issue) (issues.Issue, error) {
	issue.Comments = f.comments[issue.Number]
	return issue, nil
}

type upload struct {
	Filename string
	Content  string
}

// fakeAssistant records uploads and attachments and replays run streams.
type fakeAssistant struct {
	uploads     []upload
	attached    map[string][]string
	waits       []string
	threads     []string
	metadata    []map[string]string
	uploadErr   error
	initial     []assistantexecutor.Event
	after       [][]assistantexecutor.Event
	submissions [][]assistantexecutor.ToolOutput
}

func (f *fakeAssistant) Assistant(_ context.Context, id string) (*openai.Assistant, error) {
	return &openai.Assistant{ID: id, Model: "gpt-4o", Name: "triage"}, nil
}

func (f *fakeAssistant) Upload(_ context.Context, filename string, content []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, upload{Filename: filename, Content: string(content)})
	return fmt.Sprintf("file_%d", len(f.uploads)), nil
}

func (f *fakeAssistant) AttachFile(_ context.Context, indexID, fileID string) error {
	if f.attached == nil {
		f.attached = map[string][]string{}
	}
	f.attached[indexID] = append(f.attached[indexID], fileID)
	return nil
}

func (f *fakeAssistant) WaitForIndex(_ context.Context, indexID string) error {
	f.waits = append(f.waits, indexID)
	return nil
}

func (f *fakeAssistant) NewThread(_ context.Context, prompt, fileID string, metadata map[string]string) (assistantexecutor.Thread, error) {
	f.threads = append(f.threads, fileID)
	f.metadata = append(f.metadata, metadata)
	return assistantexecutor.Thread{ID: "thread_1", IndexID: "vs_1", Prompt: prompt}, nil
}

func (f *fakeAssistant) StartRun(context.Context, string, string, []openai.AssistantToolUnionParam) assistantexecutor.Stream {
	return &eventStream{events: f.initial}
}

func (f *fakeAssistant) SubmitToolOutputs(_ context.Context, _, _ string, outputs []assistantexecutor.ToolOutput) assistantexecutor.Stream {
	f.submissions = append(f.submissions, slices.Clone(outputs))
	if len(f.after) == 0 {
		return &eventStream{}
	}
	next := f.after[0]
	f.after = f.after[1:]
	return &eventStream{events: next}
}

type eventStream struct {
	events []assistantexecutor.Event
	pos    int
}

func (s *eventStream) Next() bool {
	if s.pos >= len(s.events) {
		return false
	}
	s.pos++
	return true
}

func (s *eventStream) Current() assistantexecutor.Event { return s.events[s.pos-1] }
func (s *eventStream) Err() error                       { return nil }
func (s *eventStream) Close() error                     { return nil }
