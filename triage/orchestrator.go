/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/executor/assistantexecutor"
	"chainguard.dev/issueassist/agents/promptbuilder"
	"chainguard.dev/issueassist/issues"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// Assistant is the OpenAI side of a triage. *assistantexecutor.Client implements it.
type Assistant interface {
	Index
	assistantexecutor.Runner
	Assistant(ctx context.Context, id string) (*openai.Assistant, error)
	NewThread(ctx context.Context, prompt, fileID string, metadata map[string]string) (assistantexecutor.Thread, error)
}

// Options configures an Orchestrator.
type Options struct {
	Owner       string
	Repo        string
	AssistantID string
	// EventName labels traces and metrics.
	EventName     string
	MaxRelated    int
	MaxToolRounds int
	OverrideTools bool
}

// Orchestrator runs the assistant over one triggering issue.
type Orchestrator struct {
	assistant Assistant
	source    IssueSource
	opts      Options
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(assistant Assistant, source IssueSource, opts Options) (*Orchestrator, error) {
	switch {
	case assistant == nil:
		return nil, errors.New("assistant cannot be nil")
	case source == nil:
		return nil, errors.New("issue source cannot be nil")
	case opts.Owner == "" || opts.Repo == "":
		return nil, errors.New("owner and repo are required")
	case opts.AssistantID == "":
		return nil, errors.New("assistant ID is required")
	case opts.MaxRelated <= 0:
		return nil, fmt.Errorf("max related must be positive, got %d", opts.MaxRelated)
	case opts.MaxToolRounds <= 0:
		return nil, fmt.Errorf("max tool rounds must be positive, got %d", opts.MaxToolRounds)
	}
	return &Orchestrator{assistant: assistant, source: source, opts: opts}, nil
}

var seedPrompt = promptbuilder.Must(promptbuilder.New(`Please triage the GitHub issue described below.
Its full text and discussion are in the attached file. Use the tools to label it, retitle it and look up related issues.

{{issue}}`))

// issueRef is the metadata bound into the seed prompt.
type issueRef struct {
	Repository string   `yaml:"repository"`
	Number     int      `yaml:"number"`
	Title      string   `yaml:"title"`
	Author     string   `yaml:"author,omitempty"`
	Labels     []string `yaml:"labels,omitempty"`
	File       string   `yaml:"file"`
}

// Prompt builds the seed message of a triage thread for issue, whose rendering was uploaded as filename.
func Prompt(repository string, issue issues.Issue, filename string) (string, error) {
	p, err := seedPrompt.BindYAML("issue", issueRef{
		Repository: repository,
		Number:     issue.Number,
		Title:      issue.Title,
		Author:     issue.Author,
		Labels:     issue.Labels,
		File:       filename,
	})
	if err != nil {
		return "", err
	}
	return p.Build()
}

// ThreadMetadata tags a thread with the issue it triages.
func ThreadMetadata(issue issues.Issue) map[string]string {
	return map[string]string{"issue": fmt.Sprintf("%d: %s", issue.Number, issue.Title)}
}

// Run uploads issue, opens a thread on it and executes the assistant run.
// The returned trace is non-nil once the run has started, even on error.
// Threads and files are left in place.
func (o *Orchestrator) Run(ctx context.Context, issue issues.Issue) (*agenttrace.Trace, error) {
	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Repository:  o.opts.Owner + "/" + o.opts.Repo,
		IssueNumber: issue.Number,
		EventName:   o.opts.EventName,
	})
	log := clog.FromContext(ctx).With("issue", issue.Number)
	ctx = clog.WithLogger(ctx, log)

	a, err := o.assistant.Assistant(ctx, o.opts.AssistantID)
	if err != nil {
		return nil, err
	}
	log.With("assistant", a.Name).With("model", a.Model).Info("Resolved assistant")

	doc := issues.NewDocument(issue, false)
	fileID, err := o.assistant.Upload(ctx, doc.Filename, []byte(doc.Content))
	if err != nil {
		return nil, err
	}

	prompt, err := Prompt(o.opts.Owner+"/"+o.opts.Repo, issue, doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}
	thread, err := o.assistant.NewThread(ctx, prompt, fileID, ThreadMetadata(issue))
	if err != nil {
		return nil, err
	}
	if err := o.assistant.WaitForIndex(ctx, thread.IndexID); err != nil {
		return nil, err
	}

	search := &RelatedSearch{
		Source: o.source,
		Index:  o.assistant,
		Owner:  o.opts.Owner,
		Repo:   o.opts.Repo,
		Max:    o.opts.MaxRelated,
	}

	execOpts := []assistantexecutor.Option{
		assistantexecutor.WithMaxToolRounds(o.opts.MaxToolRounds),
		assistantexecutor.WithOverrideTools(o.opts.OverrideTools),
	}
	if a.Model != "" {
		execOpts = append(execOpts, assistantexecutor.WithModel(a.Model))
	}
	exec, err := assistantexecutor.New(o.assistant, o.opts.AssistantID, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating executor: %w", err)
	}

	return exec.Execute(ctx, thread, Tools(search, thread.IndexID, issue.Number))
}
