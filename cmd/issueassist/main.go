/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements issueassist, a workflow step that triages the
// triggering GitHub issue with an OpenAI assistant.
//
// The issue (and any related issues the assistant searches for) is uploaded
// to the assistant's file search index, and the assistant's tool calls are
// answered until its run completes. A markdown report of the run is printed
// and appended to the step summary when GITHUB_STEP_SUMMARY is set.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/executor/assistantexecutor"
	"chainguard.dev/issueassist/config"
	"chainguard.dev/issueassist/issues"
	"chainguard.dev/issueassist/triage"
	"chainguard.dev/issueassist/trigger"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "failed to process config: %v", err)
	}

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("repository", cfg.Repository, "event", cfg.EventName))

	if err := run(ctx, cfg, os.Stdout); err != nil {
		clog.FatalContextf(ctx, "issueassist failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := clog.FromContext(ctx)

	ev, err := trigger.Load(cfg.EventName, cfg.EventPath)
	if err != nil {
		return fmt.Errorf("reading trigger event: %w", err)
	}

	gh, err := issues.NewGitHubClient(ctx, cfg.GitHubToken, cfg.GitHubAPIURL)
	if err != nil {
		return err
	}
	fetcher := issues.NewFetcher(gh)

	issue, err := trigger.Resolve(ctx, ev, fetcher, cfg.Owner(), cfg.Repo())
	if err != nil {
		return fmt.Errorf("resolving issue #%d: %w", ev.Number, err)
	}
	log.With("issue", issue.Number).With("title", issue.Title).Info("Triaging issue")

	oaOpts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		oaOpts = append(oaOpts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client, err := assistantexecutor.NewClient(openai.NewClient(oaOpts...), cfg.Poll())
	if err != nil {
		return err
	}

	o, err := triage.NewOrchestrator(client, fetcher, triage.Options{
		Owner:         cfg.Owner(),
		Repo:          cfg.Repo(),
		AssistantID:   cfg.AssistantID,
		EventName:     cfg.EventName,
		MaxRelated:    cfg.MaxRelated,
		MaxToolRounds: cfg.MaxToolRounds,
		OverrideTools: cfg.OverrideTools,
	})
	if err != nil {
		return err
	}

	ctx = agenttrace.WithRecorder(ctx, reporter(ctx, cfg, out))
	_, err = o.Run(ctx, issue)
	return err
}

// reporter writes the report of every completed trace, including failed ones.
func reporter(ctx context.Context, cfg *config.Config, out io.Writer) agenttrace.Recorder {
	log := clog.FromContext(ctx)
	return func(t *agenttrace.Trace) {
		log.With("trace_id", t.ID).
			With("duration_ms", t.Duration().Milliseconds()).
			With("tool_calls", len(t.ToolCalls)).
			With("rounds", t.Rounds).
			Info("Assistant run finished")
		if err := report(cfg, t, out); err != nil {
			log.With("error", err).Warn("Failed to write run report")
		}
	}
}

// report writes the run table to out and appends it to the step summary.
func report(cfg *config.Config, trace *agenttrace.Trace, out io.Writer) error {
	if err := agenttrace.WriteTable(out, trace); err != nil {
		return err
	}
	if cfg.StepSummary == "" {
		return nil
	}

	f, err := os.OpenFile(cfg.StepSummary, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening step summary: %w", err)
	}
	defer f.Close()
	return agenttrace.WriteTable(f, trace)
}
