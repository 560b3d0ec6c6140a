/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package assistantexecutor

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/executor/poll"
	"chainguard.dev/issueassist/agents/metrics"
	"chainguard.dev/issueassist/agents/toolcall"
	"chainguard.dev/issueassist/agents/toolcall/openaitool"
	"chainguard.dev/issueassist/agents/toolcall/params"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// ErrRunFailed is returned when the service reports the run as failed.
var ErrRunFailed = errors.New("assistant run failed")

// Runner starts runs and resumes them with tool outputs.
// *Client implements Runner.
type Runner interface {
	StartRun(ctx context.Context, threadID, assistantID string, tools []openai.AssistantToolUnionParam) Stream
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) Stream
}

// Interface is the public interface for assistant run execution
type Interface interface {
	// Execute runs the assistant on the thread, answering tool calls from tools
	// until every stream of the run is drained. The returned trace is completed.
	Execute(ctx context.Context, thread Thread, tools map[string]toolcall.Tool) (*agenttrace.Trace, error)
}

type executor struct {
	runner        Runner
	assistantID   string
	modelName     string
	maxToolRounds int
	overrideTools bool
	genaiMetrics  *metrics.GenAI
}

// New creates a new Executor for the given assistant.
func New(runner Runner, assistantID string, opts ...Option) (Interface, error) {
	if runner == nil {
		return nil, errors.New("runner cannot be nil")
	}
	if assistantID == "" {
		return nil, errors.New("assistant ID cannot be empty")
	}

	genaiMetrics := metrics.NewGenAI("chainguard.dev/issueassist")
	genaiMetrics.SetAttributeEnricher(metrics.ExecutionContextEnricher)

	e := &executor{
		runner:        runner,
		assistantID:   assistantID,
		modelName:     "unknown",
		maxToolRounds: 25,
		genaiMetrics:  genaiMetrics,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return e, nil
}

// Execute implements Interface.
//
// Streams are processed from a FIFO worklist: the initial run stream, then
// one continuation stream per submitted batch of tool outputs.
func (e *executor) Execute(ctx context.Context, thread Thread, tools map[string]toolcall.Tool) (trace *agenttrace.Trace, err error) {
	log := clog.FromContext(ctx).With("thread_id", thread.ID)

	trace = agenttrace.StartTrace(ctx, thread.Prompt)
	defer func() {
		trace.Complete(err)
	}()

	var defs []openai.AssistantToolUnionParam
	if e.overrideTools {
		defs, err = openaitool.FromTools(tools)
		if err != nil {
			return trace, fmt.Errorf("building tool definitions: %w", err)
		}
	}

	log.With("assistant_id", e.assistantID).With("tools", len(tools)).Info("Starting assistant run")

	worklist := []Stream{e.runner.StartRun(ctx, thread.ID, e.assistantID, defs)}
	for len(worklist) > 0 {
		s := worklist[0]
		worklist = worklist[1:]

		next, err := e.consume(ctx, s, thread, tools, trace)
		if cerr := s.Close(); cerr != nil {
			log.With("error", cerr).Warn("Failed to close run stream")
		}
		if err != nil {
			return trace, err
		}
		worklist = append(worklist, next...)
	}

	log.With("rounds", trace.Rounds).Info("Assistant run finished")
	return trace, nil
}

// consume drains one stream and returns the continuation streams it produced.
func (e *executor) consume(ctx context.Context, s Stream, thread Thread, tools map[string]toolcall.Tool, trace *agenttrace.Trace) ([]Stream, error) {
	log := clog.FromContext(ctx)

	var next []Stream
	for s.Next() {
		ev := s.Current()
		if ev.Model != "" {
			e.modelName = ev.Model
		}

		switch ev.Kind {
		case MessageCompleted:
			for _, text := range ev.Texts {
				log.With("run_id", ev.RunID).Infof("Assistant: %s", text)
				trace.AddReply(text)
			}

		case RequiresAction:
			if trace.Rounds >= e.maxToolRounds {
				return nil, fmt.Errorf("run %s: tool round %d exceeds limit of %d: %w",
					ev.RunID, trace.Rounds+1, e.maxToolRounds, poll.ErrTimeout)
			}

			outputs := make([]ToolOutput, 0, len(ev.ToolCalls))
			for _, tc := range ev.ToolCalls {
				out, err := e.dispatch(ctx, tc, tools, trace)
				if err != nil {
					return nil, fmt.Errorf("run %s: tool %s: %w", ev.RunID, tc.Function.Name, err)
				}
				outputs = append(outputs, ToolOutput{CallID: tc.ID, Output: out})
			}

			threadID := ev.ThreadID
			if threadID == "" {
				threadID = thread.ID
			}
			next = append(next, e.runner.SubmitToolOutputs(ctx, threadID, ev.RunID, outputs))
			trace.RecordRound()
			e.genaiMetrics.RecordRound(ctx, e.modelName)

		case RunCompleted:
			if ev.Usage.PromptTokens > 0 || ev.Usage.CompletionTokens > 0 {
				e.genaiMetrics.RecordTokens(ctx, e.modelName, ev.Usage.PromptTokens, ev.Usage.CompletionTokens)
				trace.RecordTokenUsage(e.modelName, ev.Usage.PromptTokens, ev.Usage.CompletionTokens)
			}
			log.With("run_id", ev.RunID).Info("Run completed")

		case RunFailed:
			return nil, fmt.Errorf("run %s: %w: %s", ev.RunID, ErrRunFailed, ev.Failure)

		default:
			log.With("event", ev.Name).Debug("Ignoring stream event")
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading run stream: %w", err)
	}
	return next, nil
}

// dispatch produces exactly one output for a tool call, or the error aborting the run.
func (e *executor) dispatch(ctx context.Context, tc openai.RequiredActionFunctionToolCall, tools map[string]toolcall.Tool, trace *agenttrace.Trace) (string, error) {
	log := clog.FromContext(ctx).With("tool", tc.Function.Name).With("id", tc.ID)

	call, err := openaitool.ToolCallFrom(tc)
	if err != nil {
		log.With("error", err).Warn("Undecodable tool arguments")
		trace.BadToolCall(call.ID, call.Name, map[string]any{"arguments": tc.Function.Arguments}, err)
		return params.Error("%v", err), nil
	}

	tool, ok := tools[call.Name]
	if !ok {
		log.Error("Unknown tool requested")
		trace.BadToolCall(call.ID, call.Name, call.Args, fmt.Errorf("unknown tool: %q", call.Name))
		return params.Error("unknown tool: %q", call.Name), nil
	}

	log.Info("Executing tool call")
	e.genaiMetrics.RecordToolCall(ctx, e.modelName, call.Name)
	return tool.Handler(ctx, call, trace)
}
