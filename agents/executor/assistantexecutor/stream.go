/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package assistantexecutor

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
)

// EventKind classifies the stream events the executor reacts to.
type EventKind string

const (
	MessageCompleted EventKind = "message_completed"
	RequiresAction   EventKind = "requires_action"
	RunCompleted     EventKind = "run_completed"
	RunFailed        EventKind = "run_failed"
	Other            EventKind = "other"
)

// Usage is the token consumption of a completed run.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Event is the normalized view of one assistant stream event.
type Event struct {
	Kind EventKind
	// Name is the raw server-sent event name, e.g. thread.run.step.created.
	Name      string
	ThreadID  string
	RunID     string
	Model     string
	Texts     []string
	ToolCalls []openai.RequiredActionFunctionToolCall
	Usage     Usage
	Failure   string
}

// FromStreamEvent normalizes an assistant stream event.
func FromStreamEvent(ev openai.AssistantStreamEventUnion) Event {
	switch ev.Event {
	case "thread.message.completed":
		msg := ev.AsThreadMessageCompleted().Data
		e := Event{Kind: MessageCompleted, Name: string(ev.Event), ThreadID: msg.ThreadID, RunID: msg.RunID}
		for _, c := range msg.Content {
			if c.Type == "text" {
				e.Texts = append(e.Texts, c.Text.Value)
			}
		}
		return e

	case "thread.run.requires_action":
		run := ev.AsThreadRunRequiresAction().Data
		return Event{
			Kind:      RequiresAction,
			Name:      string(ev.Event),
			ThreadID:  run.ThreadID,
			RunID:     run.ID,
			Model:     run.Model,
			ToolCalls: run.RequiredAction.SubmitToolOutputs.ToolCalls,
		}

	case "thread.run.completed":
		run := ev.AsThreadRunCompleted().Data
		return Event{
			Kind:     RunCompleted,
			Name:     string(ev.Event),
			ThreadID: run.ThreadID,
			RunID:    run.ID,
			Model:    run.Model,
			Usage: Usage{
				PromptTokens:     run.Usage.PromptTokens,
				CompletionTokens: run.Usage.CompletionTokens,
			},
		}

	case "thread.run.failed":
		run := ev.AsThreadRunFailed().Data
		failure := run.LastError.Message
		if failure == "" {
			failure = string(run.LastError.Code)
		}
		return Event{
			Kind:     RunFailed,
			Name:     string(ev.Event),
			ThreadID: run.ThreadID,
			RunID:    run.ID,
			Model:    run.Model,
			Failure:  failure,
		}

	default:
		return Event{Kind: Other, Name: string(ev.Event)}
	}
}

// Stream is the event sequence of one streaming run request.
type Stream interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

type sseStream struct {
	s *ssestream.Stream[openai.AssistantStreamEventUnion]
}

func newSSEStream(s *ssestream.Stream[openai.AssistantStreamEventUnion]) Stream {
	return sseStream{s: s}
}

func (s sseStream) Next() bool     { return s.s.Next() }
func (s sseStream) Current() Event { return FromStreamEvent(s.s.Current()) }
func (s sseStream) Err() error     { return s.s.Err() }
func (s sseStream) Close() error   { return s.s.Close() }
