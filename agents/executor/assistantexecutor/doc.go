/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package assistantexecutor drives OpenAI Assistants runs and answers their
// tool calls.
//
// Client wraps the endpoints a run needs: file upload, thread creation,
// retrieval index readiness and attachment, run start and tool-output
// submission. The executor consumes run streams from a worklist:
//
//	client, err := assistantexecutor.NewClient(openai.NewClient(), poll.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	exec, err := assistantexecutor.New(client, assistantID,
//	    assistantexecutor.WithMaxToolRounds(25),
//	)
//	if err != nil {
//	    return err
//	}
//
//	trace, err := exec.Execute(ctx, thread, tools)
//
// Every requires_action event is answered with exactly one output per tool
// call. Unknown tools and undecodable arguments are answered with an error
// text and recorded as bad tool calls on the trace. A run reporting failure
// yields ErrRunFailed; exceeding the tool round limit yields poll.ErrTimeout.
// A handler returning an error aborts the run with that error.
package assistantexecutor
