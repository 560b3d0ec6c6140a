/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package assistantexecutor

import (
	"bytes"
	"context"
	"fmt"

	"chainguard.dev/issueassist/agents/executor/poll"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// Thread identifies a conversation thread and the retrieval index bound to it.
type Thread struct {
	ID      string
	IndexID string
	// Prompt is the seed message the thread was created with.
	Prompt string
}

// ToolOutput answers one tool call of a paused run.
type ToolOutput struct {
	CallID string
	Output string
}

// Client wraps the OpenAI Assistants endpoints used by an assistant run.
type Client struct {
	oc   openai.Client
	poll poll.Config
}

// NewClient creates a Client. pollCfg bounds WaitForIndex.
func NewClient(oc openai.Client, pollCfg poll.Config) (*Client, error) {
	if err := pollCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poll config: %w", err)
	}
	return &Client{oc: oc, poll: pollCfg}, nil
}

// Assistant resolves an assistant by ID.
func (c *Client) Assistant(ctx context.Context, id string) (*openai.Assistant, error) {
	a, err := c.oc.Beta.Assistants.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting assistant %s: %w", id, err)
	}
	return a, nil
}

// Upload stores content as an assistants file and returns its ID.
func (c *Client) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	f, err := c.oc.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(content), filename, "text/markdown"),
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", filename, err)
	}
	clog.FromContext(ctx).With("file_id", f.ID).With("filename", filename).Info("Uploaded file")
	return f.ID, nil
}

// NewThread creates a thread seeded with one user message carrying fileID as
// a file_search attachment. The service creates the thread's retrieval index
// from the attachment. metadata is stored on the thread.
func (c *Client) NewThread(ctx context.Context, prompt, fileID string, metadata map[string]string) (Thread, error) {
	th, err := c.oc.Beta.Threads.New(ctx, openai.BetaThreadNewParams{
		Metadata: shared.Metadata(metadata),
		Messages: []openai.BetaThreadNewParamsMessage{{
			Role: "user",
			Content: openai.BetaThreadNewParamsMessageContentUnion{
				OfString: openai.String(prompt),
			},
			Attachments: []openai.BetaThreadNewParamsMessageAttachment{{
				FileID: openai.String(fileID),
				Tools: []openai.BetaThreadNewParamsMessageAttachmentToolUnion{{
					OfFileSearch: &openai.BetaThreadNewParamsMessageAttachmentToolFileSearch{},
				}},
			}},
		}},
	})
	if err != nil {
		return Thread{}, fmt.Errorf("creating thread: %w", err)
	}

	ids := th.ToolResources.FileSearch.VectorStoreIDs
	if len(ids) == 0 {
		return Thread{}, fmt.Errorf("thread %s has no vector store", th.ID)
	}

	clog.FromContext(ctx).With("thread_id", th.ID).With("vector_store_id", ids[0]).Info("Created thread")
	return Thread{ID: th.ID, IndexID: ids[0], Prompt: prompt}, nil
}

// AttachFile adds an uploaded file to a retrieval index.
func (c *Client) AttachFile(ctx context.Context, indexID, fileID string) error {
	if _, err := c.oc.VectorStores.Files.New(ctx, indexID, openai.VectorStoreFileNewParams{
		FileID: fileID,
	}); err != nil {
		return fmt.Errorf("attaching file %s to vector store %s: %w", fileID, indexID, err)
	}
	return nil
}

// WaitForIndex blocks while the retrieval index reports in_progress.
// The wait is bounded by the client's poll config and fails with poll.ErrTimeout.
func (c *Client) WaitForIndex(ctx context.Context, indexID string) error {
	vs, err := poll.Until(ctx, c.poll, "wait for vector store "+indexID,
		func(vs *openai.VectorStore) bool {
			return vs.Status != openai.VectorStoreStatusInProgress
		},
		func(ctx context.Context) (*openai.VectorStore, error) {
			vs, err := c.oc.VectorStores.Get(ctx, indexID)
			if err != nil {
				return nil, fmt.Errorf("getting vector store %s: %w", indexID, err)
			}
			return vs, nil
		})
	if err != nil {
		return err
	}

	clog.FromContext(ctx).With("vector_store_id", indexID).With("status", vs.Status).Info("Vector store ready")
	return nil
}

// StartRun starts a streaming run of the assistant on a thread.
// A nil tools slice keeps the assistant's own tool definitions.
func (c *Client) StartRun(ctx context.Context, threadID, assistantID string, tools []openai.AssistantToolUnionParam) Stream {
	return newSSEStream(c.oc.Beta.Threads.Runs.NewStreaming(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
		Tools:       tools,
	}))
}

// SubmitToolOutputs resumes a paused run and streams its continuation.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) Stream {
	params := openai.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(outputs)),
	}
	for _, o := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(o.CallID),
			Output:     openai.String(o.Output),
		})
	}
	return newSSEStream(c.oc.Beta.Threads.Runs.SubmitToolOutputsStreaming(ctx, threadID, runID, params))
}
