/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package assistantexecutor_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/issueassist/agents/agenttrace"
	"chainguard.dev/issueassist/agents/executor/assistantexecutor"
	"chainguard.dev/issueassist/agents/executor/poll"
	"chainguard.dev/issueassist/agents/toolcall"
	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func newClient(t *testing.T, mux *http.ServeMux, cfg poll.Config) *assistantexecutor.Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	oc := openai.NewClient(
		option.WithBaseURL(srv.URL+"/"),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	c, err := assistantexecutor.NewClient(oc, cfg)
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	return c
}

func fastPoll() poll.Config {
	return poll.Config{Interval: time.Millisecond, MaxWait: time.Second}
}

func writeSSE(w http.ResponseWriter, events ...[2]string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, ev := range events {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev[0], ev[1])
	}
	fmt.Fprint(w, "event: done\ndata: [DONE]\n\n")
}

func TestClientAssistant(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /assistants/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%q,"object":"assistant","created_at":1,"model":"gpt-4o","name":"triage","tools":[]}`, r.PathValue("id"))
	})
	c := newClient(t, mux, fastPoll())

	a, err := c.Assistant(context.Background(), "asst_1")
	if err != nil {
		t.Fatalf("Assistant() = %v", err)
	}
	if a.ID != "asst_1" || a.Model != "gpt-4o" {
		t.Errorf("Assistant(): got = %s/%s, wanted = asst_1/gpt-4o", a.ID, a.Model)
	}
}

func TestClientUpload(t *testing.T) {
	var gotName, gotPurpose, gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		gotName, gotPurpose, gotBody = hdr.Filename, r.FormValue("purpose"), string(body)
		fmt.Fprintf(w, `{"id":"file_1","object":"file","bytes":%d,"created_at":1,"filename":%q,"purpose":"assistants","status":"processed"}`, len(body), hdr.Filename)
	})
	c := newClient(t, mux, fastPoll())

	id, err := c.Upload(context.Background(), "issue-42-x.md", []byte("### Title: Crash"))
	if err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if id != "file_1" {
		t.Errorf("file ID: got = %q, wanted = file_1", id)
	}
	if gotName != "issue-42-x.md" || gotPurpose != "assistants" || gotBody != "### Title: Crash" {
		t.Errorf("multipart: got = (%q, %q, %q)", gotName, gotPurpose, gotBody)
	}
}

func TestClientNewThread(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"id":"thread_1","object":"thread","created_at":1,"tool_resources":{"file_search":{"vector_store_ids":["vs_1"]}}}`)
	})
	c := newClient(t, mux, fastPoll())

	th, err := c.NewThread(context.Background(), "Read the issue", "file_1", map[string]string{"issue": "42: Crash on startup"})
	if err != nil {
		t.Fatalf("NewThread() = %v", err)
	}
	want := assistantexecutor.Thread{ID: "thread_1", IndexID: "vs_1", Prompt: "Read the issue"}
	if diff := cmp.Diff(want, th); diff != "" {
		t.Errorf("NewThread(): (-want +got):\n%s", diff)
	}

	wantMessages := []any{map[string]any{
		"role":    "user",
		"content": "Read the issue",
		"attachments": []any{map[string]any{
			"file_id": "file_1",
			"tools":   []any{map[string]any{"type": "file_search"}},
		}},
	}}
	if diff := cmp.Diff(wantMessages, got["messages"]); diff != "" {
		t.Errorf("request body: (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"issue": "42: Crash on startup"}, got["metadata"]); diff != "" {
		t.Errorf("metadata: (-want +got):\n%s", diff)
	}
}

func TestClientNewThreadWithoutIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":"thread_1","object":"thread","created_at":1}`)
	})
	c := newClient(t, mux, fastPoll())

	if _, err := c.NewThread(context.Background(), "Read the issue", "file_1", nil); err == nil {
		t.Error("NewThread() = nil, wanted error for a thread without vector store")
	}
}

func TestClientAttachFile(t *testing.T) {
	var gotIndex, gotFile string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /vector_stores/{id}/files", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FileID string `json:"file_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotIndex, gotFile = r.PathValue("id"), body.FileID
		fmt.Fprintf(w, `{"id":%q,"object":"vector_store.file","created_at":1,"status":"in_progress","usage_bytes":0,"vector_store_id":%q}`, body.FileID, gotIndex)
	})
	c := newClient(t, mux, fastPoll())

	if err := c.AttachFile(context.Background(), "vs_1", "file_2"); err != nil {
		t.Fatalf("AttachFile() = %v", err)
	}
	if gotIndex != "vs_1" || gotFile != "file_2" {
		t.Errorf("AttachFile(): got = %s/%s, wanted = vs_1/file_2", gotIndex, gotFile)
	}
}

func vectorStoreHandler(statuses ...string) (http.HandlerFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		status := statuses[len(statuses)-1]
		if n < len(statuses) {
			status = statuses[n]
		}
		fmt.Fprintf(w, `{"id":%q,"object":"vector_store","created_at":1,"name":"","status":%q,"usage_bytes":0,"file_counts":{"cancelled":0,"completed":0,"failed":0,"in_progress":0,"total":0}}`, r.PathValue("id"), status)
	}, &calls
}

func TestClientWaitForIndex(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []string
		wantCalls int32
	}{{
		name:      "already completed",
		statuses:  []string{"completed"},
		wantCalls: 1,
	}, {
		name:      "in progress then completed",
		statuses:  []string{"in_progress", "in_progress", "completed"},
		wantCalls: 3,
	}, {
		name:      "expired stops waiting",
		statuses:  []string{"in_progress", "expired"},
		wantCalls: 2,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, calls := vectorStoreHandler(tt.statuses...)
			mux := http.NewServeMux()
			mux.HandleFunc("GET /vector_stores/{id}", h)
			c := newClient(t, mux, fastPoll())

			if err := c.WaitForIndex(context.Background(), "vs_1"); err != nil {
				t.Fatalf("WaitForIndex() = %v", err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls: got = %d, wanted = %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClientWaitForIndexTimeout(t *testing.T) {
	h, _ := vectorStoreHandler("in_progress")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /vector_stores/{id}", h)
	c := newClient(t, mux, poll.Config{Interval: time.Millisecond, MaxWait: 20 * time.Millisecond})

	if err := c.WaitForIndex(context.Background(), "vs_1"); !errors.Is(err, poll.ErrTimeout) {
		t.Fatalf("WaitForIndex() = %v, wanted poll.ErrTimeout", err)
	}
}

func TestClientWaitForIndexAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /vector_stores/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"message":"No vector store found","type":"invalid_request_error"}}`)
	})
	c := newClient(t, mux, fastPoll())

	err := c.WaitForIndex(context.Background(), "vs_missing")
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("WaitForIndex() = %v, wanted *openai.Error", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status: got = %d, wanted = 404", apiErr.StatusCode)
	}
}

func TestNewClientValidatesPollConfig(t *testing.T) {
	if _, err := assistantexecutor.NewClient(openai.NewClient(option.WithAPIKey("k")), poll.Config{}); err == nil {
		t.Error("NewClient() = nil, wanted error for zero interval")
	}
}

// TestExecuteOverSSE drives a full tool round trip through the streaming endpoints.
func TestExecuteOverSSE(t *testing.T) {
	var submitted struct {
		ToolOutputs []struct {
			ToolCallID string `json:"tool_call_id"`
			Output     string `json:"output"`
		} `json:"tool_outputs"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads/{thread}/runs", func(w http.ResponseWriter, _ *http.Request) {
		writeSSE(w,
			[2]string{"thread.run.created", `{"id":"run_1","object":"thread.run","thread_id":"thread_1","assistant_id":"asst_1","status":"queued","model":"gpt-4o"}`},
			[2]string{"thread.run.requires_action", `{"id":"run_1","object":"thread.run","thread_id":"thread_1","assistant_id":"asst_1","status":"requires_action","model":"gpt-4o","required_action":{"type":"submit_tool_outputs","submit_tool_outputs":{"tool_calls":[{"id":"call_1","type":"function","function":{"name":"search_github","arguments":"{\"query\":\"crash\"}"}}]}}}`},
		)
	})
	mux.HandleFunc("POST /threads/{thread}/runs/{run}/submit_tool_outputs", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeSSE(w,
			[2]string{"thread.message.completed", `{"id":"msg_1","object":"thread.message","created_at":1,"thread_id":"thread_1","run_id":"run_1","role":"assistant","status":"completed","content":[{"type":"text","text":{"value":"Found a duplicate.","annotations":[]}}]}`},
			[2]string{"thread.run.completed", `{"id":"run_1","object":"thread.run","thread_id":"thread_1","assistant_id":"asst_1","status":"completed","model":"gpt-4o","usage":{"prompt_tokens":50,"completion_tokens":7,"total_tokens":57}}`},
		)
	})
	c := newClient(t, mux, fastPoll())

	var gotQuery string
	tools := toolcall.Tools(toolcall.Tool{
		Def: toolcall.Definition{Name: "search_github"},
		Handler: func(_ context.Context, call toolcall.ToolCall, trace *agenttrace.Trace) (string, error) {
			gotQuery, _ = toolcall.Param[string](call, trace, "query")
			return "Found 0 related issues:", nil
		},
	})

	exec, err := assistantexecutor.New(c, "asst_1")
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	trace, err := exec.Execute(context.Background(), thread, tools)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if gotQuery != "crash" {
		t.Errorf("query: got = %q, wanted = crash", gotQuery)
	}
	if len(submitted.ToolOutputs) != 1 || submitted.ToolOutputs[0].ToolCallID != "call_1" || submitted.ToolOutputs[0].Output != "Found 0 related issues:" {
		t.Errorf("submitted outputs: got = %+v", submitted.ToolOutputs)
	}
	if diff := cmp.Diff([]string{"Found a duplicate."}, trace.Replies); diff != "" {
		t.Errorf("Replies: (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(agenttrace.Usage{PromptTokens: 50, CompletionTokens: 7}, trace.Usage); diff != "" {
		t.Errorf("Usage: (-want +got):\n%s", diff)
	}
}
