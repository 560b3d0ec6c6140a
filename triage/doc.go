/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package triage runs an OpenAI assistant over a GitHub issue.
//
// The Orchestrator uploads the issue, opens a thread whose retrieval index
// holds it, and hands the run to an assistantexecutor with three tools:
// add_issue_labels and set_issue_title acknowledge the requested change
// without applying it, and search_github uploads related issues into the
// same index through RelatedSearch.
package triage
