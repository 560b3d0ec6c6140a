/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package issues fetches GitHub issues and renders them as markdown documents
// for upload to an assistant's retrieval index.
package issues
