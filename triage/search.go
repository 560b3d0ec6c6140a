/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/issueassist/issues"
	"github.com/chainguard-dev/clog"
)

// IssueSource is the GitHub side of a triage. *issues.Fetcher implements it.
type IssueSource interface {
	WithComments(ctx context.Context, owner, repo string, issue issues.Issue) (issues.Issue, error)
	Search(ctx context.Context, query string) ([]issues.Issue, error)
}

// Index is the retrieval index side of a triage. *assistantexecutor.Client implements it.
type Index interface {
	Upload(ctx context.Context, filename string, content []byte) (string, error)
	AttachFile(ctx context.Context, indexID, fileID string) error
	WaitForIndex(ctx context.Context, indexID string) error
}

// RelatedSearch uploads issues matching a search into a retrieval index.
type RelatedSearch struct {
	Source IssueSource
	Index  Index
	Owner  string
	Repo   string
	// Max bounds how many issues one search uploads.
	Max int
}

// Run searches for query, uploads up to Max matches not in exclude (with
// their comments) to the index and returns the summary handed to the assistant.
//
// The index is waited on before returning, even when nothing was attached.
// A failed search is reported in the summary. Upload, attach and readiness
// errors are returned.
func (s *RelatedSearch) Run(ctx context.Context, query, indexID string, exclude []int) (string, error) {
	log := clog.FromContext(ctx).With("query", query)

	found, err := s.Source.Search(ctx, query)
	if err != nil {
		var searchErr *issues.SearchError
		if errors.As(err, &searchErr) {
			log.With("error", err).Warn("Search failed")
			return "Search failed: " + searchErr.Message, nil
		}
		return "", err
	}

	var lines []string
	for _, issue := range found {
		if len(lines) >= s.Max {
			break
		}
		if slices.Contains(exclude, issue.Number) {
			continue
		}

		full, err := s.Source.WithComments(ctx, s.Owner, s.Repo, issue)
		if err != nil {
			return "", err
		}
		doc := issues.NewDocument(full, true)
		fileID, err := s.Index.Upload(ctx, doc.Filename, []byte(doc.Content))
		if err != nil {
			return "", err
		}
		if err := s.Index.AttachFile(ctx, indexID, fileID); err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("Issue number: %d, file name: %s", issue.Number, doc.Filename))
	}

	if err := s.Index.WaitForIndex(ctx, indexID); err != nil {
		return "", err
	}

	log.With("related", len(lines)).Info("Uploaded related issues")
	header := fmt.Sprintf("Found %d issues and attached as files to this thread:", len(lines))
	return strings.Join(append([]string{header}, lines...), "\n"), nil
}
