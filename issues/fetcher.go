/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issues

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// NewGitHubClient returns a GitHub client authenticated with a static token
// and pointed at baseURL (e.g. https://api.github.com/).
func NewGitHubClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
	}
	gh.BaseURL = u
	return gh, nil
}

// SearchError reports a failed issue search. Message is the API's own
// explanation when it provided one.
type SearchError struct {
	Query   string
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("searching %q: %s", e.Query, e.Message)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Fetcher reads issues and comments from GitHub.
type Fetcher struct {
	gh *github.Client
}

// NewFetcher creates a Fetcher over gh.
func NewFetcher(gh *github.Client) *Fetcher {
	return &Fetcher{gh: gh}
}

// Get fetches a single issue without its comments.
func (f *Fetcher) Get(ctx context.Context, owner, repo string, number int) (Issue, error) {
	gi, _, err := f.gh.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return Issue{}, fmt.Errorf("fetch issue %s/%s#%d: %w", owner, repo, number, err)
	}
	return FromGitHub(gi), nil
}

// Comments lists every comment of an issue, oldest first.
func (f *Fetcher) Comments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	opts := &github.IssueListCommentsOptions{
		Sort:        github.Ptr("created"),
		Direction:   github.Ptr("asc"),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var comments []Comment
	for {
		page, resp, err := f.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list comments %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, c := range page {
			comments = append(comments, commentFromGitHub(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// WithComments returns issue with its comments populated.
func (f *Fetcher) WithComments(ctx context.Context, owner, repo string, issue Issue) (Issue, error) {
	comments, err := f.Comments(ctx, owner, repo, issue.Number)
	if err != nil {
		return Issue{}, err
	}
	issue.Comments = comments
	return issue, nil
}

// Search runs an issue search and returns the matches in API order.
// Failures are returned as *SearchError.
func (f *Fetcher) Search(ctx context.Context, query string) ([]Issue, error) {
	res, _, err := f.gh.Search.Issues(ctx, query, nil)
	if err != nil {
		msg := err.Error()
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Message != "" {
			msg = ghErr.Message
		}
		return nil, &SearchError{Query: query, Message: msg, Err: err}
	}

	found := make([]Issue, 0, len(res.Issues))
	for _, gi := range res.Issues {
		found = append(found, FromGitHub(gi))
	}
	clog.FromContext(ctx).With("query", query).With("total", res.GetTotal()).Info("Searched issues")
	return found, nil
}
