/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issues

import "github.com/google/go-github/v84/github"

// Issue is the subset of a GitHub issue the assistant sees.
type Issue struct {
	Number int
	Title  string
	Author string
	State  string
	// Labels are label names in the order GitHub returns them.
	Labels   []string
	Body     string
	Comments []Comment
}

// Comment is a single issue comment.
type Comment struct {
	Author string
	Body   string
}

// FromGitHub converts a go-github issue. Comments are not populated.
func FromGitHub(gi *github.Issue) Issue {
	issue := Issue{
		Number: gi.GetNumber(),
		Title:  gi.GetTitle(),
		Author: gi.GetUser().GetLogin(),
		State:  gi.GetState(),
		Body:   gi.GetBody(),
	}
	for _, l := range gi.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
	}
	return issue
}

func commentFromGitHub(c *github.IssueComment) Comment {
	return Comment{
		Author: c.GetUser().GetLogin(),
		Body:   c.GetBody(),
	}
}
