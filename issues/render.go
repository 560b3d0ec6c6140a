/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issues

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Render formats an issue as markdown. Every line, the last included, ends in
// a newline. Nothing is escaped or truncated.
func Render(issue Issue, includeComments bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Title: %s\n", issue.Title)
	fmt.Fprintf(&sb, "### Author: %s\n", issue.Author)
	fmt.Fprintf(&sb, "### State: %s\n", issue.State)
	fmt.Fprintf(&sb, "### Labels: %s\n", strings.Join(issue.Labels, ","))
	fmt.Fprintf(&sb, "\n%s\n", issue.Body)

	if includeComments {
		for _, c := range issue.Comments {
			fmt.Fprintf(&sb, "### Comment by %s\n\n%s\n", c.Author, c.Body)
		}
	}
	return sb.String()
}

// Document is a rendered issue ready for upload.
type Document struct {
	Filename string
	Content  string
}

// NewDocument renders issue under a generated, unique filename.
func NewDocument(issue Issue, includeComments bool) Document {
	return Document{
		Filename: fmt.Sprintf("issue-%d-%s.md", issue.Number, uuid.NewString()),
		Content:  Render(issue, includeComments),
	}
}
