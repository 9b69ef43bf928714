// Package event adapts the GitHub Actions runtime (event name, payload file,
// repository variables) into the fixed-shape context the rule engine consumes.
package event

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// Type identifies a triggering event.
type Type string

const (
	Issues            Type = "issues"
	PullRequest       Type = "pull_request"
	PullRequestTarget Type = "pull_request_target"
	IssueComment      Type = "issue_comment"
	Push              Type = "push"
)

// KnownTypes is the closed set of recognized event types.
var KnownTypes = map[Type]bool{
	Issues:            true,
	PullRequest:       true,
	PullRequestTarget: true,
	IssueComment:      true,
	Push:              true,
}

// Context is the immutable per-run view of the triggering event.
type Context struct {
	Type  Type
	Owner string
	Repo  string

	// IssueNumber is set for every event type except push.
	IssueNumber int

	// IssueNumbers is set only for push events: the issues referenced by
	// fix/close markers in the commit messages, in first-seen order.
	IssueNumbers []int

	Title             string
	Body              string
	AuthorAssociation string
	CreatedAt         string

	// CommentID is non-zero only for issue_comment events.
	CommentID int64
}

// Issues returns the issue numbers this event targets.
func (c *Context) Issues() []int {
	if c.Type == Push {
		return c.IssueNumbers
	}
	return []int{c.IssueNumber}
}

// Content returns the text the rules are matched against. With includeTitle
// the title is prefixed to the body, joined by a blank line.
func (c *Context) Content(includeTitle bool) string {
	if !includeTitle || c.Title == "" {
		return c.Body
	}
	return c.Title + "\n\n" + c.Body
}

// CreatedBefore reports whether the event was created strictly before the
// given cutoff. Events without a creation timestamp are never filtered.
func (c *Context) CreatedBefore(cutoff time.Time) (bool, error) {
	if c.CreatedAt == "" {
		return false, nil
	}
	created, err := time.Parse(time.RFC3339, c.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("invalid event timestamp %q: %w", c.CreatedAt, err)
	}
	return created.Before(cutoff), nil
}

// Payload shapes for the event kinds we consume. Only the fields the rule
// engine reads are decoded.
type issueFields struct {
	Number            int    `json:"number"`
	Title             string `json:"title"`
	Body              string `json:"body"`
	AuthorAssociation string `json:"author_association"`
	CreatedAt         string `json:"created_at"`
}

type commentFields struct {
	ID                int64  `json:"id"`
	Body              string `json:"body"`
	AuthorAssociation string `json:"author_association"`
	CreatedAt         string `json:"created_at"`
}

type payload struct {
	Issue       *issueFields   `json:"issue"`
	PullRequest *issueFields   `json:"pull_request"`
	Comment     *commentFields `json:"comment"`
	Commits     []struct {
		Message string `json:"message"`
	} `json:"commits"`
}

// Parse builds a Context from an event name and its raw webhook payload.
// An event name outside the recognized set is a fatal error.
func Parse(eventName string, data []byte) (*Context, error) {
	t := Type(eventName)
	if !KnownTypes[t] {
		return nil, fmt.Errorf("unrecognized event type %q", eventName)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	ctx := &Context{Type: t}
	switch t {
	case Issues:
		if p.Issue == nil {
			return nil, fmt.Errorf("issues event payload has no issue")
		}
		ctx.IssueNumber = p.Issue.Number
		ctx.Title = p.Issue.Title
		ctx.Body = p.Issue.Body
		ctx.AuthorAssociation = p.Issue.AuthorAssociation
		ctx.CreatedAt = p.Issue.CreatedAt

	case PullRequest, PullRequestTarget:
		if p.PullRequest == nil {
			return nil, fmt.Errorf("%s event payload has no pull_request", t)
		}
		ctx.IssueNumber = p.PullRequest.Number
		ctx.Title = p.PullRequest.Title
		ctx.Body = p.PullRequest.Body
		ctx.AuthorAssociation = p.PullRequest.AuthorAssociation
		ctx.CreatedAt = p.PullRequest.CreatedAt

	case IssueComment:
		if p.Issue == nil || p.Comment == nil {
			return nil, fmt.Errorf("issue_comment event payload is missing issue or comment")
		}
		ctx.IssueNumber = p.Issue.Number
		ctx.Title = p.Issue.Title
		ctx.Body = p.Comment.Body
		ctx.AuthorAssociation = p.Comment.AuthorAssociation
		ctx.CreatedAt = p.Comment.CreatedAt
		ctx.CommentID = p.Comment.ID

	case Push:
		for _, commit := range p.Commits {
			ctx.IssueNumbers = appendNumbers(ctx.IssueNumbers, commit.Message)
		}
	}

	return ctx, nil
}

// fixClosePattern matches "fix #12", "Closes #3" and the issues-URL form
// "close https://host/owner/repo/issues/34". The verb is case-insensitive.
var fixClosePattern = regexp.MustCompile(`(?i)\b(?:fix(?:e[sd])?|close[sd]?)\s+(?:\S*/issues/(\d+)|#(\d+))`)

func appendNumbers(nums []int, message string) []int {
	for _, m := range fixClosePattern.FindAllStringSubmatch(message, -1) {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		n := 0
		for _, d := range digits {
			n = n*10 + int(d-'0')
		}
		if n == 0 || containsInt(nums, n) {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

func containsInt(nums []int, n int) bool {
	for _, v := range nums {
		if v == n {
			return true
		}
	}
	return false
}

// FromActionsEnv builds a Context from the standard Actions environment:
// GITHUB_EVENT_NAME, GITHUB_EVENT_PATH and GITHUB_REPOSITORY.
func FromActionsEnv() (*Context, error) {
	eventName := os.Getenv("GITHUB_EVENT_NAME")
	if eventName == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_NAME is not set")
	}

	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_PATH is not set")
	}
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	ctx, err := Parse(eventName, data)
	if err != nil {
		return nil, err
	}

	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		parts := strings.SplitN(repo, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid GITHUB_REPOSITORY %q", repo)
		}
		ctx.Owner = parts[0]
		ctx.Repo = parts[1]
	}

	return ctx, nil
}
