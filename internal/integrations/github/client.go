package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
)

// Service is the backend surface the pipeline consumes. It is an interface
// so steps can be tested against a fake.
type Service interface {
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	ListLabels(ctx context.Context, owner, repo string, number int) ([]string, error)
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error
	UpdateIssueBody(ctx context.Context, owner, repo string, number int, body string) error
	RenderMarkdown(ctx context.Context, text string) (string, error)
}

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
}

// GetFileContent fetches a file from the repository at the given ref
// (default branch when ref is empty). Base64 transfer encoding is handled by
// the API client.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// ListLabels returns the names of the labels currently on the issue.
func (c *Client) ListLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := c.client.Issues.ListLabelsByIssue(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels for #%d: %w", number, err)
		}
		for _, l := range labels {
			names = append(names, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// AddLabels adds labels to an issue.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return fmt.Errorf("failed to add labels to #%d: %w", number, err)
	}
	return nil
}

// RemoveLabel removes one label from an issue.
func (c *Client) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	_, err := c.client.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label)
	if err != nil {
		return fmt.Errorf("failed to remove label %q from #%d: %w", label, number, err)
	}
	return nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}
	comment := &github.IssueComment{Body: github.String(body)}
	_, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return fmt.Errorf("failed to create comment on #%d: %w", number, err)
	}
	return nil
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	_, _, err := c.client.Issues.EditComment(ctx, owner, repo, commentID, comment)
	if err != nil {
		return fmt.Errorf("failed to update comment %d: %w", commentID, err)
	}
	return nil
}

// UpdateIssueBody replaces the body of an issue.
func (c *Client) UpdateIssueBody(ctx context.Context, owner, repo string, number int, body string) error {
	req := &github.IssueRequest{Body: github.String(body)}
	_, _, err := c.client.Issues.Edit(ctx, owner, repo, number, req)
	if err != nil {
		return fmt.Errorf("failed to update issue #%d: %w", number, err)
	}
	return nil
}

// RenderMarkdown renders markdown to HTML via the Markdown API.
func (c *Client) RenderMarkdown(ctx context.Context, text string) (string, error) {
	rendered, _, err := c.client.Markdown.Render(ctx, text, nil)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}
