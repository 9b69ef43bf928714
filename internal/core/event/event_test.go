package event

import (
	"reflect"
	"testing"
	"time"
)

func TestParseIssuesEvent(t *testing.T) {
	payload := `{
		"issue": {
			"number": 7,
			"title": "Crash on start",
			"body": "It crashes",
			"author_association": "NONE",
			"created_at": "2024-03-01T10:00:00Z"
		}
	}`

	ctx, err := Parse("issues", []byte(payload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ctx.Type != Issues {
		t.Errorf("Expected type issues, got %q", ctx.Type)
	}
	if ctx.IssueNumber != 7 {
		t.Errorf("Expected issue number 7, got %d", ctx.IssueNumber)
	}
	if ctx.Title != "Crash on start" || ctx.Body != "It crashes" {
		t.Errorf("Unexpected title/body: %q / %q", ctx.Title, ctx.Body)
	}
	if ctx.AuthorAssociation != "NONE" {
		t.Errorf("Expected author association NONE, got %q", ctx.AuthorAssociation)
	}
	if ctx.CommentID != 0 {
		t.Errorf("Expected no comment id, got %d", ctx.CommentID)
	}
}

func TestParsePullRequestEvent(t *testing.T) {
	payload := `{
		"pull_request": {
			"number": 12,
			"title": "Fix thing",
			"body": "does fix",
			"author_association": "MEMBER",
			"created_at": "2024-03-01T10:00:00Z"
		}
	}`

	for _, name := range []string{"pull_request", "pull_request_target"} {
		ctx, err := Parse(name, []byte(payload))
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", name, err)
		}
		if ctx.IssueNumber != 12 {
			t.Errorf("Parse(%s): expected number 12, got %d", name, ctx.IssueNumber)
		}
	}
}

func TestParseIssueCommentEvent(t *testing.T) {
	payload := `{
		"issue": {"number": 3, "title": "Old issue"},
		"comment": {
			"id": 9001,
			"body": "new info",
			"author_association": "COLLABORATOR",
			"created_at": "2024-04-01T00:00:00Z"
		}
	}`

	ctx, err := Parse("issue_comment", []byte(payload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ctx.IssueNumber != 3 {
		t.Errorf("Expected issue number 3, got %d", ctx.IssueNumber)
	}
	if ctx.Body != "new info" {
		t.Errorf("Expected comment body, got %q", ctx.Body)
	}
	if ctx.CommentID != 9001 {
		t.Errorf("Expected comment id 9001, got %d", ctx.CommentID)
	}
	if ctx.AuthorAssociation != "COLLABORATOR" {
		t.Errorf("Expected comment author association, got %q", ctx.AuthorAssociation)
	}
}

func TestParsePushEventExtractsIssueNumbers(t *testing.T) {
	payload := `{
		"commits": [
			{"message": "Fix #12\n\nClose https://x/issues/34\n\n"},
			{"message": "fixes #12 again"},
			{"message": "unrelated work"}
		]
	}`

	ctx, err := Parse("push", []byte(payload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(ctx.IssueNumbers, []int{12, 34}) {
		t.Errorf("Expected issue numbers [12 34], got %v", ctx.IssueNumbers)
	}
	if !reflect.DeepEqual(ctx.Issues(), []int{12, 34}) {
		t.Errorf("Issues() should return the push numbers, got %v", ctx.Issues())
	}
}

func TestParsePushVerbVariants(t *testing.T) {
	tests := []struct {
		message string
		want    []int
	}{
		{"Fix #1", []int{1}},
		{"fixed #2", []int{2}},
		{"Closes #3", []int{3}},
		{"CLOSED #4", []int{4}},
		{"prefix #5", nil},
		{"fix it later", nil},
		{"close https://github.com/o/r/issues/77", []int{77}},
	}

	for _, tt := range tests {
		got := appendNumbers(nil, tt.message)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("appendNumbers(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestParseRejectsUnknownEvent(t *testing.T) {
	if _, err := Parse("deployment", []byte("{}")); err == nil {
		t.Fatal("Expected error for unknown event type")
	}
}

func TestParseRejectsMissingPayloadSection(t *testing.T) {
	if _, err := Parse("issues", []byte("{}")); err == nil {
		t.Error("Expected error for issues payload without issue")
	}
	if _, err := Parse("issue_comment", []byte(`{"issue":{"number":1}}`)); err == nil {
		t.Error("Expected error for issue_comment payload without comment")
	}
}

func TestContentIncludeTitle(t *testing.T) {
	ctx := &Context{Title: "Title here", Body: "body text"}

	if got := ctx.Content(false); got != "body text" {
		t.Errorf("Content(false) = %q", got)
	}
	if got := ctx.Content(true); got != "Title here\n\nbody text" {
		t.Errorf("Content(true) = %q", got)
	}

	empty := &Context{Body: "only body"}
	if got := empty.Content(true); got != "only body" {
		t.Errorf("Content with empty title = %q", got)
	}
}

func TestCreatedBefore(t *testing.T) {
	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	earlier := &Context{CreatedAt: "2024-02-28T12:00:00Z"}
	before, err := earlier.CreatedBefore(cutoff)
	if err != nil {
		t.Fatalf("CreatedBefore failed: %v", err)
	}
	if !before {
		t.Error("Expected earlier event to be before cutoff")
	}

	later := &Context{CreatedAt: "2024-03-02T12:00:00Z"}
	before, err = later.CreatedBefore(cutoff)
	if err != nil {
		t.Fatalf("CreatedBefore failed: %v", err)
	}
	if before {
		t.Error("Expected later event not to be before cutoff")
	}

	missing := &Context{}
	before, err = missing.CreatedBefore(cutoff)
	if err != nil || before {
		t.Error("Expected missing timestamp to never filter")
	}

	bad := &Context{CreatedAt: "not a time"}
	if _, err := bad.CreatedBefore(cutoff); err == nil {
		t.Error("Expected error for malformed timestamp")
	}
}
