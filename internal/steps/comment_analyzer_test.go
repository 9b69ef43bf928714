package steps

import (
	"reflect"
	"testing"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/config"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
)

func TestCommentAnalyzerProducesActions(t *testing.T) {
	ctx := newTestContext(&event.Context{
		Type: event.Issues,
		Body: "please help",
	}, newFakeService())
	ctx.Config = &config.RuleConfig{
		Comments: []config.RuleItem{
			{Name: "helper", Content: "docs are at ${body}", Regexes: []string{"help"},
				Mode: config.Mode{Add: config.ModeSet{All: true}}, Type: config.CommentAdd},
		},
	}

	step := NewCommentAnalyzer(ctx.Deps)
	if err := step.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(ctx.Result.AddComments, []string{"docs are at please help"}) {
		t.Errorf("Expected substituted comment, got %v", ctx.Result.AddComments)
	}
}

func TestCommentAnalyzerIgnoresPush(t *testing.T) {
	ctx := newTestContext(&event.Context{Type: event.Push, IssueNumbers: []int{1}}, newFakeService())
	ctx.Config = &config.RuleConfig{
		Comments: []config.RuleItem{
			{Name: "always", Content: "always", Mode: config.Mode{Add: config.ModeSet{All: true}}},
		},
	}

	step := NewCommentAnalyzer(ctx.Deps)
	if err := step.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(ctx.Result.AddComments) != 0 {
		t.Errorf("Expected no comments for push, got %v", ctx.Result.AddComments)
	}
}
