package steps

import (
	"log"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/engine"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/pipeline"
)

// CommentAnalyzer runs the comment rules against the event content.
type CommentAnalyzer struct {
	github engine.Renderer
}

// NewCommentAnalyzer creates a new comment analyzer step.
func NewCommentAnalyzer(deps *pipeline.Dependencies) *CommentAnalyzer {
	return &CommentAnalyzer{github: deps.GitHub}
}

// Name returns the step name.
func (s *CommentAnalyzer) Name() string {
	return "comment_analyzer"
}

// Run decides the comment add/update sets. Push events carry no comment
// semantics and pass through untouched.
func (s *CommentAnalyzer) Run(ctx *pipeline.Context) error {
	if ctx.Event.Type == event.Push {
		return nil
	}
	if len(ctx.Config.Comments) == 0 {
		return nil
	}

	analyzer := &engine.Analyzer{
		Content:           ctx.Event.Content(ctx.Params.IncludeTitle),
		AuthorAssociation: ctx.Event.AuthorAssociation,
		Event:             ctx.Event.Type,
		Links:             engine.NewLinkExtractor(s.github),
	}

	actions, err := analyzer.AnalyzeComments(ctx.Ctx, ctx.Config.Comments)
	if err != nil {
		return err
	}

	ctx.Result.AddComments = actions.Add
	ctx.Result.UpdateComments = actions.Update
	log.Printf("[comment_analyzer] add=%d update=%d", len(actions.Add), len(actions.Update))
	return nil
}
