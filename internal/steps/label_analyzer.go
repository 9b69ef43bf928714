package steps

import (
	"log"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/engine"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/pipeline"
)

// FixedLabel is the label attached to issues referenced by fix/close markers
// in push commit messages. Push events never consult the rule list.
const FixedLabel = "fixed"

// LabelAnalyzer runs the label rules against the event content.
type LabelAnalyzer struct{}

// NewLabelAnalyzer creates a new label analyzer step.
func NewLabelAnalyzer(deps *pipeline.Dependencies) *LabelAnalyzer {
	return &LabelAnalyzer{}
}

// Name returns the step name.
func (s *LabelAnalyzer) Name() string {
	return "label_analyzer"
}

// Run decides the label add/remove sets.
func (s *LabelAnalyzer) Run(ctx *pipeline.Context) error {
	if ctx.Event.Type == event.Push {
		if len(ctx.Event.IssueNumbers) == 0 {
			log.Printf("[label_analyzer] push event references no issues, nothing to do")
			ctx.Result.Skipped = true
			ctx.Result.SkipReason = "push event references no issues"
			return pipeline.ErrSkipRun
		}
		log.Printf("[label_analyzer] push event, labeling issues %v as %q",
			ctx.Event.IssueNumbers, FixedLabel)
		ctx.Result.AddLabels = []string{FixedLabel}
		return nil
	}

	analyzer := &engine.Analyzer{
		Content:           ctx.Event.Content(ctx.Params.IncludeTitle),
		AuthorAssociation: ctx.Event.AuthorAssociation,
		Event:             ctx.Event.Type,
	}

	add, remove, err := analyzer.AnalyzeLabels(ctx.Config.Labels)
	if err != nil {
		return err
	}

	ctx.Result.AddLabels = add
	ctx.Result.RemoveLabels = remove
	log.Printf("[label_analyzer] add=%v remove=%v", add, remove)
	return nil
}
