package steps

import (
	"fmt"
	"log"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/pipeline"
	"github.com/MaaAssistantArknights/issue-checker/internal/integrations/github"
)

// ActionExecutor applies the decided actions through the backend. Each call
// is awaited in order; a failed call is logged as a warning, recorded, and
// never aborts the remaining actions.
type ActionExecutor struct {
	github github.Service
	dryRun bool
}

// NewActionExecutor creates a new action executor step.
func NewActionExecutor(deps *pipeline.Dependencies) *ActionExecutor {
	return &ActionExecutor{
		github: deps.GitHub,
		dryRun: deps.DryRun,
	}
}

// Name returns the step name.
func (s *ActionExecutor) Name() string {
	return "action_executor"
}

// Run applies label and comment actions.
func (s *ActionExecutor) Run(ctx *pipeline.Context) error {
	if s.dryRun {
		for _, n := range ctx.Event.Issues() {
			log.Printf("[action_executor] DRY RUN: #%d add=%v remove=%v",
				n, ctx.Result.AddLabels, ctx.Result.RemoveLabels)
		}
		for range ctx.Result.AddComments {
			log.Printf("[action_executor] DRY RUN: would post comment on #%d", ctx.Event.IssueNumber)
		}
		for range ctx.Result.UpdateComments {
			log.Printf("[action_executor] DRY RUN: would update comment/issue body on #%d", ctx.Event.IssueNumber)
		}
		return nil
	}

	for _, number := range ctx.Event.Issues() {
		s.applyLabels(ctx, number)
	}
	s.applyComments(ctx)
	return nil
}

// applyLabels reads the issue's current labels once, then adds only the
// missing ones and removes only the present ones.
func (s *ActionExecutor) applyLabels(ctx *pipeline.Context, number int) {
	if len(ctx.Result.AddLabels) == 0 && len(ctx.Result.RemoveLabels) == 0 {
		return
	}

	current, err := s.github.ListLabels(ctx.Ctx, ctx.Event.Owner, ctx.Event.Repo, number)
	if err != nil {
		s.warn(ctx, fmt.Errorf("listing labels for #%d: %w", number, err))
		return
	}
	present := make(map[string]bool, len(current))
	for _, name := range current {
		present[name] = true
	}

	var missing []string
	for _, name := range ctx.Result.AddLabels {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		if err := s.github.AddLabels(ctx.Ctx, ctx.Event.Owner, ctx.Event.Repo, number, missing); err != nil {
			s.warn(ctx, err)
		} else {
			log.Printf("[action_executor] added labels %v to #%d", missing, number)
		}
	}

	for _, name := range ctx.Result.RemoveLabels {
		if !present[name] {
			continue
		}
		if err := s.github.RemoveLabel(ctx.Ctx, ctx.Event.Owner, ctx.Event.Repo, number, name); err != nil {
			s.warn(ctx, err)
		} else {
			log.Printf("[action_executor] removed label %q from #%d", name, number)
		}
	}
}

// applyComments posts new comments and applies updates. An update edits the
// triggering comment when the event carries one, the issue body otherwise.
func (s *ActionExecutor) applyComments(ctx *pipeline.Context) {
	number := ctx.Event.IssueNumber

	for _, body := range ctx.Result.AddComments {
		if err := s.github.CreateComment(ctx.Ctx, ctx.Event.Owner, ctx.Event.Repo, number, body); err != nil {
			s.warn(ctx, err)
		} else {
			log.Printf("[action_executor] posted comment on #%d", number)
		}
	}

	for _, body := range ctx.Result.UpdateComments {
		var err error
		if ctx.Event.CommentID != 0 {
			err = s.github.UpdateComment(ctx.Ctx, ctx.Event.Owner, ctx.Event.Repo, ctx.Event.CommentID, body)
		} else {
			err = s.github.UpdateIssueBody(ctx.Ctx, ctx.Event.Owner, ctx.Event.Repo, number, body)
		}
		if err != nil {
			s.warn(ctx, err)
		} else {
			log.Printf("[action_executor] updated comment/issue body on #%d", number)
		}
	}
}

func (s *ActionExecutor) warn(ctx *pipeline.Context, err error) {
	log.Printf("[action_executor] WARNING: %v", err)
	ctx.Result.ActionErrors = append(ctx.Result.ActionErrors, err)
}
