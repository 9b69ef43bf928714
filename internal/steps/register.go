package steps

import (
	"github.com/MaaAssistantArknights/issue-checker/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("label_analyzer", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewLabelAnalyzer(deps), nil
	})

	r.Register("comment_analyzer", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewCommentAnalyzer(deps), nil
	})

	r.Register("action_executor", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewActionExecutor(deps), nil
	})
}
