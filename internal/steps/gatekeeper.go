// Package steps contains the pipeline steps of one checker run.
// Each step implements the pipeline.Step interface.
package steps

import (
	"log"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/pipeline"
)

// Gatekeeper stops the run for events created before the not-before cutoff.
type Gatekeeper struct{}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run checks the event against the not-before gate.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	log.Printf("[gatekeeper] event=%q issues=%v created=%q",
		ctx.Event.Type, ctx.Event.Issues(), ctx.Event.CreatedAt)

	if ctx.Params.NotBefore.IsZero() {
		return nil
	}

	before, err := ctx.Event.CreatedBefore(ctx.Params.NotBefore)
	if err != nil {
		return err
	}
	if before {
		log.Printf("[gatekeeper] event created before %s, skipping run",
			ctx.Params.NotBefore.Format("2006-01-02T15:04:05Z07:00"))
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "event created before not-before cutoff"
		return pipeline.ErrSkipRun
	}

	return nil
}
