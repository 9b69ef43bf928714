// Package pipeline provides the run engine: the Step interface and the
// Context passed through the ordered steps of one checker run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/config"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
	"github.com/MaaAssistantArknights/issue-checker/internal/integrations/github"
)

// ErrSkipRun indicates that the run should stop gracefully.
// This is not an error condition, just an early exit (e.g. not-before gate).
var ErrSkipRun = errors.New("skip remaining steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic. It should return ErrSkipRun to stop
	// the run gracefully, or any other error to indicate failure.
	Run(ctx *Context) error
}

// Params are the action inputs that shape a run.
type Params struct {
	// NotBefore discards events created before this instant. The zero
	// value disables the gate.
	NotBefore time.Time

	// IncludeTitle prefixes the title to the body before matching.
	IncludeTitle bool
}

// Result accumulates the decided actions and run outcome.
type Result struct {
	AddLabels      []string
	RemoveLabels   []string
	AddComments    []string
	UpdateComments []string

	Skipped    bool
	SkipReason string

	// ActionErrors collects swallowed backend call failures; they never
	// fail the run.
	ActionErrors []error
}

// Dependencies holds the collaborators injected into steps.
type Dependencies struct {
	GitHub github.Service
	DryRun bool
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Event is the triggering event being processed.
	Event *event.Context

	// Config is the loaded rule configuration.
	Config *config.RuleConfig

	// Params are the run inputs.
	Params Params

	// Result accumulates the decided actions.
	Result *Result

	// Deps are the injected collaborators.
	Deps *Dependencies
}

// NewContext creates a pipeline context for one run.
func NewContext(ctx context.Context, evt *event.Context, cfg *config.RuleConfig, params Params, deps *Dependencies) *Context {
	return &Context{
		Ctx:    ctx,
		Event:  evt,
		Config: cfg,
		Params: params,
		Result: &Result{},
		Deps:   deps,
	}
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipRun, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipRun) {
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
