// Package agent drives the content pipeline: it holds the conversation with
// the reasoning model, dispatches the tool invocations the model emits, and
// decides when a run is finished.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"seobot/blog"
	"seobot/tools"
)

// Outcome is the terminal state of one orchestration run.
type Outcome string

const (
	// OutcomePublished means the publish tool reported success.
	OutcomePublished Outcome = "published"
	// OutcomeExhausted means the iteration ceiling was reached first.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeIdle means the model stopped calling tools without publishing.
	OutcomeIdle Outcome = "idle"
)

// DefaultMaxIterations bounds the conversation loop.
const DefaultMaxIterations = 10

// RunResult reports how a run ended.
type RunResult struct {
	Outcome    Outcome
	URL        string
	Iterations int
}

// SummaryLister provides the advisory snapshot of already-published posts.
type SummaryLister interface {
	PublishedSummaries(ctx context.Context) ([]blog.Summary, error)
}

// Options tunes an Orchestrator.
type Options struct {
	BrandContext  string
	MaxIterations int
	MaxTokens     int
	Verbose       bool
	Logger        *log.Logger
}

// Orchestrator owns the conversation state for a run. State lives only for
// the duration of Run; the orchestrator itself is reusable.
type Orchestrator struct {
	model    ModelClient
	registry *tools.Registry
	lister   SummaryLister

	brand         string
	maxIterations int
	maxTokens     int
	verbose       bool
	logger        *log.Logger
}

// New wires an orchestrator to its collaborators.
func New(model ModelClient, registry *tools.Registry, lister SummaryLister, opts Options) (*Orchestrator, error) {
	if model == nil {
		return nil, errors.New("model client is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Orchestrator{
		model:         model,
		registry:      registry,
		lister:        lister,
		brand:         opts.BrandContext,
		maxIterations: opts.MaxIterations,
		maxTokens:     opts.MaxTokens,
		verbose:       opts.Verbose,
		logger:        opts.Logger,
	}, nil
}

func (o *Orchestrator) infof(format string, args ...interface{}) {
	if !o.verbose {
		return
	}
	o.logger.Printf("[agent] "+format, args...)
}

// Run executes one publication pipeline for the topic (empty topic lets the
// model pick one). It returns an error only when the model collaborator
// itself fails; tool failures flow back into the conversation as data.
func (o *Orchestrator) Run(ctx context.Context, topic string) (RunResult, error) {
	runID := uuid.NewString()[:8]
	o.logger.Printf("[agent] run %s starting topic=%q", runID, topic)

	existing := o.fetchExisting(ctx)
	defs := o.toolDefinitions()

	messages := []Message{{
		Role:  RoleUser,
		Parts: []Part{TextPart{Text: BuildMission(o.brand, existing, topic)}},
	}}
	system := BuildSystemPrompt(topic)

	for iteration := 1; iteration <= o.maxIterations; iteration++ {
		resp, err := o.model.Complete(ctx, &Request{
			System:          system,
			Messages:        messages,
			Tools:           defs,
			MaxTokens:       o.maxTokens,
			Temperature:     0,
			EnableWebSearch: true,
		})
		if err != nil {
			return RunResult{Iterations: iteration}, fmt.Errorf("model call: %w", err)
		}

		var (
			assistantParts []Part
			resultParts    []Part
			published      bool
			publishedURL   string
		)
		for _, part := range resp.Parts {
			switch v := part.(type) {
			case TextPart:
				o.infof("model: %.200s", v.Text)
				assistantParts = append(assistantParts, v)
			case ToolUsePart:
				o.logger.Printf("[agent] run %s using tool %s", runID, v.Name)
				result := o.registry.Execute(ctx, v.Name, v.Input)
				o.infof("tool %s: %s %s", v.Name, result.Status, result.Message)
				assistantParts = append(assistantParts, v)
				resultParts = append(resultParts, ToolResultPart{
					ToolUseID: v.ID,
					Content:   result.JSON(),
					IsError:   result.Status == tools.StatusError,
				})
				if v.Name == tools.PublishToolName && result.OK() {
					published = true
					publishedURL = result.URL
				}
			}
		}

		if len(assistantParts) > 0 {
			messages = append(messages, Message{Role: RoleAssistant, Parts: assistantParts})
		}
		if published {
			o.logger.Printf("[agent] run %s published at %s", runID, publishedURL)
			return RunResult{Outcome: OutcomePublished, URL: publishedURL, Iterations: iteration}, nil
		}
		if len(resultParts) == 0 {
			// The model considers itself done without publishing.
			o.logger.Printf("[agent] run %s ended without tool calls after %d iteration(s)", runID, iteration)
			return RunResult{Outcome: OutcomeIdle, Iterations: iteration}, nil
		}
		messages = append(messages, Message{Role: RoleUser, Parts: resultParts})
	}

	o.logger.Printf("[agent] run %s exhausted after %d iterations", runID, o.maxIterations)
	return RunResult{Outcome: OutcomeExhausted, Iterations: o.maxIterations}, nil
}

// fetchExisting is advisory; a failing canonical store must not block a run.
func (o *Orchestrator) fetchExisting(ctx context.Context) []blog.Summary {
	if o.lister == nil {
		return nil
	}
	existing, err := o.lister.PublishedSummaries(ctx)
	if err != nil {
		o.logger.Printf("[agent] fetching existing blogs failed: %v", err)
		return nil
	}
	return existing
}

func (o *Orchestrator) toolDefinitions() []ToolDefinition {
	registered := o.registry.Definitions()
	defs := make([]ToolDefinition, 0, len(registered))
	for _, t := range registered {
		defs = append(defs, ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return defs
}
