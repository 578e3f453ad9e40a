package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seobot/blog"
	"seobot/tools"
)

type listerStub struct {
	summaries []blog.Summary
	err       error
}

func (l *listerStub) PublishedSummaries(ctx context.Context) ([]blog.Summary, error) {
	return l.summaries, l.err
}

type failingModel struct{}

func (failingModel) Complete(ctx context.Context, req *Request) (*Response, error) {
	return nil, errors.New("overloaded")
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// testRegistry exposes a research stub and a publish tool that succeeds on a
// well-formed path and fails otherwise.
func testRegistry() *tools.Registry {
	return tools.NewRegistry(quietLogger(),
		tools.Tool{
			Name:        "research_stub",
			Description: "stub",
			Run: func(ctx context.Context, input json.RawMessage) tools.Result {
				return tools.Result{Status: tools.StatusSuccess, Message: "researched"}
			},
		},
		tools.Tool{
			Name:        tools.PublishToolName,
			Description: "stub",
			Run: func(ctx context.Context, input json.RawMessage) tools.Result {
				var p struct {
					CSVFilePath string `json:"csv_file_path"`
				}
				if err := json.Unmarshal(input, &p); err != nil || p.CSVFilePath == "" {
					return tools.Errorf("Invalid parameters for tool blog_inserter")
				}
				return tools.Result{
					Status:  tools.StatusSuccess,
					Message: "Blog inserted successfully",
					URL:     "https://example.com/blog/five-tips",
				}
			},
		},
	)
}

func newOrchestrator(t *testing.T, model ModelClient, opts Options) *Orchestrator {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	orch, err := New(model, testRegistry(), &listerStub{}, opts)
	require.NoError(t, err)
	return orch
}

func TestRunPublishes(t *testing.T) {
	model := &MockLLM{Script: []*Response{
		{Parts: []Part{
			TextPart{Text: "Researching the topic."},
			ScriptedToolUse("research_stub", nil),
		}},
		{Parts: []Part{
			ScriptedToolUse(tools.PublishToolName, map[string]any{"csv_file_path": "blog_five-tips_1.csv"}),
		}},
	}}
	orch := newOrchestrator(t, model, Options{})

	result, err := orch.Run(context.Background(), "reddit marketing")
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, result.Outcome)
	assert.Equal(t, "https://example.com/blog/five-tips", result.URL)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, 2, model.Calls)
}

func TestRunFeedsToolResultsBack(t *testing.T) {
	model := &MockLLM{Script: []*Response{
		{Parts: []Part{ScriptedToolUse("research_stub", map[string]any{"q": "x"})}},
		{Parts: []Part{TextPart{Text: "done"}}},
	}}
	orch := newOrchestrator(t, model, Options{})

	_, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, model.Requests, 2)

	second := model.Requests[1]
	require.Len(t, second.Messages, 3) // mission, assistant turn, tool results
	assert.Equal(t, RoleAssistant, second.Messages[1].Role)
	assert.Equal(t, RoleUser, second.Messages[2].Role)

	results := second.Messages[2].Parts
	require.Len(t, results, 1)
	tr, ok := results[0].(ToolResultPart)
	require.True(t, ok)
	assert.False(t, tr.IsError)
	assert.Contains(t, tr.Content, `"status":"success"`)
	assert.NotEmpty(t, tr.ToolUseID)
}

func TestRunSurfacesToolErrorsToModel(t *testing.T) {
	model := &MockLLM{Script: []*Response{
		{Parts: []Part{ScriptedToolUse("no_such_tool", nil)}},
		{Parts: []Part{TextPart{Text: "giving up"}}},
	}}
	orch := newOrchestrator(t, model, Options{})

	result, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, result.Outcome)

	require.Len(t, model.Requests, 2)
	results := model.Requests[1].Messages[2].Parts
	tr, ok := results[0].(ToolResultPart)
	require.True(t, ok)
	assert.True(t, tr.IsError)
	assert.Contains(t, tr.Content, "Unknown tool: no_such_tool")
}

func TestRunFailedPublishDoesNotEndRun(t *testing.T) {
	model := &MockLLM{Script: []*Response{
		// missing csv_file_path makes the publish tool fail
		{Parts: []Part{ScriptedToolUse(tools.PublishToolName, nil)}},
		{Parts: []Part{ScriptedToolUse(tools.PublishToolName, map[string]any{"csv_file_path": "blog_x_1.csv"})}},
	}}
	orch := newOrchestrator(t, model, Options{})

	result, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, result.Outcome)
	assert.Equal(t, 2, result.Iterations)
}

func TestRunIdleOnTextOnlyResponse(t *testing.T) {
	model := &MockLLM{Script: []*Response{
		{Parts: []Part{TextPart{Text: "I have nothing to add."}}},
	}}
	orch := newOrchestrator(t, model, Options{})

	result, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, result.Outcome)
	assert.Equal(t, 1, result.Iterations)
}

func TestRunExhaustsIterationCeiling(t *testing.T) {
	// the last scripted response repeats, so the model never stops calling tools
	model := &MockLLM{Script: []*Response{
		{Parts: []Part{ScriptedToolUse("research_stub", nil)}},
	}}
	orch := newOrchestrator(t, model, Options{MaxIterations: 3})

	result, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeExhausted, result.Outcome)
	assert.Equal(t, 3, result.Iterations)
	assert.Equal(t, 3, model.Calls)
}

func TestRunModelFailure(t *testing.T) {
	orch := newOrchestrator(t, failingModel{}, Options{})
	_, err := orch.Run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call")
}

func TestRunRequestShape(t *testing.T) {
	model := &MockLLM{}
	lister := &listerStub{summaries: []blog.Summary{{Title: "Old Post", Slug: "old-post", Category: "SEO"}}}
	orch, err := New(model, testRegistry(), lister, Options{
		BrandContext: "Acme sells anvils.",
		MaxTokens:    16000,
		Logger:       quietLogger(),
	})
	require.NoError(t, err)

	_, err = orch.Run(context.Background(), "anvil safety")
	require.NoError(t, err)
	require.Len(t, model.Requests, 1)

	req := model.Requests[0]
	assert.Zero(t, req.Temperature)
	assert.True(t, req.EnableWebSearch)
	assert.Equal(t, 16000, req.MaxTokens)
	require.Len(t, req.Tools, 2)
	assert.Equal(t, "research_stub", req.Tools[0].Name)

	require.Len(t, req.Messages, 1)
	mission, ok := req.Messages[0].Parts[0].(TextPart)
	require.True(t, ok)
	assert.Contains(t, mission.Text, "Acme sells anvils.")
	assert.Contains(t, mission.Text, "Old Post")
	assert.Contains(t, mission.Text, "anvil safety")
	assert.Contains(t, req.System, "anvil safety")
}

func TestRunAdvisoryListerFailure(t *testing.T) {
	model := &MockLLM{}
	orch, err := New(model, testRegistry(), &listerStub{err: errors.New("store down")}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	result, err := orch.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, result.Outcome)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, testRegistry(), nil, Options{})
	assert.Error(t, err)
	_, err = New(&MockLLM{}, nil, nil, Options{})
	assert.Error(t, err)
}
