package agent

import (
	"context"
	"encoding/json"
)

// Role labels one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part is one ordered content item within a message: free text, a tool
// invocation, or a tool result fed back to the model.
type Part interface{ part() }

// TextPart is free-form prose.
type TextPart struct {
	Text string
}

// ToolUsePart is a structured tool invocation emitted by the model.
type ToolUsePart struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResultPart carries a tool's result envelope back to the model.
type ToolResultPart struct {
	ToolUseID string
	Content   string
	IsError   bool
}

func (TextPart) part()       {}
func (ToolUsePart) part()    {}
func (ToolResultPart) part() {}

// Message is one turn of the conversation.
type Message struct {
	Role  Role
	Parts []Part
}

// ToolDefinition declares one tool to the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Request is the full conversation state handed to the reasoning model.
type Request struct {
	System      string
	Messages    []Message
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature float64
	// EnableWebSearch asks providers that ship a native web-search tool to
	// attach it; providers without one ignore the flag.
	EnableWebSearch bool
}

// Response is the model's ordered output: text and/or tool invocations.
type Response struct {
	Parts      []Part
	StopReason string
}

// ModelClient abstracts the reasoning-model collaborator so the orchestrator
// can run against Anthropic, OpenAI, or a scripted mock.
type ModelClient interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// ModelSettings is the provider-independent client configuration.
type ModelSettings struct {
	Model   string
	APIKey  string
	BaseURL string
}
