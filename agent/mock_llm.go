package agent

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// MockLLM replays a scripted sequence of responses, one per Complete call.
// Useful for local debugging without burning tokens, and for tests.
type MockLLM struct {
	Script []*Response
	Calls  int

	// Requests records every request for assertions.
	Requests []*Request
}

func (m *MockLLM) Complete(_ context.Context, req *Request) (*Response, error) {
	m.Requests = append(m.Requests, req)
	m.Calls++
	if len(m.Script) == 0 {
		return &Response{Parts: []Part{TextPart{Text: "Nothing left to do."}}}, nil
	}
	next := m.Script[0]
	if len(m.Script) > 1 {
		m.Script = m.Script[1:]
	}
	return next, nil
}

// ScriptedToolUse builds a tool invocation part with a fresh ID.
func ScriptedToolUse(name string, input map[string]any) ToolUsePart {
	raw, _ := json.Marshal(input)
	return ToolUsePart{ID: "toolu_" + uuid.NewString()[:12], Name: name, Input: raw}
}
