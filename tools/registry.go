// Package tools maps symbolic tool names to pipeline capabilities behind a
// uniform result envelope. No tool invocation throws past the Execute
// boundary; every failure is converted into an error Result the model can
// reason about.
package tools

import (
	"context"
	"encoding/json"
	"log"
)

// Tool is one named capability exposed to the reasoning model.
type Tool struct {
	Name        string
	Description string
	// InputSchema is the JSON schema of the parameter object.
	InputSchema map[string]any
	Run         func(ctx context.Context, input json.RawMessage) Result
}

// Registry dispatches tool invocations by name. It owns no state across
// calls; each invocation is independent.
type Registry struct {
	order  []string
	tools  map[string]Tool
	logger *log.Logger
}

// NewRegistry builds a registry from the given tools, preserving
// registration order for schema declaration.
func NewRegistry(logger *log.Logger, registered ...Tool) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{tools: make(map[string]Tool, len(registered)), logger: logger}
	for _, t := range registered {
		r.order = append(r.order, t.Name)
		r.tools[t.Name] = t
	}
	return r
}

// Definitions returns the registered tools in declaration order.
func (r *Registry) Definitions() []Tool {
	defs := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name])
	}
	return defs
}

// Execute looks up and runs the named tool. Unknown names, malformed
// parameters, and panics all come back as error envelopes, never as faults.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (result Result) {
	tool, ok := r.tools[name]
	if !ok {
		return Errorf("Unknown tool: %s", name)
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("[tools] panic in %s: %v", name, rec)
			result = Errorf("Error executing tool %s: %v", name, rec)
		}
	}()
	result = tool.Run(ctx, input)
	return result
}

// decodeParams unmarshals a tool parameter object. Tools report a decode
// failure as an invalid-parameters envelope.
func decodeParams(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return nil
	}
	return json.Unmarshal(input, v)
}
