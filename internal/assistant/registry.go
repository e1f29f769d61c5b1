// Package assistant implements the conversational tool-orchestration core:
// the tool registry, the domain tools, per-user conversation memory, and the
// orchestrator that turns chat messages into tool calls and back.
package assistant

import (
	"context"
	"fmt"

	"github.com/skema-app/skema/internal/logging"
	"github.com/skema-app/skema/internal/openai"
)

// Actor identifies who a tool call runs on behalf of.
type Actor struct {
	UserID      string
	DisplayName string
}

// ToolResult is the envelope every tool returns. Failures are values, not
// errors: a failed call still produces a tool message for the model.
type ToolResult struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// Executor runs one tool call with already-decoded arguments.
type Executor func(ctx context.Context, args map[string]any, actor Actor) ToolResult

// PropDef describes one parameter in a tool's schema.
type PropDef struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
	Format      string   `json:"format,omitempty"`
}

// ToolDef declares a tool: model-facing description, parameter schema,
// and the executor.
type ToolDef struct {
	Description string
	Properties  map[string]PropDef
	Required    []string
	Handler     Executor
}

// Registry is the fixed catalog of tools. It is populated once at startup
// and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	tools map[string]ToolDef
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]ToolDef)}
}

// Register adds a tool under name. Registering the same name twice replaces
// the definition but keeps its original position.
func (r *Registry) Register(name string, def ToolDef) {
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = def
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (ToolDef, bool) {
	def, ok := r.tools[name]
	return def, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Invoke executes the named tool. An unknown name or a panicking handler is
// contained to the returned envelope; Invoke never fails the whole turn.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any, actor Actor) (result ToolResult) {
	def, ok := r.tools[name]
	if !ok {
		return ToolResult{
			Success: false,
			Error:   fmt.Sprintf("unknown tool: %s", name),
			Message: fmt.Sprintf("Tool '%s' is not available", name),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("tools", "panic in %s: %v", name, rec)
			result = ToolResult{
				Success: false,
				Error:   fmt.Sprintf("internal error in tool %s", name),
				Message: fmt.Sprintf("Tool '%s' failed unexpectedly", name),
			}
		}
	}()

	if args == nil {
		args = map[string]any{}
	}
	return def.Handler(ctx, args, actor)
}

// OpenAITools renders the registry as model-facing tool descriptors, in
// registration order.
func (r *Registry) OpenAITools() []openai.Tool {
	tools := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		def := r.tools[name]
		props := make(map[string]any, len(def.Properties))
		for pname, p := range def.Properties {
			prop := map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if len(p.Enum) > 0 {
				prop["enum"] = p.Enum
			}
			if p.Format != "" {
				prop["format"] = p.Format
			}
			props[pname] = prop
		}
		params := map[string]any{
			"type":       "object",
			"properties": props,
		}
		if len(def.Required) > 0 {
			params["required"] = def.Required
		}
		tools = append(tools, openai.Tool{
			Type: "function",
			Function: openai.ToolFunction{
				Name:        name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}
