package assistant

import (
	"context"
	"testing"
)

func echoTool(message string) ToolDef {
	return ToolDef{
		Description: "test tool",
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			return ToolResult{Success: true, Message: message}
		},
	}
}

func TestRegistryInvoke(t *testing.T) {
	reg := NewRegistry()
	reg.Register("echo", echoTool("hello"))

	res := reg.Invoke(context.Background(), "echo", nil, Actor{UserID: "u1"})
	if !res.Success || res.Message != "hello" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()

	res := reg.Invoke(context.Background(), "missing", nil, Actor{UserID: "u1"})
	if res.Success {
		t.Error("unknown tool must fail")
	}
	if res.Error != "unknown tool: missing" {
		t.Errorf("unexpected error: %q", res.Error)
	}
	if res.Message == "" {
		t.Error("failure envelope must carry a message")
	}
}

func TestRegistryContainsPanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register("boom", ToolDef{
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			panic("kaboom")
		},
	})

	res := reg.Invoke(context.Background(), "boom", nil, Actor{UserID: "u1"})
	if res.Success {
		t.Error("panicking tool must report failure")
	}
	if res.Error == "" || res.Message == "" {
		t.Errorf("failure envelope incomplete: %+v", res)
	}
}

func TestRegistryNilArgsBecomeEmptyMap(t *testing.T) {
	reg := NewRegistry()
	reg.Register("probe", ToolDef{
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			if args == nil {
				return ToolResult{Success: false, Message: "got nil args"}
			}
			return ToolResult{Success: true, Message: "ok"}
		},
	})

	res := reg.Invoke(context.Background(), "probe", nil, Actor{})
	if !res.Success {
		t.Errorf("handler saw nil args: %+v", res)
	}
}

func TestRegistryOrderPreserved(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c", echoTool("c"))
	reg.Register("a", echoTool("a"))
	reg.Register("b", echoTool("b"))
	// Re-registering keeps the original slot.
	reg.Register("c", echoTool("c2"))

	names := reg.Names()
	want := []string{"c", "a", "b"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	res := reg.Invoke(context.Background(), "c", nil, Actor{})
	if res.Message != "c2" {
		t.Errorf("re-registration did not replace handler: %+v", res)
	}
}

func TestRegistryOpenAITools(t *testing.T) {
	reg := NewRegistry()
	reg.Register("create_thing", ToolDef{
		Description: "Creates a thing",
		Properties: map[string]PropDef{
			"name": {Type: "string", Description: "The thing's name"},
			"kind": {Type: "string", Description: "Kind", Enum: []string{"big", "small"}},
		},
		Required: []string{"name"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			return ToolResult{Success: true, Message: "ok"}
		},
	})

	tools := reg.OpenAITools()
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	fn := tools[0].Function
	if tools[0].Type != "function" || fn.Name != "create_thing" {
		t.Errorf("unexpected descriptor: %+v", tools[0])
	}

	params, ok := fn.Parameters.(map[string]any)
	if !ok {
		t.Fatalf("parameters not a map: %T", fn.Parameters)
	}
	if params["type"] != "object" {
		t.Errorf("schema type = %v", params["type"])
	}
	props := params["properties"].(map[string]any)
	if _, ok := props["name"]; !ok {
		t.Error("missing name property")
	}
	kind := props["kind"].(map[string]any)
	if enum, ok := kind["enum"].([]string); !ok || len(enum) != 2 {
		t.Errorf("enum not rendered: %+v", kind)
	}
	required := params["required"].([]string)
	if len(required) != 1 || required[0] != "name" {
		t.Errorf("required = %+v", required)
	}
}
