// skema-mcp exposes the assistant's domain tools over the Model Context
// Protocol (stdio), so MCP clients can drive the same quest/calendar/
// journal/board mutators the conversational assistant uses.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skema-app/skema/internal/assistant"
	"github.com/skema-app/skema/internal/config"
	"github.com/skema-app/skema/internal/search"
	"github.com/skema-app/skema/internal/store"
)

func main() {
	// Log to stderr so stdout is clean for JSON-RPC
	log.SetOutput(os.Stderr)
	log.SetPrefix("[skema-mcp] ")

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	userID := os.Getenv("SKEMA_USER_ID")
	if userID == "" {
		log.Fatal("SKEMA_USER_ID environment variable required")
	}
	actor := assistant.Actor{UserID: userID, DisplayName: userID}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	deps := &assistant.Dependencies{
		Store:  st,
		Search: search.NewClient(cfg.SerperAPIKey),
	}
	registry := assistant.NewRegistry()
	assistant.RegisterAll(registry, deps)

	s := server.NewMCPServer(
		"skema-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	for _, name := range registry.Names() {
		def, _ := registry.Get(name)
		s.AddTool(mcpTool(name, def), mcpHandler(registry, name, actor))
	}
	log.Printf("Registered %d tools for user %s", len(registry.Names()), userID)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// mcpTool translates a registry tool definition into an MCP tool descriptor.
func mcpTool(name string, def assistant.ToolDef) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}

	required := make(map[string]bool, len(def.Required))
	for _, r := range def.Required {
		required[r] = true
	}

	for pname, prop := range def.Properties {
		popts := []mcp.PropertyOption{mcp.Description(prop.Description)}
		if required[pname] {
			popts = append(popts, mcp.Required())
		}

		switch prop.Type {
		case "boolean":
			opts = append(opts, mcp.WithBoolean(pname, popts...))
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(pname, popts...))
		default:
			opts = append(opts, mcp.WithString(pname, popts...))
		}
	}
	return mcp.NewTool(name, opts...)
}

func mcpHandler(registry *assistant.Registry, name string, actor assistant.Actor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		result := registry.Invoke(ctx, name, args, actor)
		if !result.Success {
			msg := result.Message
			if result.Error != "" {
				msg = fmt.Sprintf("%s: %s", result.Message, result.Error)
			}
			return mcp.NewToolResultError(msg), nil
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
