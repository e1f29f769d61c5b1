package assistant

import (
	"context"
	"fmt"
	"strings"
)

func registerSearchTools(reg *Registry, deps *Dependencies) {
	reg.Register("search_web", ToolDef{
		Description: "Search the web for current information the assistant does not know",
		Properties: map[string]PropDef{
			"query": {Type: "string", Description: "The search query"},
		},
		Required: []string{"query"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			query := stringArg(args, "query")
			if query == "" {
				return ToolResult{Success: false, Error: "query is required", Message: "Search query is required"}
			}
			if deps.Search == nil {
				return ToolResult{
					Success: false,
					Error:   "search is not configured",
					Message: "Web search is not available",
				}
			}

			results, err := deps.Search.Search(ctx, query, 3)
			if err != nil {
				return failure(err, "Web search failed")
			}
			if len(results) == 0 {
				return ToolResult{Success: true, Message: fmt.Sprintf("No results for '%s'", query)}
			}

			var b strings.Builder
			items := make([]map[string]any, 0, len(results))
			for i, r := range results {
				fmt.Fprintf(&b, "%d. %s - %s (%s)\n", i+1, r.Title, r.Snippet, r.Link)
				items = append(items, map[string]any{
					"title":   r.Title,
					"link":    r.Link,
					"snippet": r.Snippet,
				})
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"results": items, "summary": b.String()},
				Message: fmt.Sprintf("Found %d results for '%s'", len(items), query),
			}
		},
	})
}
