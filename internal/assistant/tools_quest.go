package assistant

import (
	"context"
	"fmt"

	"github.com/skema-app/skema/internal/store"
)

func registerQuestTools(reg *Registry, deps *Dependencies) {
	reg.Register("create_quest", ToolDef{
		Description: "Create a daily quest (to-do task) for the user",
		Properties: map[string]PropDef{
			"content":  {Type: "string", Description: "The task content"},
			"date":     {Type: "string", Format: "date", Description: "The date for this quest (YYYY-MM-DD), defaults to today"},
			"date_due": {Type: "string", Format: "date", Description: "Optional due date (YYYY-MM-DD)"},
			"time_due": {Type: "string", Description: "Optional due time (HH:MM, 24h)"},
		},
		Required: []string{"content"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			content := stringArg(args, "content")
			if content == "" {
				return ToolResult{Success: false, Error: "content is required", Message: "Quest content is required"}
			}

			date := deps.today()
			if s := stringArg(args, "date"); s != "" {
				parsed, err := parseDate(s)
				if err != nil {
					return failure(err, "Failed to create quest")
				}
				date = parsed
			}

			quest := &store.Quest{
				UserID:      actor.UserID,
				Content:     content,
				DateCreated: date,
				TimeDue:     stringArg(args, "time_due"),
			}
			if s := stringArg(args, "date_due"); s != "" {
				parsed, err := parseDate(s)
				if err != nil {
					return failure(err, "Failed to create quest")
				}
				quest.DateDue = parsed
			}

			if err := deps.Store.CreateQuest(quest); err != nil {
				return failure(err, "Failed to create quest")
			}
			return ToolResult{
				Success: true,
				Result: map[string]any{
					"id":           quest.ID,
					"content":      quest.Content,
					"date_created": quest.DateCreated,
				},
				Message: fmt.Sprintf("Created quest: %s", quest.Content),
			}
		},
	})

	reg.Register("edit_quest", ToolDef{
		Description: "Edit an existing quest, matched by a fragment of its content",
		Properties: map[string]PropDef{
			"quest_content": {Type: "string", Description: "Fragment of the existing quest's content to match"},
			"new_content":   {Type: "string", Description: "The new content for the quest"},
			"date":          {Type: "string", Format: "date", Description: "The date to search (YYYY-MM-DD), defaults to today"},
			"date_due":      {Type: "string", Format: "date", Description: "New due date (YYYY-MM-DD)"},
			"time_due":      {Type: "string", Description: "New due time (HH:MM, 24h)"},
		},
		Required: []string{"quest_content"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			quest, res := findQuest(deps, args, actor)
			if quest == nil {
				return res
			}

			if s := stringArg(args, "new_content"); s != "" {
				quest.Content = s
			}
			if s := stringArg(args, "date_due"); s != "" {
				parsed, err := parseDate(s)
				if err != nil {
					return failure(err, "Failed to edit quest")
				}
				quest.DateDue = parsed
			}
			if s := stringArg(args, "time_due"); s != "" {
				quest.TimeDue = s
			}

			if err := deps.Store.UpdateQuest(quest); err != nil {
				return failure(err, "Failed to edit quest")
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"id": quest.ID, "content": quest.Content},
				Message: fmt.Sprintf("Updated quest: %s", quest.Content),
			}
		},
	})

	reg.Register("complete_quest", ToolDef{
		Description: "Mark a quest as complete, matched by a fragment of its content",
		Properties: map[string]PropDef{
			"quest_content": {Type: "string", Description: "Fragment of the quest's content to match"},
			"date":          {Type: "string", Format: "date", Description: "The date to search (YYYY-MM-DD), defaults to today"},
		},
		Required: []string{"quest_content"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			quest, res := findQuest(deps, args, actor)
			if quest == nil {
				return res
			}
			if err := deps.Store.CompleteQuest(quest.ID); err != nil {
				return failure(err, "Failed to complete quest")
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"id": quest.ID, "content": quest.Content},
				Message: fmt.Sprintf("Completed quest: %s", quest.Content),
			}
		},
	})

	reg.Register("delete_quest", ToolDef{
		Description: "Delete a quest, matched by a fragment of its content",
		Properties: map[string]PropDef{
			"quest_content": {Type: "string", Description: "Fragment of the quest's content to match"},
			"date":          {Type: "string", Format: "date", Description: "The date to search (YYYY-MM-DD), defaults to today"},
		},
		Required: []string{"quest_content"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			quest, res := findQuest(deps, args, actor)
			if quest == nil {
				return res
			}
			if err := deps.Store.DeleteQuest(quest.ID); err != nil {
				return failure(err, "Failed to delete quest")
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"id": quest.ID},
				Message: fmt.Sprintf("Deleted quest: %s", quest.Content),
			}
		},
	})

	reg.Register("list_quests", ToolDef{
		Description: "List the user's quests for a date",
		Properties: map[string]PropDef{
			"date": {Type: "string", Format: "date", Description: "The date (YYYY-MM-DD), defaults to today"},
		},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			date := deps.today()
			if s := stringArg(args, "date"); s != "" {
				parsed, err := parseDate(s)
				if err != nil {
					return failure(err, "Failed to list quests")
				}
				date = parsed
			}
			quests, err := deps.Store.ListQuests(actor.UserID, date)
			if err != nil {
				return failure(err, "Failed to list quests")
			}

			items := make([]map[string]any, 0, len(quests))
			for _, q := range quests {
				items = append(items, map[string]any{
					"id":          q.ID,
					"content":     q.Content,
					"is_complete": q.IsComplete,
					"time_due":    q.TimeDue,
				})
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"quests": items, "total": len(items), "date": date},
				Message: fmt.Sprintf("Found %d quests for %s", len(items), date),
			}
		},
	})
}

// findQuest resolves the quest_content/date arguments to a single quest using
// the fuzzy-match policy: case-insensitive substring, most recent match wins.
// Returns (nil, failure-envelope) when no match or the lookup failed.
func findQuest(deps *Dependencies, args map[string]any, actor Actor) (*store.Quest, ToolResult) {
	fragment := stringArg(args, "quest_content")
	if fragment == "" {
		return nil, ToolResult{Success: false, Error: "quest_content is required", Message: "Quest content to match is required"}
	}

	date := deps.today()
	if s := stringArg(args, "date"); s != "" {
		parsed, err := parseDate(s)
		if err != nil {
			return nil, failure(err, "Failed to find quest")
		}
		date = parsed
	}

	matches, err := deps.Store.FindQuestsByContent(actor.UserID, date, fragment)
	if err != nil {
		return nil, failure(err, "Failed to find quest")
	}
	if len(matches) == 0 {
		return nil, notFound("quest", fragment, date)
	}
	// Most recent match wins; matches are ordered newest first.
	return &matches[0], ToolResult{}
}
