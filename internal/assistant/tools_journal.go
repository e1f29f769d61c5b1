package assistant

import (
	"context"
	"fmt"

	"github.com/skema-app/skema/internal/store"
)

var journalMoods = []string{"great", "good", "okay", "bad", "terrible"}

func registerJournalTools(reg *Registry, deps *Dependencies) {
	reg.Register("create_journal_entry", ToolDef{
		Description: "Create a new journal entry with title, content, and mood",
		Properties: map[string]PropDef{
			"title":      {Type: "string", Description: "The title of the journal entry"},
			"content":    {Type: "string", Description: "The content/body of the journal entry"},
			"mood":       {Type: "string", Enum: journalMoods, Description: "The mood associated with this entry"},
			"entry_date": {Type: "string", Format: "date", Description: "The date for this entry (YYYY-MM-DD), defaults to today"},
		},
		Required: []string{"title", "content"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			title := stringArg(args, "title")
			content := stringArg(args, "content")
			if title == "" || content == "" {
				return ToolResult{Success: false, Error: "title and content are required", Message: "Journal title and content are required"}
			}

			entry := &store.JournalEntry{
				UserID:    actor.UserID,
				Title:     title,
				Content:   content,
				Mood:      stringArg(args, "mood"),
				EntryDate: deps.today(),
			}
			if s := stringArg(args, "entry_date"); s != "" {
				parsed, err := parseDate(s)
				if err != nil {
					return failure(err, "Failed to create journal entry")
				}
				entry.EntryDate = parsed
			}

			if err := deps.Store.CreateJournalEntry(entry); err != nil {
				return failure(err, "Failed to create journal entry")
			}
			return ToolResult{
				Success: true,
				Result: map[string]any{
					"id":         entry.ID,
					"title":      entry.Title,
					"entry_date": entry.EntryDate,
				},
				Message: fmt.Sprintf("Created journal entry: %s", entry.Title),
			}
		},
	})

	reg.Register("edit_journal_entry", ToolDef{
		Description: "Edit an existing journal entry, matched by a fragment of its title or content",
		Properties: map[string]PropDef{
			"entry_title": {Type: "string", Description: "Fragment of the existing entry's title or content to match"},
			"new_title":   {Type: "string", Description: "The new title"},
			"new_content": {Type: "string", Description: "The new content"},
			"mood":        {Type: "string", Enum: journalMoods, Description: "The new mood"},
		},
		Required: []string{"entry_title"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			entry, res := findJournalEntry(deps, args, actor)
			if entry == nil {
				return res
			}

			if s := stringArg(args, "new_title"); s != "" {
				entry.Title = s
			}
			if s := stringArg(args, "new_content"); s != "" {
				entry.Content = s
			}
			if s := stringArg(args, "mood"); s != "" {
				entry.Mood = s
			}

			if err := deps.Store.UpdateJournalEntry(entry); err != nil {
				return failure(err, "Failed to edit journal entry")
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"id": entry.ID, "title": entry.Title},
				Message: fmt.Sprintf("Updated journal entry: %s", entry.Title),
			}
		},
	})

	reg.Register("delete_journal_entry", ToolDef{
		Description: "Delete a journal entry, matched by a fragment of its title or content",
		Properties: map[string]PropDef{
			"entry_title": {Type: "string", Description: "Fragment of the entry's title or content to match"},
		},
		Required: []string{"entry_title"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			entry, res := findJournalEntry(deps, args, actor)
			if entry == nil {
				return res
			}
			if err := deps.Store.DeleteJournalEntry(entry.ID); err != nil {
				return failure(err, "Failed to delete journal entry")
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"id": entry.ID},
				Message: fmt.Sprintf("Deleted journal entry: %s", entry.Title),
			}
		},
	})
}

func findJournalEntry(deps *Dependencies, args map[string]any, actor Actor) (*store.JournalEntry, ToolResult) {
	fragment := stringArg(args, "entry_title")
	if fragment == "" {
		return nil, ToolResult{Success: false, Error: "entry_title is required", Message: "Entry title to match is required"}
	}

	matches, err := deps.Store.FindJournalEntriesByTitle(actor.UserID, fragment)
	if err != nil {
		return nil, failure(err, "Failed to find journal entry")
	}
	if len(matches) == 0 {
		return nil, notFound("journal entry", fragment, "")
	}
	return &matches[0], ToolResult{}
}
