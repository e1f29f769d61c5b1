package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/skema-app/skema/internal/store"
)

func registerCalendarTools(reg *Registry, deps *Dependencies) {
	reg.Register("create_calendar_event", ToolDef{
		Description: "Create a new calendar event with title, description, and date/time",
		Properties: map[string]PropDef{
			"title":          {Type: "string", Description: "The title of the event"},
			"description":    {Type: "string", Description: "The description of the event"},
			"start_datetime": {Type: "string", Format: "date-time", Description: "Start date and time (ISO format)"},
			"end_datetime":   {Type: "string", Format: "date-time", Description: "End date and time (ISO format), defaults to one hour after start"},
			"location":       {Type: "string", Description: "Event location"},
			"is_all_day":     {Type: "boolean", Description: "Whether this is an all-day event"},
		},
		Required: []string{"title", "start_datetime"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			title := stringArg(args, "title")
			if title == "" {
				return ToolResult{Success: false, Error: "title is required", Message: "Event title is required"}
			}
			start, err := parseDateTime(stringArg(args, "start_datetime"))
			if err != nil {
				return failure(err, "Failed to create calendar event")
			}

			end := start.Add(time.Hour)
			if s := stringArg(args, "end_datetime"); s != "" {
				end, err = parseDateTime(s)
				if err != nil {
					return failure(err, "Failed to create calendar event")
				}
			}

			event := &store.CalendarEvent{
				UserID:      actor.UserID,
				Title:       title,
				Description: stringArg(args, "description"),
				Start:       start,
				End:         end,
				Location:    stringArg(args, "location"),
				IsAllDay:    boolArg(args, "is_all_day"),
			}
			if err := deps.Store.CreateEvent(event); err != nil {
				return failure(err, "Failed to create calendar event")
			}
			return ToolResult{
				Success: true,
				Result: map[string]any{
					"id":             event.ID,
					"title":          event.Title,
					"start_datetime": event.Start.Format(time.RFC3339),
					"end_datetime":   event.End.Format(time.RFC3339),
				},
				Message: fmt.Sprintf("Created calendar event: %s", event.Title),
			}
		},
	})

	reg.Register("edit_calendar_event", ToolDef{
		Description: "Edit an existing calendar event, matched by a fragment of its title",
		Properties: map[string]PropDef{
			"event_title":    {Type: "string", Description: "Fragment of the existing event's title to match"},
			"new_title":      {Type: "string", Description: "The new title"},
			"description":    {Type: "string", Description: "The new description"},
			"start_datetime": {Type: "string", Format: "date-time", Description: "New start date and time (ISO format)"},
			"end_datetime":   {Type: "string", Format: "date-time", Description: "New end date and time (ISO format)"},
			"location":       {Type: "string", Description: "New location"},
		},
		Required: []string{"event_title"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			event, res := findEvent(deps, args, actor)
			if event == nil {
				return res
			}

			if s := stringArg(args, "new_title"); s != "" {
				event.Title = s
			}
			if s := stringArg(args, "description"); s != "" {
				event.Description = s
			}
			if s := stringArg(args, "location"); s != "" {
				event.Location = s
			}
			if s := stringArg(args, "start_datetime"); s != "" {
				start, err := parseDateTime(s)
				if err != nil {
					return failure(err, "Failed to edit calendar event")
				}
				// Keep the original duration when only the start moves.
				duration := event.End.Sub(event.Start)
				event.Start = start
				event.End = start.Add(duration)
			}
			if s := stringArg(args, "end_datetime"); s != "" {
				end, err := parseDateTime(s)
				if err != nil {
					return failure(err, "Failed to edit calendar event")
				}
				event.End = end
			}

			if err := deps.Store.UpdateEvent(event); err != nil {
				return failure(err, "Failed to edit calendar event")
			}
			return ToolResult{
				Success: true,
				Result: map[string]any{
					"id":             event.ID,
					"title":          event.Title,
					"start_datetime": event.Start.Format(time.RFC3339),
				},
				Message: fmt.Sprintf("Updated calendar event: %s", event.Title),
			}
		},
	})

	reg.Register("delete_calendar_event", ToolDef{
		Description: "Delete a calendar event, matched by a fragment of its title",
		Properties: map[string]PropDef{
			"event_title": {Type: "string", Description: "Fragment of the event's title to match"},
		},
		Required: []string{"event_title"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			event, res := findEvent(deps, args, actor)
			if event == nil {
				return res
			}
			if err := deps.Store.DeleteEvent(event.ID); err != nil {
				return failure(err, "Failed to delete calendar event")
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"id": event.ID},
				Message: fmt.Sprintf("Deleted calendar event: %s", event.Title),
			}
		},
	})

	reg.Register("list_calendar_events", ToolDef{
		Description: "List the user's calendar events in a date range",
		Properties: map[string]PropDef{
			"start_date": {Type: "string", Format: "date", Description: "Range start (YYYY-MM-DD), defaults to today"},
			"end_date":   {Type: "string", Format: "date", Description: "Range end exclusive (YYYY-MM-DD), defaults to one week after start"},
		},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			from := deps.now().UTC().Truncate(24 * time.Hour)
			if s := stringArg(args, "start_date"); s != "" {
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					return failure(fmt.Errorf("invalid start_date %q", s), "Failed to list calendar events")
				}
				from = t.UTC()
			}
			to := from.AddDate(0, 0, 7)
			if s := stringArg(args, "end_date"); s != "" {
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					return failure(fmt.Errorf("invalid end_date %q", s), "Failed to list calendar events")
				}
				to = t.UTC()
			}

			events, err := deps.Store.ListEvents(actor.UserID, from, to)
			if err != nil {
				return failure(err, "Failed to list calendar events")
			}

			items := make([]map[string]any, 0, len(events))
			for _, e := range events {
				items = append(items, map[string]any{
					"id":             e.ID,
					"title":          e.Title,
					"start_datetime": e.Start.Format(time.RFC3339),
					"end_datetime":   e.End.Format(time.RFC3339),
					"location":       e.Location,
				})
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"events": items, "total": len(items)},
				Message: fmt.Sprintf("Found %d events", len(items)),
			}
		},
	})
}

// findEvent resolves the event_title argument to a single event: most recent
// match (by start time) wins.
func findEvent(deps *Dependencies, args map[string]any, actor Actor) (*store.CalendarEvent, ToolResult) {
	fragment := stringArg(args, "event_title")
	if fragment == "" {
		return nil, ToolResult{Success: false, Error: "event_title is required", Message: "Event title to match is required"}
	}

	matches, err := deps.Store.FindEventsByTitle(actor.UserID, fragment)
	if err != nil {
		return nil, failure(err, "Failed to find calendar event")
	}
	if len(matches) == 0 {
		return nil, notFound("calendar event", fragment, "")
	}
	return &matches[0], ToolResult{}
}
