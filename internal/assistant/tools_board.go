package assistant

import (
	"context"
	"fmt"

	"github.com/skema-app/skema/internal/store"
)

func registerBoardTools(reg *Registry, deps *Dependencies) {
	reg.Register("create_board", ToolDef{
		Description: "Create a new Kanban board with title and description",
		Properties: map[string]PropDef{
			"title":       {Type: "string", Description: "The title of the board"},
			"description": {Type: "string", Description: "The description of the board"},
			"color":       {Type: "string", Description: "Color theme for the board (hex, e.g. '#6366f1')"},
		},
		Required: []string{"title"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			title := stringArg(args, "title")
			if title == "" {
				return ToolResult{Success: false, Error: "title is required", Message: "Board title is required"}
			}

			board := &store.Board{
				UserID:      actor.UserID,
				Title:       title,
				Description: stringArg(args, "description"),
				Color:       stringArg(args, "color"),
			}
			if err := deps.Store.CreateBoard(board); err != nil {
				return failure(err, "Failed to create board")
			}
			return ToolResult{
				Success: true,
				Result: map[string]any{
					"id":          board.ID,
					"title":       board.Title,
					"description": board.Description,
				},
				Message: fmt.Sprintf("Created board: %s", board.Title),
			}
		},
	})

	reg.Register("get_boards", ToolDef{
		Description: "Get list of user's boards",
		Properties: map[string]PropDef{
			"limit": {Type: "integer", Description: "Maximum number of boards to return (default 10)"},
		},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			limit := intArg(args, "limit", 10)
			boards, err := deps.Store.ListBoards(actor.UserID, limit)
			if err != nil {
				return failure(err, "Failed to get boards")
			}

			items := make([]map[string]any, 0, len(boards))
			for _, b := range boards {
				items = append(items, map[string]any{
					"id":          b.ID,
					"title":       b.Title,
					"description": b.Description,
				})
			}
			return ToolResult{
				Success: true,
				Result:  map[string]any{"boards": items, "total": len(items)},
				Message: fmt.Sprintf("Found %d boards", len(items)),
			}
		},
	})

	reg.Register("create_card", ToolDef{
		Description: "Create a new card on a specific board",
		Properties: map[string]PropDef{
			"board_id":    {Type: "string", Description: "The ID of the board to add the card to"},
			"title":       {Type: "string", Description: "The title of the card"},
			"description": {Type: "string", Description: "The description of the card"},
			"status":      {Type: "string", Description: "Card column status (todo, in_progress, done)"},
			"due_date":    {Type: "string", Format: "date", Description: "Due date for the card (YYYY-MM-DD)"},
		},
		Required: []string{"board_id", "title"},
		Handler: func(ctx context.Context, args map[string]any, actor Actor) ToolResult {
			boardID := stringArg(args, "board_id")
			title := stringArg(args, "title")
			if boardID == "" || title == "" {
				return ToolResult{Success: false, Error: "board_id and title are required", Message: "Board ID and card title are required"}
			}

			// Verify ownership before writing; the model may pass a stale or
			// invented board id.
			board, err := deps.Store.GetBoard(boardID)
			if err != nil {
				return failure(err, "Failed to create card")
			}
			if board == nil || board.UserID != actor.UserID {
				return ToolResult{
					Success: false,
					Error:   fmt.Sprintf("board %s not found", boardID),
					Message: fmt.Sprintf("No board found with ID '%s'", boardID),
				}
			}

			card := &store.Card{
				BoardID:     boardID,
				Title:       title,
				Description: stringArg(args, "description"),
				Status:      stringArg(args, "status"),
			}
			if s := stringArg(args, "due_date"); s != "" {
				parsed, err := parseDate(s)
				if err != nil {
					return failure(err, "Failed to create card")
				}
				card.DueDate = parsed
			}

			if err := deps.Store.CreateCard(card); err != nil {
				return failure(err, "Failed to create card")
			}
			return ToolResult{
				Success: true,
				Result: map[string]any{
					"id":       card.ID,
					"title":    card.Title,
					"board_id": card.BoardID,
				},
				Message: fmt.Sprintf("Created card: %s", card.Title),
			}
		},
	})
}
