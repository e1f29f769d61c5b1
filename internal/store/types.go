package store

import "time"

// Quest is a daily rolling to-do item.
type Quest struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Content     string     `json:"content"`
	IsComplete  bool       `json:"is_complete"`
	DateCreated string     `json:"date_created"` // YYYY-MM-DD
	DateDue     string     `json:"date_due,omitempty"`
	TimeDue     string     `json:"time_due,omitempty"` // HH:MM
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CalendarEvent is a scheduled event on a user's calendar.
type CalendarEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start_datetime"`
	End         time.Time `json:"end_datetime"`
	Location    string    `json:"location,omitempty"`
	EventType   string    `json:"event_type"`
	IsAllDay    bool      `json:"is_all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JournalEntry is a dated journal entry with a mood.
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	EntryDate string    `json:"entry_date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Board is a Kanban board.
type Board struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Card is a Kanban card on a board.
type Card struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"board_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Position    int       `json:"position"`
	DueDate     string    `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AICommand is one audited assistant exchange.
type AICommand struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Command     string    `json:"command"`
	Response    string    `json:"response,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error_message,omitempty"`
	ExecutionMS int       `json:"execution_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommandStats summarizes a user's assistant usage.
type CommandStats struct {
	TotalCommands      int     `json:"total_commands"`
	SuccessfulCommands int     `json:"successful_commands"`
	FailedCommands     int     `json:"failed_commands"`
	SuccessRate        float64 `json:"success_rate"`
	CommandsToday      int     `json:"commands_today"`
}
