package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateEvent inserts a new calendar event.
func (s *Store) CreateEvent(e *CalendarEvent) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.EventType == "" {
		e.EventType = "personal"
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	_, err := s.db.Exec(`
		INSERT INTO calendar_events (id, user_id, title, description, start_datetime, end_datetime, location, event_type, is_all_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Description, e.Start, e.End, e.Location, e.EventType, e.IsAllDay, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEvent returns the event with the given id, or nil if absent.
func (s *Store) GetEvent(id string) (*CalendarEvent, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, description, start_datetime, end_datetime, location, event_type, is_all_day, created_at, updated_at
		FROM calendar_events WHERE id = ?`, id)
	e, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// ListEvents returns a user's events with start time in [from, to), soonest first.
func (s *Store) ListEvents(userID string, from, to time.Time) ([]CalendarEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, start_datetime, end_datetime, location, event_type, is_all_day, created_at, updated_at
		FROM calendar_events
		WHERE user_id = ? AND start_datetime >= ? AND start_datetime < ?
		ORDER BY start_datetime ASC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// FindEventsByTitle returns the user's events whose title contains fragment
// (case-insensitive), most recent start first. Ties break by insertion
// order, later insert first.
func (s *Store) FindEventsByTitle(userID, fragment string) ([]CalendarEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, start_datetime, end_datetime, location, event_type, is_all_day, created_at, updated_at
		FROM calendar_events
		WHERE user_id = ? AND instr(lower(title), lower(?)) > 0
		ORDER BY start_datetime DESC, rowid DESC`, userID, fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// UpdateEvent rewrites an event's mutable fields.
func (s *Store) UpdateEvent(e *CalendarEvent) error {
	e.UpdatedAt = now()
	res, err := s.db.Exec(`
		UPDATE calendar_events
		SET title = ?, description = ?, start_datetime = ?, end_datetime = ?, location = ?, event_type = ?, is_all_day = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Description, e.Start, e.End, e.Location, e.EventType, e.IsAllDay, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireRow(res, "event", e.ID)
}

// DeleteEvent removes an event by id.
func (s *Store) DeleteEvent(id string) error {
	res, err := s.db.Exec("DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireRow(res, "event", id)
}

func scanEvent(scan func(dest ...any) error) (*CalendarEvent, error) {
	var e CalendarEvent
	if err := scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Start, &e.End,
		&e.Location, &e.EventType, &e.IsAllDay, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]CalendarEvent, error) {
	var events []CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
