package store

import (
	"database/sql"
	"fmt"
)

// CreateQuest inserts a new quest. ID and timestamps are filled in.
func (s *Store) CreateQuest(q *Quest) error {
	if q.ID == "" {
		q.ID = newID()
	}
	if q.DateCreated == "" {
		q.DateCreated = DateOnly(now())
	}
	q.CreatedAt = now()
	q.UpdatedAt = q.CreatedAt

	_, err := s.db.Exec(`
		INSERT INTO quests (id, user_id, content, is_complete, date_created, date_due, time_due, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Content, q.IsComplete, q.DateCreated,
		nullString(q.DateDue), nullString(q.TimeDue), q.CompletedAt, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}
	return nil
}

// GetQuest returns the quest with the given id, or nil if absent.
func (s *Store) GetQuest(id string) (*Quest, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, content, is_complete, date_created, date_due, time_due, completed_at, created_at, updated_at
		FROM quests WHERE id = ?`, id)
	return scanQuest(row)
}

// ListQuests returns a user's quests for a date (YYYY-MM-DD), newest first.
func (s *Store) ListQuests(userID, date string) ([]Quest, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, content, is_complete, date_created, date_due, time_due, completed_at, created_at, updated_at
		FROM quests WHERE user_id = ? AND date_created = ?
		ORDER BY created_at DESC, rowid DESC`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

// FindQuestsByContent returns the user's quests for a date whose content
// contains fragment (case-insensitive), most recent first. Ties on the
// creation timestamp break by insertion order, later insert first.
func (s *Store) FindQuestsByContent(userID, date, fragment string) ([]Quest, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, content, is_complete, date_created, date_due, time_due, completed_at, created_at, updated_at
		FROM quests
		WHERE user_id = ? AND date_created = ? AND instr(lower(content), lower(?)) > 0
		ORDER BY created_at DESC, rowid DESC`, userID, date, fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to find quests: %w", err)
	}
	defer rows.Close()
	return collectQuests(rows)
}

// UpdateQuest rewrites a quest's mutable fields.
func (s *Store) UpdateQuest(q *Quest) error {
	q.UpdatedAt = now()
	res, err := s.db.Exec(`
		UPDATE quests SET content = ?, is_complete = ?, date_due = ?, time_due = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		q.Content, q.IsComplete, nullString(q.DateDue), nullString(q.TimeDue), q.CompletedAt, q.UpdatedAt, q.ID)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	return requireRow(res, "quest", q.ID)
}

// CompleteQuest marks a quest complete and stamps completed_at.
func (s *Store) CompleteQuest(id string) error {
	ts := now()
	res, err := s.db.Exec(`
		UPDATE quests SET is_complete = 1, completed_at = ?, updated_at = ? WHERE id = ?`,
		ts, ts, id)
	if err != nil {
		return fmt.Errorf("failed to complete quest: %w", err)
	}
	return requireRow(res, "quest", id)
}

// DeleteQuest removes a quest by id.
func (s *Store) DeleteQuest(id string) error {
	res, err := s.db.Exec("DELETE FROM quests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}
	return requireRow(res, "quest", id)
}

func scanQuest(row *sql.Row) (*Quest, error) {
	var q Quest
	var dateDue, timeDue sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&q.ID, &q.UserID, &q.Content, &q.IsComplete, &q.DateCreated,
		&dateDue, &timeDue, &completedAt, &q.CreatedAt, &q.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan quest: %w", err)
	}
	q.DateDue = dateDue.String
	q.TimeDue = timeDue.String
	if completedAt.Valid {
		t := completedAt.Time
		q.CompletedAt = &t
	}
	return &q, nil
}

func collectQuests(rows *sql.Rows) ([]Quest, error) {
	var quests []Quest
	for rows.Next() {
		var q Quest
		var dateDue, timeDue sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&q.ID, &q.UserID, &q.Content, &q.IsComplete, &q.DateCreated,
			&dateDue, &timeDue, &completedAt, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		q.DateDue = dateDue.String
		q.TimeDue = timeDue.String
		if completedAt.Valid {
			t := completedAt.Time
			q.CompletedAt = &t
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", entity, id)
	}
	return nil
}
