package store

import (
	"database/sql"
	"fmt"
)

// CreateJournalEntry inserts a new journal entry.
func (s *Store) CreateJournalEntry(j *JournalEntry) error {
	if j.ID == "" {
		j.ID = newID()
	}
	if j.Mood == "" {
		j.Mood = "okay"
	}
	if j.EntryDate == "" {
		j.EntryDate = DateOnly(now())
	}
	j.CreatedAt = now()
	j.UpdatedAt = j.CreatedAt

	_, err := s.db.Exec(`
		INSERT INTO journal_entries (id, user_id, title, content, mood, entry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.UserID, j.Title, j.Content, j.Mood, j.EntryDate, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

// GetJournalEntry returns the entry with the given id, or nil if absent.
func (s *Store) GetJournalEntry(id string) (*JournalEntry, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, content, mood, entry_date, created_at, updated_at
		FROM journal_entries WHERE id = ?`, id)
	var j JournalEntry
	err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Mood, &j.EntryDate, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	return &j, nil
}

// FindJournalEntriesByTitle returns the user's entries whose title or content
// contains fragment (case-insensitive), most recent entry date first. Ties
// break by insertion order, later insert first.
func (s *Store) FindJournalEntriesByTitle(userID, fragment string) ([]JournalEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, content, mood, entry_date, created_at, updated_at
		FROM journal_entries
		WHERE user_id = ? AND (instr(lower(title), lower(?)) > 0 OR instr(lower(content), lower(?)) > 0)
		ORDER BY entry_date DESC, created_at DESC, rowid DESC`, userID, fragment, fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entries: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var j JournalEntry
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.Mood, &j.EntryDate, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, j)
	}
	return entries, rows.Err()
}

// UpdateJournalEntry rewrites an entry's mutable fields.
func (s *Store) UpdateJournalEntry(j *JournalEntry) error {
	j.UpdatedAt = now()
	res, err := s.db.Exec(`
		UPDATE journal_entries SET title = ?, content = ?, mood = ?, entry_date = ?, updated_at = ?
		WHERE id = ?`,
		j.Title, j.Content, j.Mood, j.EntryDate, j.UpdatedAt, j.ID)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	return requireRow(res, "journal entry", j.ID)
}

// DeleteJournalEntry removes an entry by id.
func (s *Store) DeleteJournalEntry(id string) error {
	res, err := s.db.Exec("DELETE FROM journal_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return requireRow(res, "journal entry", id)
}
