package store

import (
	"database/sql"
	"fmt"
)

// CreateBoard inserts a new board.
func (s *Store) CreateBoard(b *Board) error {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.Color == "" {
		b.Color = "#6366f1"
	}
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt

	_, err := s.db.Exec(`
		INSERT INTO boards (id, user_id, title, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Title, b.Description, b.Color, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}
	return nil
}

// GetBoard returns the board with the given id, or nil if absent.
func (s *Store) GetBoard(id string) (*Board, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, description, color, created_at, updated_at
		FROM boards WHERE id = ?`, id)
	var b Board
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Description, &b.Color, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan board: %w", err)
	}
	return &b, nil
}

// ListBoards returns up to limit of the user's boards, newest first.
func (s *Store) ListBoards(userID string, limit int) ([]Board, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, color, created_at, updated_at
		FROM boards WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Description, &b.Color, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// DeleteBoard removes a board and, via the foreign key cascade, its cards.
// Done in one transaction so a failure leaves both tables untouched.
func (s *Store) DeleteBoard(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	res, err := tx.Exec("DELETE FROM boards WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if err := requireRow(res, "board", id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateCard inserts a new card. The board must exist.
func (s *Store) CreateCard(c *Card) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = "todo"
	}
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.Exec(`
		INSERT INTO cards (id, board_id, title, description, status, position, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BoardID, c.Title, c.Description, c.Status, c.Position, nullString(c.DueDate), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// ListCards returns the cards on a board in position order.
func (s *Store) ListCards(boardID string) ([]Card, error) {
	rows, err := s.db.Query(`
		SELECT id, board_id, title, description, status, position, due_date, created_at, updated_at
		FROM cards WHERE board_id = ?
		ORDER BY position ASC, created_at ASC`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		var dueDate sql.NullString
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Title, &c.Description, &c.Status, &c.Position, &dueDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		c.DueDate = dueDate.String
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
