package store

import "fmt"

// RecordCommand persists one assistant exchange into the audit log.
// The stored command is the user's literal message, not the augmented
// text sent to the model.
func (s *Store) RecordCommand(c *AICommand) error {
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = now()

	_, err := s.db.Exec(`
		INSERT INTO ai_commands (id, user_id, command, response, success, error_message, execution_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Command, nullString(c.Response), c.Success, nullString(c.Error), c.ExecutionMS, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	return nil
}

// CommandStats aggregates a user's assistant command history.
func (s *Store) CommandStats(userID string) (*CommandStats, error) {
	var stats CommandStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(SUM(CASE WHEN date(created_at) = date('now') THEN 1 ELSE 0 END), 0)
		FROM ai_commands WHERE user_id = ?`, userID).
		Scan(&stats.TotalCommands, &stats.SuccessfulCommands, &stats.CommandsToday)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate command stats: %w", err)
	}
	stats.FailedCommands = stats.TotalCommands - stats.SuccessfulCommands
	if stats.TotalCommands > 0 {
		stats.SuccessRate = float64(stats.SuccessfulCommands) / float64(stats.TotalCommands) * 100
	}
	return &stats, nil
}
