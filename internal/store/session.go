package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveActiveSession records the live tracking session. Only one row can
// exist; saving over an existing session fails.
func (s *Store) SaveActiveSession(a ActiveSession) error {
	_, err := s.db.Exec(
		`INSERT INTO active_session (id, task_id, start_time) VALUES (1, ?, ?)`,
		a.TaskID, a.StartTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save active session: %w", err)
	}
	return nil
}

// LoadActiveSession returns the journaled session, or nil when none is live.
func (s *Store) LoadActiveSession() (*ActiveSession, error) {
	var row struct {
		TaskID    int64  `db:"task_id"`
		StartTime string `db:"start_time"`
	}
	err := s.db.Get(&row, `SELECT task_id, start_time FROM active_session WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	a := &ActiveSession{TaskID: row.TaskID}
	a.StartTime, _ = time.Parse(time.RFC3339, row.StartTime)
	return a, nil
}

func (s *Store) ClearActiveSession() error {
	if _, err := s.db.Exec(`DELETE FROM active_session`); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
