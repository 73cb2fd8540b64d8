package store

import (
	"fmt"
	"time"
)

// GetPomodoroStats counts completed pomodoro entries starting in [from, to)
// and the minutes they account for.
func (s *Store) GetPomodoroStats(from, to time.Time) (completed int, minutes int64, err error) {
	var row struct {
		Count   int   `db:"n"`
		Minutes int64 `db:"minutes"`
	}
	err = s.db.Get(&row, `
		SELECT COUNT(*) AS n, COALESCE(SUM(duration_minutes), 0) AS minutes
		FROM time_entries
		WHERE kind = 'pomodoro'
		  AND start_time >= ? AND start_time < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("pomodoro stats: %w", err)
	}
	return row.Count, row.Minutes, nil
}
