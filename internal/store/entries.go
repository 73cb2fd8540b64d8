package store

import (
	"database/sql"
	"fmt"
	"time"
)

type entryRow struct {
	ID              int64         `db:"id"`
	TaskID          sql.NullInt64 `db:"task_id"`
	Kind            string        `db:"kind"`
	StartTime       string        `db:"start_time"`
	EndTime         string        `db:"end_time"`
	DurationMinutes int64         `db:"duration_minutes"`
	Notes           string        `db:"notes"`
	CreatedAt       string        `db:"created_at"`
}

const entryColumns = `id, task_id, kind, start_time, end_time, duration_minutes, notes, created_at`

func (r entryRow) toEntry() TimeEntry {
	e := TimeEntry{
		ID:              r.ID,
		Kind:            EntryKind(r.Kind),
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}
	if r.TaskID.Valid {
		id := r.TaskID.Int64
		e.TaskID = &id
	}
	e.StartTime, _ = time.Parse(time.RFC3339, r.StartTime)
	e.EndTime, _ = time.Parse(time.RFC3339, r.EndTime)
	e.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	return e
}

// InsertEntry persists a completed time entry and returns its new id.
func (s *Store) InsertEntry(e TimeEntry) (int64, error) {
	if e.DurationMinutes < 0 {
		return 0, fmt.Errorf("insert entry: negative duration %d", e.DurationMinutes)
	}
	kind := e.Kind
	if kind == "" {
		kind = KindTracked
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = e.EndTime
	}
	res, err := s.db.Exec(
		`INSERT INTO time_entries (task_id, kind, start_time, end_time, duration_minutes, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.TaskID, string(kind),
		e.StartTime.UTC().Format(time.RFC3339), e.EndTime.UTC().Format(time.RFC3339),
		e.DurationMinutes, e.Notes, created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *Store) GetEntry(id int64) (*TimeEntry, error) {
	var row entryRow
	err := s.db.Get(&row, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	e := row.toEntry()
	return &e, nil
}

func (s *Store) DeleteEntry(id int64) error {
	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete entry %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ListEntries returns entries matching f, most recent first.
func (s *Store) ListEntries(f EntryFilter) ([]TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE 1=1`
	var args []any

	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	return s.selectEntries("list entries", query, args...)
}

// QueryWithin returns every entry whose start_time falls in [from, to),
// oldest first.
func (s *Store) QueryWithin(from, to time.Time) ([]TimeEntry, error) {
	return s.selectEntries("query entries", `
		SELECT `+entryColumns+` FROM time_entries
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time, id`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
}

// AllEntries returns every entry, oldest first.
func (s *Store) AllEntries() ([]TimeEntry, error) {
	return s.selectEntries("all entries", `SELECT `+entryColumns+` FROM time_entries ORDER BY start_time, id`)
}

func (s *Store) selectEntries(op, query string, args ...any) ([]TimeEntry, error) {
	var rows []entryRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var entries []TimeEntry
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// GetTodayTotal returns the minutes recorded for entries starting on the
// local calendar day containing now.
func (s *Store) GetTodayTotal(now time.Time) (int64, error) {
	local := now.Local()
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var total int64
	err := s.db.Get(&total, `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM time_entries
		WHERE start_time >= ? AND start_time < ?`,
		dayStart.UTC().Format(time.RFC3339), dayEnd.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("today total: %w", err)
	}
	return total, nil
}
