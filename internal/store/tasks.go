package store

import (
	"database/sql"
	"fmt"
	"time"
)

// NewTask holds the fields accepted when creating a task. A zero CreatedAt
// means "now".
type NewTask struct {
	Title       string
	Description string
	Priority    string
	Deadline    string
	Tags        string
	CreatedAt   time.Time
}

type taskRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Priority    sql.NullString `db:"priority"`
	Deadline    sql.NullString `db:"deadline"`
	Status      string         `db:"status"`
	Tags        string         `db:"tags"`
	CreatedAt   string         `db:"created_at"`
	CompletedAt sql.NullString `db:"completed_at"`
}

const taskColumns = `id, title, description, priority, deadline, status, tags, created_at, completed_at`

func (r taskRow) toTask() Task {
	t := Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority.String,
		Deadline:    r.Deadline.String,
		Status:      r.Status,
		Tags:        r.Tags,
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	if r.CompletedAt.Valid {
		c, _ := time.Parse(time.RFC3339, r.CompletedAt.String)
		t.CompletedAt = &c
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateTask(in NewTask) (*Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("insert task: title is required")
	}
	if !ValidPriority(in.Priority) {
		return nil, fmt.Errorf("insert task: invalid priority %q", in.Priority)
	}
	if in.Deadline != "" {
		if _, err := time.Parse(DateLayout, in.Deadline); err != nil {
			return nil, fmt.Errorf("insert task: deadline %q is not YYYY-MM-DD", in.Deadline)
		}
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, description, priority, deadline, tags, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title, in.Description, nullString(in.Priority), nullString(in.Deadline), NormalizeTags(in.Tags),
		created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	var row taskRow
	err := s.db.Get(&row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	t := row.toTask()
	return &t, nil
}

func (s *Store) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, f.Priority)
	}
	// instr matches literally; LIKE would treat _ and % in a tag as wildcards.
	if tag := NormalizeTags(f.Tag); tag != "" {
		query += ` AND instr(',' || tags || ',', ?) > 0`
		args = append(args, ","+tag+",")
	}
	query += ` ORDER BY id`

	return s.selectTasks("list tasks", query, args...)
}

// CompleteTask marks a task completed at the given instant. Completing an
// already-completed task keeps the original completion time.
func (s *Store) CompleteTask(id int64, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET status = 'completed', completed_at = COALESCE(completed_at, ?) WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("complete task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (s *Store) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ListTasksCompletedWithin returns tasks whose completion falls in [from, to).
func (s *Store) ListTasksCompletedWithin(from, to time.Time) ([]Task, error) {
	return s.selectTasks("list completed tasks", `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = 'completed'
		  AND completed_at >= ? AND completed_at < ?
		ORDER BY id`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
}

// ListTasksPendingAsOf returns tasks that existed before at and were not yet
// completed at that instant.
func (s *Store) ListTasksPendingAsOf(at time.Time) ([]Task, error) {
	ts := at.UTC().Format(time.RFC3339)
	return s.selectTasks("list pending tasks", `
		SELECT `+taskColumns+` FROM tasks
		WHERE created_at < ?
		  AND (status = 'pending' OR completed_at >= ?)
		ORDER BY id`,
		ts, ts,
	)
}

func (s *Store) selectTasks(op, query string, args ...any) ([]Task, error) {
	var rows []taskRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var tasks []Task
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}
