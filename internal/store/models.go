package store

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// DateLayout is the stored form of task deadlines.
const DateLayout = "2006-01-02"

// EntryKind records how a time entry was produced.
type EntryKind string

const (
	KindTracked  EntryKind = "tracked"
	KindManual   EntryKind = "manual"
	KindPomodoro EntryKind = "pomodoro"
)

type Task struct {
	ID          int64
	Title       string
	Description string
	Priority    string // "" when unset
	Deadline    string
	Status      string
	Tags        string // normalized, comma separated
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type TimeEntry struct {
	ID              int64
	TaskID          *int64
	Kind            EntryKind
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int64
	Notes           string
	CreatedAt       time.Time
}

// ActiveSession is the journal row for the live tracking session.
type ActiveSession struct {
	TaskID    int64
	StartTime time.Time
}

// TaskFilter is used to filter tasks in queries.
type TaskFilter struct {
	Status   string
	Priority string
	Tag      string
}

// EntryFilter is used to filter time entries in queries.
type EntryFilter struct {
	TaskID *int64
	Kind   EntryKind
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ValidPriority reports whether p is an accepted priority value. The empty
// string means "no priority" and is valid.
func ValidPriority(p string) bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether s is an accepted task status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}
