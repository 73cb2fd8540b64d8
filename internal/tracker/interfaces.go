package tracker

import (
	"time"

	"github.com/sadopc/corhyn/internal/store"
)

// EntryStore persists completed time entries.
type EntryStore interface {
	InsertEntry(e store.TimeEntry) (int64, error)
	QueryWithin(from, to time.Time) ([]store.TimeEntry, error)
	AllEntries() ([]store.TimeEntry, error)
}

// TaskSource resolves task references for validation and report labels.
type TaskSource interface {
	GetTask(id int64) (*store.Task, error)
	ListTasksCompletedWithin(from, to time.Time) ([]store.Task, error)
	ListTasksPendingAsOf(at time.Time) ([]store.Task, error)
}

// SessionJournal keeps the live session across process invocations.
type SessionJournal interface {
	SaveActiveSession(a store.ActiveSession) error
	LoadActiveSession() (*store.ActiveSession, error)
	ClearActiveSession() error
}

// PomodoroCounter reports completed pomodoros within a period.
type PomodoroCounter interface {
	GetPomodoroStats(from, to time.Time) (int, int64, error)
}

var (
	_ EntryStore      = (*store.Store)(nil)
	_ TaskSource      = (*store.Store)(nil)
	_ SessionJournal  = (*store.Store)(nil)
	_ PomodoroCounter = (*store.Store)(nil)
)
