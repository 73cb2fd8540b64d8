package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sadopc/corhyn/internal/logger"
	"github.com/sadopc/corhyn/internal/store"
)

// monday 2026-03-02 09:00 local.
var baseTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTask(t *testing.T, s *store.Store, title, priority string) int64 {
	t.Helper()
	task, err := s.CreateTask(store.NewTask{Title: title, Priority: priority, CreatedAt: baseTime.AddDate(0, 0, -30)})
	require.NoError(t, err)
	return task.ID
}

func testOpts(s *store.Store, c Clock) []Option {
	return []Option{WithTaskSource(s), WithClock(c), WithLogger(logger.Nop())}
}

// insertAt stores a finished entry starting at start.
func insertAt(t *testing.T, s *store.Store, taskID *int64, start time.Time, minutes int64) {
	t.Helper()
	_, err := s.InsertEntry(store.TimeEntry{
		TaskID:          taskID,
		Kind:            store.KindTracked,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
	})
	require.NoError(t, err)
}

func ptr(v int64) *int64 { return &v }

// failingEntries rejects every write.
type failingEntries struct{}

var errDiskFull = errors.New("disk full")

func (failingEntries) InsertEntry(store.TimeEntry) (int64, error) { return 0, errDiskFull }
func (failingEntries) QueryWithin(_, _ time.Time) ([]store.TimeEntry, error) {
	return nil, errDiskFull
}
func (failingEntries) AllEntries() ([]store.TimeEntry, error) { return nil, errDiskFull }

// brokenTasks answers every task lookup with err.
type brokenTasks struct {
	*store.Store
	err error
}

func (b brokenTasks) GetTask(int64) (*store.Task, error) { return nil, b.err }
