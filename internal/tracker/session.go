package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/corhyn/internal/logger"
	"github.com/sadopc/corhyn/internal/store"
)

// Session is the in-progress interval for one task.
type Session struct {
	TaskID    int64
	StartTime time.Time
}

// Elapsed returns how long the session has been running at now.
func (s Session) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// deps are the collaborators shared by the tracker, pomodoro timer and
// aggregator.
type deps struct {
	tasks   TaskSource
	journal SessionJournal
	clock   Clock
	log     *logger.Logger
}

func newDeps(opts []Option) deps {
	d := deps{clock: SystemClock{}, log: logger.Default()}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

type Option func(*deps)

// WithTaskSource makes task ids validated against ts and gives reports their
// labels.
func WithTaskSource(ts TaskSource) Option {
	return func(d *deps) { d.tasks = ts }
}

// WithJournal mirrors the tracker's active session into j so it survives
// restarts.
func WithJournal(j SessionJournal) Option {
	return func(d *deps) { d.journal = j }
}

func WithClock(c Clock) Option {
	return func(d *deps) { d.clock = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(d *deps) { d.log = l }
}

// Tracker owns the single active tracking session.
type Tracker struct {
	deps
	mu      sync.Mutex
	entries EntryStore
	active  *Session
}

func NewTracker(entries EntryStore, opts ...Option) *Tracker {
	return &Tracker{deps: newDeps(opts), entries: entries}
}

// Restore loads a journaled session, if any. It is a no-op without a journal.
func (t *Tracker) Restore() error {
	if t.journal == nil {
		return nil
	}
	a, err := t.journal.LoadActiveSession()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if a == nil {
		t.active = nil
		return nil
	}
	t.active = &Session{TaskID: a.TaskID, StartTime: a.StartTime}
	t.log.WithTaskID(a.TaskID).Debug("session restored", zap.Time("start_time", a.StartTime))
	return nil
}

// Start begins tracking taskID. It never replaces a running session.
func (t *Tracker) Start(taskID int64) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return nil, fmt.Errorf("%w: session for task %d already running since %s",
			ErrConflict, t.active.TaskID, t.active.StartTime.Local().Format("15:04"))
	}
	if err := t.checkTask(taskID); err != nil {
		return nil, err
	}

	s := &Session{TaskID: taskID, StartTime: t.clock.Now()}
	if t.journal != nil {
		if err := t.journal.SaveActiveSession(store.ActiveSession{TaskID: s.TaskID, StartTime: s.StartTime}); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}
	t.active = s
	t.log.WithTaskID(taskID).Info("session started")

	cp := *s
	return &cp, nil
}

// Stop ends the active session and persists it as a time entry.
func (t *Tracker) Stop() (*store.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return nil, ErrNoActiveSession
	}

	now := t.clock.Now()
	taskID := t.active.TaskID
	entry := store.TimeEntry{
		TaskID:          &taskID,
		Kind:            store.KindTracked,
		StartTime:       t.active.StartTime,
		EndTime:         now,
		DurationMinutes: RoundMinutes(now.Sub(t.active.StartTime)),
	}
	if entry.EndTime.Before(entry.StartTime) {
		entry.EndTime = entry.StartTime
	}

	id, err := t.entries.InsertEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}
	entry.ID = id

	if t.journal != nil {
		if err := t.journal.ClearActiveSession(); err != nil {
			// The entry is already written; keep memory consistent with it.
			t.active = nil
			return &entry, fmt.Errorf("stop session: %w", err)
		}
	}
	t.active = nil
	t.log.WithTaskID(taskID).Info("session stopped", zap.Int64("duration_minutes", entry.DurationMinutes))
	return &entry, nil
}

// Current returns a copy of the active session, or nil.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return nil
	}
	cp := *t.active
	return &cp
}

// maxManualMinutes is the longest duration representable as a time.Duration.
const maxManualMinutes = math.MaxInt64 / int64(time.Minute)

// AddManual records minutes of work on taskID ending now. It does not touch
// the active session.
func (t *Tracker) AddManual(taskID int64, minutes int64, notes string) (*store.TimeEntry, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d minutes", ErrValidation, minutes)
	}
	if minutes > maxManualMinutes {
		return nil, fmt.Errorf("%w: duration of %d minutes is too long", ErrValidation, minutes)
	}
	if err := t.checkTask(taskID); err != nil {
		return nil, err
	}

	now := t.clock.Now()
	entry := store.TimeEntry{
		TaskID:          &taskID,
		Kind:            store.KindManual,
		StartTime:       now.Add(-time.Duration(minutes) * time.Minute),
		EndTime:         now,
		DurationMinutes: minutes,
		Notes:           notes,
	}
	id, err := t.entries.InsertEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("add manual entry: %w", err)
	}
	entry.ID = id
	t.log.WithTaskID(taskID).Info("manual entry added", zap.Int64("duration_minutes", minutes))
	return &entry, nil
}

func (d deps) checkTask(taskID int64) error {
	if d.tasks == nil {
		return nil
	}
	if _, err := d.tasks.GetTask(taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unknown task %d", ErrValidation, taskID)
		}
		return fmt.Errorf("look up task: %w", err)
	}
	return nil
}
