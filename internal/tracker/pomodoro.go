package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/corhyn/internal/store"
)

type PomodoroState int

const (
	PomodoroRunning PomodoroState = iota
	PomodoroCompleted
	PomodoroCancelled
)

func (s PomodoroState) String() string {
	switch s {
	case PomodoroRunning:
		return "running"
	case PomodoroCompleted:
		return "completed"
	case PomodoroCancelled:
		return "cancelled"
	}
	return "unknown"
}

// PomodoroSession is one bounded countdown.
type PomodoroSession struct {
	TaskID         *int64
	PlannedMinutes int64
	StartTime      time.Time
	State          PomodoroState
	EntryID        int64 // set once completed
}

func (p PomodoroSession) Planned() time.Duration {
	return time.Duration(p.PlannedMinutes) * time.Minute
}

func (p PomodoroSession) Deadline() time.Time {
	return p.StartTime.Add(p.Planned())
}

// pollInterval bounds how long Wait sleeps between clock reads.
var pollInterval = time.Second

// PomodoroTimer runs at most one pomodoro at a time. Complete and Cancel are
// serialized; whichever comes first wins and the other gets
// ErrPomodoroNotRunning.
type PomodoroTimer struct {
	deps
	mu      sync.Mutex
	entries EntryStore
	current *PomodoroSession
}

func NewPomodoroTimer(entries EntryStore, opts ...Option) *PomodoroTimer {
	return &PomodoroTimer{deps: newDeps(opts), entries: entries}
}

// Begin starts a countdown of plannedMinutes, optionally attributed to a task.
func (p *PomodoroTimer) Begin(taskID *int64, plannedMinutes int64) (*PomodoroSession, error) {
	if plannedMinutes <= 0 {
		return nil, fmt.Errorf("%w: planned duration must be positive, got %d minutes", ErrValidation, plannedMinutes)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.State == PomodoroRunning {
		return nil, fmt.Errorf("%w: a pomodoro is already running", ErrConflict)
	}
	if taskID != nil {
		if err := p.checkTask(*taskID); err != nil {
			return nil, err
		}
		id := *taskID
		taskID = &id
	}

	p.current = &PomodoroSession{
		TaskID:         taskID,
		PlannedMinutes: plannedMinutes,
		StartTime:      p.clock.Now(),
		State:          PomodoroRunning,
	}
	p.log.Info("pomodoro started", zap.Int64("planned_minutes", plannedMinutes))

	cp := *p.current
	return &cp, nil
}

// Current returns a copy of the most recent session, running or not.
func (p *PomodoroTimer) Current() *PomodoroSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	cp := *p.current
	return &cp
}

// Remaining returns the time left on the running pomodoro, never negative.
func (p *PomodoroTimer) Remaining() (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.State != PomodoroRunning {
		return 0, ErrPomodoroNotRunning
	}
	rem := p.current.Deadline().Sub(p.clock.Now())
	if rem < 0 {
		rem = 0
	}
	return rem, nil
}

// Complete finishes the running pomodoro and records the planned duration,
// regardless of how much wall time actually passed.
func (p *PomodoroTimer) Complete() (*store.TimeEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.State != PomodoroRunning {
		return nil, ErrPomodoroNotRunning
	}

	s := p.current
	entry := store.TimeEntry{
		TaskID:          s.TaskID,
		Kind:            store.KindPomodoro,
		StartTime:       s.StartTime,
		EndTime:         s.Deadline(),
		DurationMinutes: s.PlannedMinutes,
	}
	id, err := p.entries.InsertEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("complete pomodoro: %w", err)
	}
	entry.ID = id
	s.EntryID = id
	s.State = PomodoroCompleted
	p.log.Info("pomodoro completed", zap.Int64("duration_minutes", s.PlannedMinutes))
	return &entry, nil
}

// Cancel abandons the running pomodoro. Nothing is persisted.
func (p *PomodoroTimer) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.State != PomodoroRunning {
		return ErrPomodoroNotRunning
	}
	p.current.State = PomodoroCancelled
	p.log.Info("pomodoro cancelled")
	return nil
}

// Wait blocks until the running pomodoro reaches its planned length and then
// completes it. It returns ctx.Err() if ctx ends first, leaving the pomodoro
// running, and ErrPomodoroNotRunning if it is cancelled meanwhile.
func (p *PomodoroTimer) Wait(ctx context.Context) (*store.TimeEntry, error) {
	for {
		rem, err := p.Remaining()
		if err != nil {
			return nil, err
		}
		if rem <= 0 {
			return p.Complete()
		}

		timer := time.NewTimer(min(rem, pollInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

type PhaseKind int

const (
	PhaseWork PhaseKind = iota
	PhaseShortBreak
	PhaseLongBreak
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseWork:
		return "WORK"
	case PhaseShortBreak:
		return "SHORT BREAK"
	case PhaseLongBreak:
		return "LONG BREAK"
	}
	return ""
}

// Phase is one step of a pomodoro plan. Round is 1-based.
type Phase struct {
	Kind     PhaseKind
	Round    int
	Duration time.Duration
}

// PomodoroPlan describes a full cycle: Rounds work phases separated by short
// breaks and followed by one long break.
type PomodoroPlan struct {
	Work       time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
	Rounds     int
}

func DefaultPlan() PomodoroPlan {
	return PomodoroPlan{
		Work:       25 * time.Minute,
		ShortBreak: 5 * time.Minute,
		LongBreak:  15 * time.Minute,
		Rounds:     4,
	}
}

func (p PomodoroPlan) Validate() error {
	if p.Work < time.Minute {
		return fmt.Errorf("%w: work phase must be at least one minute", ErrValidation)
	}
	if p.ShortBreak < 0 || p.LongBreak < 0 {
		return fmt.Errorf("%w: break lengths must not be negative", ErrValidation)
	}
	if p.Rounds <= 0 {
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrValidation, p.Rounds)
	}
	return nil
}

// WorkMinutes is the whole-minute work length recorded for each round.
func (p PomodoroPlan) WorkMinutes() int64 {
	return RoundMinutes(p.Work)
}

// Phases expands the plan. Zero-length breaks are skipped.
func (p PomodoroPlan) Phases() []Phase {
	var phases []Phase
	for round := 1; round <= p.Rounds; round++ {
		phases = append(phases, Phase{Kind: PhaseWork, Round: round, Duration: p.Work})
		switch {
		case round < p.Rounds && p.ShortBreak > 0:
			phases = append(phases, Phase{Kind: PhaseShortBreak, Round: round, Duration: p.ShortBreak})
		case round == p.Rounds && p.LongBreak > 0:
			phases = append(phases, Phase{Kind: PhaseLongBreak, Round: round, Duration: p.LongBreak})
		}
	}
	return phases
}
