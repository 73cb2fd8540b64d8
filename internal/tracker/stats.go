package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/corhyn/internal/store"
)

// PriorityNone groups tasks that carry no priority.
const PriorityNone = "none"

const (
	noTaskLabel      = "(no task)"
	unknownTaskLabel = "Unknown"
)

var priorityOrder = []string{store.PriorityHigh, store.PriorityMedium, store.PriorityLow, PriorityNone}

type TaskMinutes struct {
	TaskID   *int64
	Title    string
	Priority string
	Minutes  int64
	Sessions int
}

type DayMinutes struct {
	Date    time.Time // local midnight
	Minutes int64
}

// PriorityRate is completed / (completed + pending at period end).
type PriorityRate struct {
	Priority  string
	Completed int
	Pending   int
	Rate      float64
}

// Report is the aggregate over one period. PerDay, Hours and
// MostProductiveHour are only filled when Detailed is set.
type Report struct {
	Bucket   Bucket
	Detailed bool

	TotalMinutes   int64
	Sessions       int
	ActiveTasks    int
	TasksCompleted int
	Pomodoros      int

	PerTask    []TaskMinutes
	Priorities []PriorityRate

	PerDay []DayMinutes
	// Hours[h] holds the minutes of entries starting in hour h. An entry is
	// attributed wholly to its starting hour even when it runs past it.
	Hours              []int64
	MostProductiveHour int // -1 when there is no data
}

// Aggregator derives reports from stored entries. It holds no mutable state.
type Aggregator struct {
	deps
	entries EntryStore
}

func NewAggregator(entries EntryStore, opts ...Option) *Aggregator {
	return &Aggregator{deps: newDeps(opts), entries: entries}
}

// ComputeStats aggregates the period of the given kind containing ref.
func (a *Aggregator) ComputeStats(kind PeriodKind, ref time.Time, detailed bool) (*Report, error) {
	b, err := ResolveBucket(kind, ref)
	if err != nil {
		return nil, err
	}
	return a.ComputeBucket(b, detailed)
}

// ComputeBucket aggregates an already resolved period. Entries belong to the
// period their start_time falls in.
func (a *Aggregator) ComputeBucket(b Bucket, detailed bool) (*Report, error) {
	entries, err := a.entries.QueryWithin(b.Start, b.End)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}

	r := &Report{Bucket: b, Detailed: detailed, MostProductiveHour: -1}
	labels := newLabelCache(a.tasks)

	perTask := make(map[int64]*TaskMinutes)
	activeTasks := make(map[int64]bool)
	for _, e := range entries {
		r.TotalMinutes += e.DurationMinutes
		r.Sessions++
		if e.Kind == store.KindPomodoro {
			r.Pomodoros++
		}

		var key int64
		if e.TaskID != nil {
			key = *e.TaskID
			activeTasks[key] = true
		}
		tm, ok := perTask[key]
		if !ok {
			title, priority, err := labels.lookup(e.TaskID)
			if err != nil {
				return nil, fmt.Errorf("compute stats: %w", err)
			}
			tm = &TaskMinutes{TaskID: e.TaskID, Title: title, Priority: priority}
			perTask[key] = tm
		}
		tm.Minutes += e.DurationMinutes
		tm.Sessions++
	}
	r.ActiveTasks = len(activeTasks)

	for _, tm := range perTask {
		r.PerTask = append(r.PerTask, *tm)
	}
	sort.Slice(r.PerTask, func(i, j int) bool {
		if r.PerTask[i].Minutes != r.PerTask[j].Minutes {
			return r.PerTask[i].Minutes > r.PerTask[j].Minutes
		}
		return taskKey(r.PerTask[i].TaskID) < taskKey(r.PerTask[j].TaskID)
	})

	if a.tasks != nil {
		completed, err := a.tasks.ListTasksCompletedWithin(b.Start, b.End)
		if err != nil {
			return nil, fmt.Errorf("compute stats: %w", err)
		}
		pending, err := a.tasks.ListTasksPendingAsOf(b.End)
		if err != nil {
			return nil, fmt.Errorf("compute stats: %w", err)
		}
		r.TasksCompleted = len(completed)
		r.Priorities = priorityRates(completed, pending)
	}

	if detailed {
		r.PerDay = perDay(b, entries)
		r.Hours, r.MostProductiveHour = hourHistogram(b.Start.Location(), entries)
	}

	a.log.Debug("stats computed",
		zap.String("period", string(b.Kind)),
		zap.Time("start", b.Start),
		zap.Int("sessions", r.Sessions),
		zap.Int64("total_minutes", r.TotalMinutes),
	)
	return r, nil
}

func taskKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func priorityRates(completed, pending []store.Task) []PriorityRate {
	counts := make(map[string]*PriorityRate)
	group := func(t store.Task) *PriorityRate {
		p := t.Priority
		if p == "" {
			p = PriorityNone
		}
		pr, ok := counts[p]
		if !ok {
			pr = &PriorityRate{Priority: p}
			counts[p] = pr
		}
		return pr
	}
	for _, t := range completed {
		group(t).Completed++
	}
	for _, t := range pending {
		group(t).Pending++
	}

	var rates []PriorityRate
	for _, p := range priorityOrder {
		pr, ok := counts[p]
		if !ok {
			continue
		}
		if total := pr.Completed + pr.Pending; total > 0 {
			pr.Rate = float64(pr.Completed) / float64(total)
		}
		rates = append(rates, *pr)
	}
	return rates
}

func perDay(b Bucket, entries []store.TimeEntry) []DayMinutes {
	days := b.Days()
	out := make([]DayMinutes, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		out[i].Date = d
		index[d.Format("2006-01-02")] = i
	}
	loc := b.Start.Location()
	for _, e := range entries {
		if i, ok := index[e.StartTime.In(loc).Format("2006-01-02")]; ok {
			out[i].Minutes += e.DurationMinutes
		}
	}
	return out
}

func hourHistogram(loc *time.Location, entries []store.TimeEntry) ([]int64, int) {
	hours := make([]int64, 24)
	for _, e := range entries {
		hours[e.StartTime.In(loc).Hour()] += e.DurationMinutes
	}
	best := -1
	for h, m := range hours {
		if m > 0 && (best < 0 || m > hours[best]) {
			best = h
		}
	}
	return hours, best
}

// labelCache memoizes task lookups for one report.
type labelCache struct {
	tasks TaskSource
	seen  map[int64][2]string
}

func newLabelCache(ts TaskSource) *labelCache {
	return &labelCache{tasks: ts, seen: make(map[int64][2]string)}
}

// lookup labels a task reference. Deleted tasks and a missing TaskSource
// give the Unknown placeholder; other lookup failures are returned.
func (c *labelCache) lookup(id *int64) (title, priority string, err error) {
	if id == nil {
		return noTaskLabel, "", nil
	}
	if v, ok := c.seen[*id]; ok {
		return v[0], v[1], nil
	}
	title = unknownTaskLabel
	if c.tasks != nil {
		t, err := c.tasks.GetTask(*id)
		switch {
		case err == nil:
			title, priority = t.Title, t.Priority
		case !errors.Is(err, sql.ErrNoRows):
			return "", "", fmt.Errorf("look up task %d: %w", *id, err)
		}
	}
	c.seen[*id] = [2]string{title, priority}
	return title, priority, nil
}
