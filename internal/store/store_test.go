package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var day = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

// insertEntry is a test helper that stores an entry starting offset after day.
func insertEntry(t *testing.T, s *Store, taskID *int64, kind EntryKind, offset time.Duration, minutes int64) int64 {
	t.Helper()
	start := day.Add(offset)
	id, err := s.InsertEntry(TimeEntry{
		TaskID:          taskID,
		Kind:            kind,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
	})
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	return id
}

func createTask(t *testing.T, s *Store, title, priority string) *Task {
	t.Helper()
	task, err := s.CreateTask(NewTask{Title: title, Priority: priority, CreatedAt: day.AddDate(0, 0, -7)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "corhyn.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	task, err := s.CreateTask(NewTask{Title: "survives reopen"})
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.GetTask(task.ID)
	if err != nil {
		t.Fatalf("task lost across reopen: %v", err)
	}
	if got.Title != "survives reopen" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "corhyn.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)
	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	task, err := s.CreateTask(NewTask{
		Title:       "Write report",
		Description: "quarterly numbers",
		Priority:    PriorityHigh,
		Deadline:    "2026-03-31",
		Tags:        "Work, finance",
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Write report" || got.Priority != PriorityHigh || got.Deadline != "2026-03-31" {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.Status != StatusPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
	if got.Tags != "work,finance" {
		t.Fatalf("tags = %q, want normalized", got.Tags)
	}
	if got.CompletedAt != nil {
		t.Fatal("new task should not be completed")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestStore(t)
	bad := []NewTask{
		{Title: ""},
		{Title: "x", Priority: "urgent"},
		{Title: "x", Deadline: "next tuesday"},
	}
	for _, in := range bad {
		if _, err := s.CreateTask(in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
}

func TestCreateTaskNoPriority(t *testing.T) {
	s := newTestStore(t)
	task := createTask(t, s, "plain", "")
	if task.Priority != "" {
		t.Fatalf("priority = %q, want empty", task.Priority)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask(999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	s := newTestStore(t)
	a := createTask(t, s, "A", PriorityHigh)
	createTask(t, s, "B", PriorityLow)
	if _, err := s.CreateTask(NewTask{Title: "C", Tags: "home,errands"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CompleteTask(a.ID, day); err != nil {
		t.Fatal(err)
	}

	all, _ := s.ListTasks(TaskFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	pending, _ := s.ListTasks(TaskFilter{Status: StatusPending})
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	high, _ := s.ListTasks(TaskFilter{Priority: PriorityHigh})
	if len(high) != 1 || high[0].Title != "A" {
		t.Fatalf("priority filter returned %+v", high)
	}
	home, _ := s.ListTasks(TaskFilter{Tag: "Home"})
	if len(home) != 1 || home[0].Title != "C" {
		t.Fatalf("tag filter returned %+v", home)
	}
	none, _ := s.ListTasks(TaskFilter{Tag: "err"})
	if len(none) != 0 {
		t.Fatalf("tag filter must match whole tags, got %+v", none)
	}
}

func TestListTasksTagFilterIsLiteral(t *testing.T) {
	s := newTestStore(t)
	for _, tc := range []struct{ title, tags string }{
		{"abc", "abc"},
		{"work", "work"},
		{"snake", "a_c"},
		{"percent", "50%"},
	} {
		if _, err := s.CreateTask(NewTask{Title: tc.title, Tags: tc.tags}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		tag  string
		want []string
	}{
		{"a_c", []string{"snake"}},
		{"%", nil},
		{"50%", []string{"percent"}},
		{"_", nil},
		{" , ", []string{"abc", "work", "snake", "percent"}},
	}
	for _, tt := range tests {
		tasks, err := s.ListTasks(TaskFilter{Tag: tt.tag})
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, task := range tasks {
			got = append(got, task.Title)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("tag %q matched %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestCompleteTask(t *testing.T) {
	s := newTestStore(t)
	task := createTask(t, s, "A", "")

	first := day.Add(3 * time.Hour)
	if err := s.CompleteTask(task.ID, first); err != nil {
		t.Fatal(err)
	}
	if err := s.CompleteTask(task.ID, first.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(first) {
		t.Fatalf("completed_at = %v, want %v", got.CompletedAt, first)
	}

	if err := s.CompleteTask(999, day); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteTaskDetachesEntries(t *testing.T) {
	s := newTestStore(t)
	task := createTask(t, s, "A", "")
	id := insertEntry(t, s, &task.ID, KindTracked, 9*time.Hour, 30)

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	e, err := s.GetEntry(id)
	if err != nil {
		t.Fatalf("entry should survive task deletion: %v", err)
	}
	if e.TaskID != nil {
		t.Fatalf("task_id = %d, want NULL", *e.TaskID)
	}
	if err := s.DeleteTask(task.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCompletedWithinAndPendingAsOf(t *testing.T) {
	s := newTestStore(t)
	early := createTask(t, s, "early", "")
	inside := createTask(t, s, "inside", "")
	late := createTask(t, s, "late", "")
	createTask(t, s, "open", "")
	if _, err := s.CreateTask(NewTask{Title: "future", CreatedAt: day.AddDate(0, 0, 10)}); err != nil {
		t.Fatal(err)
	}

	from, to := day, day.AddDate(0, 0, 7)
	s.CompleteTask(early.ID, from.Add(-time.Hour))
	s.CompleteTask(inside.ID, from.Add(time.Hour))
	s.CompleteTask(late.ID, to.Add(time.Hour))

	done, err := s.ListTasksCompletedWithin(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0].Title != "inside" {
		t.Fatalf("completed within = %+v", done)
	}

	pending, err := s.ListTasksPendingAsOf(to)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, p := range pending {
		titles = append(titles, p.Title)
	}
	if len(titles) != 2 || titles[0] != "late" || titles[1] != "open" {
		t.Fatalf("pending as of end = %v, want [late open]", titles)
	}
}

// ============================================================
// Tags
// ============================================================

func TestNormalizeTags(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		" Work, urgent,,work ": "work,urgent",
		"a":                    "a",
		",,,":                  "",
	}
	for in, want := range tests {
		if got := NormalizeTags(in); got != want {
			t.Errorf("NormalizeTags(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListTags(t *testing.T) {
	s := newTestStore(t)
	s.CreateTask(NewTask{Title: "a", Tags: "work,urgent"})
	b, _ := s.CreateTask(NewTask{Title: "b", Tags: "work"})
	s.CreateTask(NewTask{Title: "c"})
	s.CompleteTask(b.ID, day)

	tags, err := s.ListTags()
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %+v", tags)
	}
	if tags[0] != (TagCount{Name: "urgent", Tasks: 1, Pending: 1}) {
		t.Fatalf("tags[0] = %+v", tags[0])
	}
	if tags[1] != (TagCount{Name: "work", Tasks: 2, Pending: 1}) {
		t.Fatalf("tags[1] = %+v", tags[1])
	}
}

// ============================================================
// Time entries
// ============================================================

func TestInsertAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	task := createTask(t, s, "A", "")
	id := insertEntry(t, s, &task.ID, KindManual, 9*time.Hour, 45)

	e, err := s.GetEntry(id)
	if err != nil {
		t.Fatal(err)
	}
	if e.DurationMinutes != 45 || e.Kind != KindManual {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.TaskID == nil || *e.TaskID != task.ID {
		t.Fatalf("task_id = %v, want %d", e.TaskID, task.ID)
	}
	if !e.StartTime.Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("start = %v", e.StartTime)
	}
	if !e.CreatedAt.Equal(e.EndTime) {
		t.Fatalf("created_at defaults to end time, got %v", e.CreatedAt)
	}
}

func TestInsertEntryDefaultsAndValidation(t *testing.T) {
	s := newTestStore(t)
	id, err := s.InsertEntry(TimeEntry{StartTime: day, EndTime: day})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := s.GetEntry(id)
	if e.Kind != KindTracked {
		t.Fatalf("kind = %q, want tracked", e.Kind)
	}
	if e.TaskID != nil {
		t.Fatal("expected NULL task_id")
	}

	if _, err := s.InsertEntry(TimeEntry{StartTime: day, EndTime: day, DurationMinutes: -1}); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestQueryWithinHalfOpen(t *testing.T) {
	s := newTestStore(t)
	insertEntry(t, s, nil, KindTracked, -time.Minute, 10)
	insertEntry(t, s, nil, KindTracked, 0, 20)
	insertEntry(t, s, nil, KindTracked, 23*time.Hour, 30)
	insertEntry(t, s, nil, KindTracked, 24*time.Hour, 40)

	got, err := s.QueryWithin(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].DurationMinutes != 20 || got[1].DurationMinutes != 30 {
		t.Fatalf("QueryWithin = %+v", got)
	}

	all, _ := s.AllEntries()
	if len(all) != 4 || all[0].DurationMinutes != 10 {
		t.Fatalf("AllEntries should be oldest first, got %+v", all)
	}
}

func TestListEntriesFilters(t *testing.T) {
	s := newTestStore(t)
	a := createTask(t, s, "A", "")
	insertEntry(t, s, &a.ID, KindTracked, time.Hour, 10)
	insertEntry(t, s, &a.ID, KindPomodoro, 2*time.Hour, 25)
	insertEntry(t, s, nil, KindManual, 3*time.Hour, 5)

	all, _ := s.ListEntries(EntryFilter{})
	if len(all) != 3 || all[0].DurationMinutes != 5 {
		t.Fatalf("expected newest first, got %+v", all)
	}
	byTask, _ := s.ListEntries(EntryFilter{TaskID: &a.ID})
	if len(byTask) != 2 {
		t.Fatalf("task filter returned %d", len(byTask))
	}
	pomos, _ := s.ListEntries(EntryFilter{Kind: KindPomodoro})
	if len(pomos) != 1 {
		t.Fatalf("kind filter returned %d", len(pomos))
	}
	limited, _ := s.ListEntries(EntryFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limit returned %d", len(limited))
	}
	from := day.Add(90 * time.Minute)
	to := day.Add(150 * time.Minute)
	ranged, _ := s.ListEntries(EntryFilter{From: &from, To: &to})
	if len(ranged) != 1 || ranged[0].Kind != KindPomodoro {
		t.Fatalf("range filter returned %+v", ranged)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	id := insertEntry(t, s, nil, KindTracked, 0, 10)
	if err := s.DeleteEntry(id); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(id); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestGetTodayTotal(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	for _, e := range []struct {
		start   time.Time
		minutes int64
	}{
		{today.Add(time.Hour), 30},
		{today.Add(2 * time.Hour), 15},
		{today.Add(-time.Hour), 99},
	} {
		if _, err := s.InsertEntry(TimeEntry{StartTime: e.start, EndTime: e.start, DurationMinutes: e.minutes}); err != nil {
			t.Fatal(err)
		}
	}
	total, err := s.GetTodayTotal(now)
	if err != nil {
		t.Fatal(err)
	}
	if total != 45 {
		t.Fatalf("today total = %d, want 45", total)
	}
}

// ============================================================
// Active session
// ============================================================

func TestActiveSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	a, err := s.LoadActiveSession()
	if err != nil || a != nil {
		t.Fatalf("expected no session, got %+v, %v", a, err)
	}

	start := day.Add(9 * time.Hour)
	if err := s.SaveActiveSession(ActiveSession{TaskID: 7, StartTime: start}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveActiveSession(ActiveSession{TaskID: 8, StartTime: start}); err == nil {
		t.Fatal("saving a second session should fail")
	}

	a, err = s.LoadActiveSession()
	if err != nil {
		t.Fatal(err)
	}
	if a.TaskID != 7 || !a.StartTime.Equal(start) {
		t.Fatalf("loaded %+v", a)
	}

	if err := s.ClearActiveSession(); err != nil {
		t.Fatal(err)
	}
	a, _ = s.LoadActiveSession()
	if a != nil {
		t.Fatal("session should be cleared")
	}
}

// ============================================================
// Pomodoro stats
// ============================================================

func TestGetPomodoroStats(t *testing.T) {
	s := newTestStore(t)
	insertEntry(t, s, nil, KindPomodoro, time.Hour, 25)
	insertEntry(t, s, nil, KindPomodoro, 2*time.Hour, 25)
	insertEntry(t, s, nil, KindTracked, 3*time.Hour, 60)
	insertEntry(t, s, nil, KindPomodoro, 30*time.Hour, 25)

	n, minutes, err := s.GetPomodoroStats(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || minutes != 50 {
		t.Fatalf("got %d pomodoros / %d minutes, want 2 / 50", n, minutes)
	}
}
