package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
)

// timerModel mirrors the tracker's active session for display. The tracker
// owns the session; the model only caches what it renders.
type timerModel struct {
	svc Services

	session   *tracker.Session
	elapsed   time.Duration
	taskTitle string
	titleFor  int64
}

func newTimerModel(svc Services) timerModel {
	t := timerModel{svc: svc}
	t.refresh()
	return t
}

// refresh re-reads the active session and recomputes elapsed time.
func (t *timerModel) refresh() {
	t.session = t.svc.Tracker.Current()
	if t.session == nil {
		t.elapsed = 0
		t.taskTitle = ""
		t.titleFor = 0
		return
	}
	if t.titleFor != t.session.TaskID {
		t.titleFor = t.session.TaskID
		t.taskTitle = fmt.Sprintf("task #%d", t.session.TaskID)
		if task, err := t.svc.Store.GetTask(t.session.TaskID); err == nil {
			t.taskTitle = task.Title
		}
	}
	t.elapsed = t.session.Elapsed(t.svc.now())
}

func (t *timerModel) start(taskID int64) error {
	if _, err := t.svc.Tracker.Start(taskID); err != nil {
		return err
	}
	t.refresh()
	return nil
}

func (t *timerModel) stop() (*store.TimeEntry, error) {
	entry, err := t.svc.Tracker.Stop()
	t.refresh()
	return entry, err
}

func (t timerModel) running() bool {
	return t.session != nil
}

func (t timerModel) currentElapsed() time.Duration {
	return t.elapsed
}
