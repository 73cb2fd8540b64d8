package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/corhyn/internal/logger"
	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTasks
	viewReports
	viewPomodoro
)

var viewNames = []string{"Dashboard", "Tasks", "Reports", "Pomodoro"}

// Services are the collaborators every view acts on. Store, Tracker,
// Pomodoro and Stats are required.
type Services struct {
	Store    *store.Store
	Tracker  *tracker.Tracker
	Pomodoro *tracker.PomodoroTimer
	Stats    *tracker.Aggregator
	Plan     tracker.PomodoroPlan
	Clock    tracker.Clock
	Log      *logger.Logger

	DailyGoalMinutes int64
	ExportDir        string
}

func (s Services) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s Services) log() *logger.Logger {
	if s.Log == nil {
		return logger.Default()
	}
	return s.Log
}

// --- Messages ---

type sessionStartedMsg struct {
	session *tracker.Session
	title   string
}

type sessionStoppedMsg struct {
	entry *store.TimeEntry
}

type taskCreatedMsg struct {
	task *store.Task
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
	rows int
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: "Error: " + err.Error(), isError: true} }
}

// --- Helpers ---

// FormatDuration renders d as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatMinutes renders whole minutes as "45m" or "2h 05m".
func FormatMinutes(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
