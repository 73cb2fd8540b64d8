package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
)

const recentLimit = 5

type dashboardModel struct {
	svc     Services
	counter tracker.PomodoroCounter
	timer   timerModel
	width   int
	height  int

	today           *tracker.Report
	pomodoros       int
	pomodoroMinutes int64
	recent          []store.TimeEntry
	titles          map[int64]string
	pending         []store.Task

	goal progress.Model

	// Task picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(svc Services) dashboardModel {
	return dashboardModel{
		svc:     svc,
		counter: svc.Store,
		timer:   newTimerModel(svc),
		goal:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.goal.Width = max(10, w-30)
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }

func (d dashboardModel) elapsed() time.Duration { return d.timer.currentElapsed() }

type dashboardDataMsg struct {
	today           *tracker.Report
	pomodoros       int
	pomodoroMinutes int64
	recent          []store.TimeEntry
	titles          map[int64]string
	pending         []store.Task
	err             error
}

func (d dashboardModel) loadData() tea.Cmd {
	svc, counter := d.svc, d.counter
	return func() tea.Msg {
		now := svc.now()
		today, err := svc.Stats.ComputeStats(tracker.PeriodDay, now, false)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		day, _ := tracker.ResolveBucket(tracker.PeriodDay, now)
		pomodoros, pomodoroMinutes, err := counter.GetPomodoroStats(day.Start, day.End)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		recent, err := svc.Store.ListEntries(store.EntryFilter{Limit: recentLimit})
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		pending, err := svc.Store.ListTasks(store.TaskFilter{Status: store.StatusPending})
		if err != nil {
			return dashboardDataMsg{err: err}
		}

		titles := make(map[int64]string)
		for _, e := range recent {
			if e.TaskID == nil {
				continue
			}
			if _, ok := titles[*e.TaskID]; ok {
				continue
			}
			if t, err := svc.Store.GetTask(*e.TaskID); err == nil {
				titles[*e.TaskID] = t.Title
			}
		}

		return dashboardDataMsg{
			today:           today,
			pomodoros:       pomodoros,
			pomodoroMinutes: pomodoroMinutes,
			recent:          recent,
			titles:          titles,
			pending:         pending,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.err != nil {
			return d, errorCmd(msg.err)
		}
		d.today = msg.today
		d.pomodoros = msg.pomodoros
		d.pomodoroMinutes = msg.pomodoroMinutes
		d.recent = msg.recent
		d.titles = msg.titles
		d.pending = msg.pending
		if d.pickerCursor >= len(d.pending) {
			d.pickerCursor = max(0, len(d.pending)-1)
		}
		return d, nil

	case tickMsg:
		d.timer.refresh()
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.pending) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No pending tasks. Press 2 to go to Tasks and create one.", isError: true}
				}
			}
			if len(d.pending) == 1 {
				return d.startTimer(d.pending[0])
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			if !d.timer.running() {
				return d, nil
			}
			return d.stopTimer()
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.pending)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor < len(d.pending) {
			return d.startTimer(d.pending[d.pickerCursor])
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(task store.Task) (dashboardModel, tea.Cmd) {
	if err := d.timer.start(task.ID); err != nil {
		return d, errorCmd(err)
	}
	session := d.timer.session
	return d, func() tea.Msg { return sessionStartedMsg{session: session, title: task.Title} }
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	entry, err := d.timer.stop()
	if err != nil {
		return d, errorCmd(err)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return sessionStoppedMsg{entry: entry} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderTaskPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeDisplay := trackingClockStyle.Width(w - 6).Render(FormatDuration(d.timer.currentElapsed()))
		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			successStyle.Render("●  TRACKING"),
			valueStyle.Render(d.timer.taskTitle),
			dimStyle.Render("since "+d.timer.session.StartTime.Local().Format("15:04")),
		)
		return livePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		clockStyle.Width(w-6).Render("00:00:00"),
		dimStyle.Render("■  STOPPED"),
		dimStyle.Render("Press s to start tracking"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	var total int64
	if d.today != nil {
		total = d.today.TotalMinutes
	}
	header := fmt.Sprintf("%s  %s", titleStyle.Render("Today"), valueStyle.Render(FormatMinutes(total)))
	if d.pomodoros > 0 {
		header += dimStyle.Render(fmt.Sprintf("   %d pomodoros (%s)", d.pomodoros, FormatMinutes(d.pomodoroMinutes)))
	}

	rows := []string{header}
	if goal := d.svc.DailyGoalMinutes; goal > 0 {
		pct := float64(total) / float64(goal)
		if pct > 1 {
			pct = 1
		}
		rows = append(rows, fmt.Sprintf("%s  %s", d.goal.ViewAs(pct),
			dimStyle.Render(fmt.Sprintf("%s of %s goal", FormatMinutes(total), FormatMinutes(goal)))))
	}

	if d.today == nil || len(d.today.PerTask) == 0 {
		rows = append(rows, dimStyle.Render("No entries today"))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	for _, tm := range d.today.PerTask {
		dot := priorityStyle(tm.Priority).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-24s %8s  (%d sessions)",
			dot, truncate(tm.Title, 24), FormatMinutes(tm.Minutes), tm.Sessions))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			dimStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title}
	for _, e := range d.recent {
		name := "(no task)"
		if e.TaskID != nil {
			name = d.titles[*e.TaskID]
			if name == "" {
				name = "Unknown"
			}
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-20s %8s  %s",
			kindMark(e.Kind),
			e.StartTime.Local().Format("Jan 02 15:04"),
			truncate(name, 20),
			FormatMinutes(e.DurationMinutes),
			dimStyle.Render(string(e.Kind)),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTaskPicker(w int) string {
	rows := []string{titleStyle.Render("Select Task")}
	for i, t := range d.pending {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := priorityStyle(t.Priority).Render("●")
		rows = append(rows, style.Render(cursor)+dot+" "+style.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)))
	}
	rows = append(rows, "")
	rows = append(rows, dimStyle.Render("  enter: select  esc: cancel"))

	return livePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
