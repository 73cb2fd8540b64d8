package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/corhyn/internal/export"
)

// App is the root Bubble Tea model.
type App struct {
	svc    Services
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	tasks     tasksModel
	reports   reportsModel
	pomodoro  pomodoroModel

	help          help.Model
	status        string
	statusIsError bool
}

func NewApp(svc Services) App {
	h := help.New()
	h.ShowAll = false

	return App{
		svc:        svc,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(svc),
		tasks:      newTasksModel(svc),
		reports:    newReportsModel(svc),
		pomodoro:   newPomodoroModel(svc),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.pomodoro.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (e.g. form) sees keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewPomodoro
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Ticks drive both the session timer and the pomodoro countdown.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.pomodoro, cmd = a.pomodoro.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.statusIsError = msg.isError
		if msg.isError {
			a.svc.log().Warn("tui action failed", zap.String("message", msg.text))
		}
		return a, nil

	case sessionStartedMsg:
		a.setStatus("Tracking " + msg.title)
		a.dashboard.timer.refresh()
		return a, a.dashboard.loadData()

	case sessionStoppedMsg:
		a.setStatus("Stopped")
		if msg.entry != nil {
			a.setStatus(fmt.Sprintf("Stopped: %s recorded", FormatMinutes(msg.entry.DurationMinutes)))
		}
		return a, a.dashboard.loadData()

	case taskCreatedMsg:
		a.setStatus(fmt.Sprintf("Created task #%d", msg.task.ID))
		return a, a.dashboard.loadData()

	case exportDoneMsg:
		a.setStatus(fmt.Sprintf("Exported %d entries to %s", msg.rows, msg.path))
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusIsError = false
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewPomodoro:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewDashboard:
		return a.dashboard.picking
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewPomodoro:
		content = a.pomodoro.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		tabs = append(tabs, tabStyle(viewState(i) == a.activeView).Render(name))
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := brandStyle.Render("corhyn")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := dimStyle
		if a.statusIsError {
			style = alertStyle
		}
		status = style.Render(" " + strings.TrimSuffix(a.status, " \a"))
	}

	timerInfo := ""
	if a.dashboard.isRunning() {
		timerInfo = successStyle.Render(" ● " + FormatDuration(a.dashboard.elapsed()))
	}
	if ph, ok := a.pomodoro.current(); ok {
		timerInfo += phaseStyle(ph.Kind).Render(fmt.Sprintf(" ◉ %s %s", ph.Kind, formatPomodoroTime(a.pomodoro.remaining)))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, dimStyle.Render("  enter: export  esc: cancel"))

	return livePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportPath names the export file for format, dated by the current day.
func (a App) exportPath(format string) string {
	name := fmt.Sprintf("corhyn-export-%s.%s", a.svc.now().Format("2006-01-02"), format)
	return filepath.Join(a.svc.ExportDir, name)
}

func (a App) doExport(format string) tea.Cmd {
	stats, path := a.svc.Stats, a.exportPath(format)
	return func() tea.Msg {
		sink, err := export.ForFormat(format)
		if err != nil {
			return statusMsg{text: "Export error: " + err.Error(), isError: true}
		}
		n, err := stats.ExportEntries(path, sink, nil)
		if err != nil {
			return statusMsg{text: "Export error: " + err.Error(), isError: true}
		}
		return exportDoneMsg{path: path, rows: n}
	}
}
