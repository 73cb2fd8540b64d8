package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/corhyn/internal/store"
)

var priorityOptions = []huh.Option[string]{
	huh.NewOption("none", ""),
	huh.NewOption("low", store.PriorityLow),
	huh.NewOption("medium", store.PriorityMedium),
	huh.NewOption("high", store.PriorityHigh),
}

// TaskDraft holds the new-task form fields. It lives behind a pointer so the
// huh bindings survive value copies of the model.
type TaskDraft struct {
	Title       string
	Description string
	Priority    string
	Deadline    string
	Tags        string
}

func (d TaskDraft) NewTask() store.NewTask {
	return store.NewTask{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Priority:    d.Priority,
		Deadline:    strings.TrimSpace(d.Deadline),
		Tags:        d.Tags,
	}
}

// NewTaskForm builds the form used to create a task, bound to draft.
func NewTaskForm(draft *TaskDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&draft.Title).Validate(validateTitle),
			huh.NewInput().Title("Description").Value(&draft.Description),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions...).Value(&draft.Priority),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Value(&draft.Deadline).Validate(validateDeadline),
			huh.NewInput().Title("Tags (comma-separated)").Value(&draft.Tags),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validateDeadline(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(store.DateLayout, s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

type tasksModel struct {
	svc    Services
	width  int
	height int

	tasks   []store.Task
	cursor  int
	showAll bool

	formActive bool
	form       *huh.Form
	draft      *TaskDraft
}

func newTasksModel(svc Services) tasksModel {
	return tasksModel{svc: svc, draft: &TaskDraft{}}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
	err   error
}

func (m tasksModel) refresh() tea.Cmd {
	s, showAll := m.svc.Store, m.showAll
	return func() tea.Msg {
		f := store.TaskFilter{Status: store.StatusPending}
		if showAll {
			f.Status = ""
		}
		tasks, err := s.ListTasks(f)
		return tasksDataMsg{tasks: tasks, err: err}
	}
}

func (m tasksModel) selected() (store.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return store.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		if msg.err != nil {
			return m, errorCmd(msg.err)
		}
		m.tasks = msg.tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showNewTaskForm()
	case key.Matches(msg, keys.ShowAll):
		m.showAll = !m.showAll
		return m, m.refresh()
	case key.Matches(msg, keys.Complete):
		t, ok := m.selected()
		if !ok || t.Status == store.StatusCompleted {
			return m, nil
		}
		if err := m.svc.Store.CompleteTask(t.ID, m.svc.now()); err != nil {
			return m, errorCmd(err)
		}
		return m, tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Completed #%d %s", t.ID, t.Title)))
	case key.Matches(msg, keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if cur := m.svc.Tracker.Current(); cur != nil && cur.TaskID == t.ID {
			return m, func() tea.Msg {
				return statusMsg{text: "Stop tracking before deleting this task", isError: true}
			}
		}
		if err := m.svc.Store.DeleteTask(t.ID); err != nil {
			return m, errorCmd(err)
		}
		return m, tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Deleted #%d", t.ID)))
	case key.Matches(msg, keys.Start):
		t, ok := m.selected()
		if !ok || t.Status == store.StatusCompleted {
			return m, nil
		}
		session, err := m.svc.Tracker.Start(t.ID)
		if err != nil {
			return m, errorCmd(err)
		}
		return m, func() tea.Msg { return sessionStartedMsg{session: session, title: t.Title} }
	}
	return m, nil
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.draft = TaskDraft{}
	m.form = NewTaskForm(m.draft)
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.formActive = false
		m.form = nil
		task, err := m.svc.Store.CreateTask(m.draft.NewTask())
		if err != nil {
			return m, errorCmd(err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return taskCreatedMsg{task: task} })
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := "Pending Tasks"
	if m.showAll {
		title = "All Tasks"
	}
	rows := []string{titleStyle.Render(title), ""}

	if len(m.tasks) == 0 {
		rows = append(rows, dimStyle.Render("No tasks. Press n to add one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, dimStyle.Render(fmt.Sprintf("    %-5s %-32s %-8s %-11s %s", "ID", "Title", "Priority", "Deadline", "Tags")))
	active := m.svc.Tracker.Current()
	for i, t := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "○"
		switch {
		case active != nil && active.TaskID == t.ID:
			mark = successStyle.Render("●")
		case t.Status == store.StatusCompleted:
			mark = dimStyle.Render("✓")
		}
		priority := t.Priority
		if priority == "" {
			priority = "-"
		}
		line := fmt.Sprintf("%-5d %-32s ", t.ID, truncate(t.Title, 32))
		rows = append(rows, style.Render(cursor)+mark+" "+style.Render(line)+
			priorityStyle(t.Priority).Render(fmt.Sprintf("%-8s", priority))+" "+
			fmt.Sprintf("%-11s ", t.Deadline)+dimStyle.Render(t.Tags))
	}

	rows = append(rows, "")
	rows = append(rows, dimStyle.Render("  n: new  c: complete  d: delete  s: track  a: toggle completed"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
