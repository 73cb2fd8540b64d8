package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/corhyn/internal/tracker"
)

type pomodoroStage int

const (
	pomodoroIdle pomodoroStage = iota
	pomodoroActive
	pomodoroDone
)

// pomodoroModel walks the phases of a plan. Work phases run through the
// shared PomodoroTimer so that only they are recorded; breaks are timed here.
type pomodoroModel struct {
	svc    Services
	width  int
	height int

	plan      tracker.PomodoroPlan
	phases    []tracker.Phase
	index     int
	stage     pomodoroStage
	taskID    *int64
	completed int

	phaseEnd  time.Time
	remaining time.Duration

	bar progress.Model
	err error // why the cycle stopped early, if it failed
}

func newPomodoroModel(svc Services) pomodoroModel {
	plan := svc.Plan
	if plan.Validate() != nil {
		plan = tracker.DefaultPlan()
	}
	return pomodoroModel{
		svc:  svc,
		plan: plan,
		bar:  progress.New(progress.WithDefaultGradient()),
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.bar.Width = max(10, min(60, w-16))
}

func (p pomodoroModel) current() (tracker.Phase, bool) {
	if p.stage != pomodoroActive || p.index >= len(p.phases) {
		return tracker.Phase{}, false
	}
	return p.phases[p.index], true
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return p.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if p.stage != pomodoroActive {
				return p.begin(p.taskID)
			}
		case key.Matches(msg, keys.Stop):
			if p.stage == pomodoroActive {
				return p.cancel()
			}
		case key.Matches(msg, keys.Skip):
			if ph, ok := p.current(); ok && ph.Kind != tracker.PhaseWork {
				return p.advance()
			}
		}
	}
	return p, nil
}

// begin starts a fresh cycle attributed to taskID.
func (p pomodoroModel) begin(taskID *int64) (pomodoroModel, tea.Cmd) {
	p.phases = p.plan.Phases()
	p.index = 0
	p.completed = 0
	p.taskID = taskID
	p.stage = pomodoroActive
	p.err = nil
	return p.enterPhase()
}

func (p pomodoroModel) enterPhase() (pomodoroModel, tea.Cmd) {
	ph := p.phases[p.index]
	now := p.svc.now()
	p.phaseEnd = now.Add(ph.Duration)
	p.remaining = ph.Duration
	if ph.Kind == tracker.PhaseWork {
		s, err := p.svc.Pomodoro.Begin(p.taskID, p.plan.WorkMinutes())
		if err != nil {
			p.stage = pomodoroIdle
			p.err = err
			return p, errorCmd(err)
		}
		p.phaseEnd = s.Deadline()
		p.remaining = s.Planned()
	}
	return p, nil
}

func (p pomodoroModel) tick() (pomodoroModel, tea.Cmd) {
	ph, ok := p.current()
	if !ok {
		return p, nil
	}
	if ph.Kind == tracker.PhaseWork {
		rem, err := p.svc.Pomodoro.Remaining()
		if err != nil {
			// Cancelled from elsewhere.
			p.stage = pomodoroIdle
			return p, nil
		}
		p.remaining = rem
		if rem > 0 {
			return p, nil
		}
		if _, err := p.svc.Pomodoro.Complete(); err != nil {
			p.stage = pomodoroIdle
			if errors.Is(err, tracker.ErrPomodoroNotRunning) {
				return p, nil
			}
			p.err = err
			return p, errorCmd(err)
		}
		p.completed++
		return p.advance()
	}

	p.remaining = p.phaseEnd.Sub(p.svc.now())
	if p.remaining > 0 {
		return p, nil
	}
	return p.advance()
}

func (p pomodoroModel) advance() (pomodoroModel, tea.Cmd) {
	p.index++
	if p.index >= len(p.phases) {
		p.stage = pomodoroDone
		p.remaining = 0
		return p, statusCmd(fmt.Sprintf("Pomodoro cycle complete: %d rounds \a", p.completed))
	}
	p, cmd := p.enterPhase()
	if cmd != nil {
		return p, cmd
	}
	if p.phases[p.index].Kind == tracker.PhaseWork {
		return p, statusCmd("Back to work! \a")
	}
	return p, statusCmd("Break time! \a")
}

func (p pomodoroModel) cancel() (pomodoroModel, tea.Cmd) {
	if ph, ok := p.current(); ok && ph.Kind == tracker.PhaseWork {
		if err := p.svc.Pomodoro.Cancel(); err != nil && !errors.Is(err, tracker.ErrPomodoroNotRunning) {
			return p, errorCmd(err)
		}
	}
	p.stage = pomodoroIdle
	p.remaining = 0
	return p, statusCmd("Pomodoro cancelled")
}

func (p pomodoroModel) percent() float64 {
	ph, ok := p.current()
	if !ok || ph.Duration <= 0 {
		return 0
	}
	done := 1 - float64(p.remaining)/float64(ph.Duration)
	return min(1, max(0, done))
}

func (p pomodoroModel) view() string {
	w := p.width - 4

	var timeDisplay, phaseLabel, indicator string
	switch p.stage {
	case pomodoroIdle:
		timeDisplay = clockStyle.Width(w - 6).Render(formatPomodoroTime(p.plan.Work))
		phaseLabel = dimStyle.Render("Ready to start")
		indicator = dimStyle.Render(fmt.Sprintf("%d rounds of %s", p.plan.Rounds, FormatMinutes(p.plan.WorkMinutes())))
	case pomodoroDone:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		phaseLabel = successStyle.Bold(true).Render("CYCLE COMPLETE")
		indicator = p.renderRounds()
	case pomodoroActive:
		ph := p.phases[p.index]
		style := phaseStyle(ph.Kind)
		timeDisplay = style.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = style.Bold(true).Render(ph.Kind.String())
		indicator = lipgloss.JoinVertical(lipgloss.Center, p.bar.ViewAs(p.percent()), "", p.renderRounds())
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Pomodoro Timer"),
		"",
		timeDisplay,
		phaseLabel,
		"",
		indicator,
	)

	var controls string
	switch p.stage {
	case pomodoroIdle, pomodoroDone:
		controls = dimStyle.Render("s: start")
	case pomodoroActive:
		if ph := p.phases[p.index]; ph.Kind == tracker.PhaseWork {
			controls = dimStyle.Render("x: cancel")
		} else {
			controls = dimStyle.Render("space: skip break  x: cancel")
		}
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (p pomodoroModel) renderRounds() string {
	var parts []string
	for i := 0; i < p.plan.Rounds; i++ {
		switch {
		case i < p.completed:
			parts = append(parts, successStyle.Render("●"))
		case i == p.completed && p.stage == pomodoroActive && p.phases[p.index].Kind == tracker.PhaseWork:
			parts = append(parts, phaseStyle(tracker.PhaseWork).Render("◐"))
		default:
			parts = append(parts, dimStyle.Render("○"))
		}
	}
	counter := dimStyle.Render(fmt.Sprintf("  %d/%d", p.completed, p.plan.Rounds))
	return strings.Join(parts, " ") + counter
}

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// PomodoroResult summarizes a countdown run from the command line.
type PomodoroResult struct {
	Completed int
	Cancelled bool
}

// countdownModel runs a single plan full screen and quits when it ends.
type countdownModel struct {
	pomodoro pomodoroModel
	status   string
	result   PomodoroResult
	err      error
}

func (c countdownModel) Init() tea.Cmd {
	return tickCmd()
}

func (c countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.pomodoro.setSize(msg.Width, msg.Height)
		return c, nil
	case statusMsg:
		c.status = msg.text
		return c, nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) || key.Matches(msg, keys.Stop) {
			c.pomodoro, _ = c.pomodoro.cancel()
			c.result.Completed = c.pomodoro.completed
			c.result.Cancelled = true
			return c, tea.Quit
		}
		var cmd tea.Cmd
		c.pomodoro, cmd = c.pomodoro.update(msg)
		return c, cmd
	case tickMsg:
		var cmd tea.Cmd
		c.pomodoro, cmd = c.pomodoro.update(msg)
		c.result.Completed = c.pomodoro.completed
		if c.pomodoro.stage != pomodoroActive {
			c.err = c.pomodoro.err
			c.result.Cancelled = c.pomodoro.stage == pomodoroIdle && c.err == nil
			return c, tea.Sequence(cmd, tea.Quit)
		}
		return c, tea.Batch(cmd, tickCmd())
	}
	return c, nil
}

func (c countdownModel) View() string {
	if c.pomodoro.width == 0 {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, c.pomodoro.view(), dimStyle.Render(" "+c.status))
}

// RunPomodoro runs one pomodoro plan in the terminal, attributing work
// phases to taskID when it is non-nil. A work phase that cannot be recorded
// ends the run with that error.
func RunPomodoro(svc Services, taskID *int64, opts ...tea.ProgramOption) (PomodoroResult, error) {
	m := newPomodoroModel(svc)
	m, _ = m.begin(taskID)
	if m.stage != pomodoroActive {
		return PomodoroResult{}, m.err
	}

	final, err := tea.NewProgram(countdownModel{pomodoro: m}, opts...).Run()
	if err != nil {
		return PomodoroResult{}, err
	}
	c := final.(countdownModel)
	return c.result, c.err
}
