package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
)

// Palette, named after what each color marks on screen.
var (
	colorBrand     = lipgloss.Color("#8B7CF6")
	colorText      = lipgloss.Color("#D4D8F0")
	colorDim       = lipgloss.Color("#6B6F80")
	colorFrame     = lipgloss.Color("#3B4058")
	colorValue     = lipgloss.Color("#82AAFF")
	colorTracking  = lipgloss.Color("#4CC38A")
	colorFocus     = lipgloss.Color("#F07178")
	colorBreak     = lipgloss.Color("#3FC1C9")
	colorLongBreak = lipgloss.Color("#82AAFF")
	colorDue       = lipgloss.Color("#F5A623")
	colorAlert     = lipgloss.Color("#E5484D")
)

var priorityColors = map[string]lipgloss.Color{
	store.PriorityHigh:   colorAlert,
	store.PriorityMedium: colorDue,
	store.PriorityLow:    colorBreak,
	tracker.PriorityNone: colorDim,
}

var phaseColors = map[tracker.PhaseKind]lipgloss.Color{
	tracker.PhaseWork:       colorFocus,
	tracker.PhaseShortBreak: colorBreak,
	tracker.PhaseLongBreak:  colorLongBreak,
}

var entryMarks = map[store.EntryKind]struct {
	glyph string
	color lipgloss.Color
}{
	store.KindTracked:  {"✓", colorTracking},
	store.KindPomodoro: {"◉", colorFocus},
	store.KindManual:   {"✎", colorValue},
}

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	valueStyle = lipgloss.NewStyle().Foreground(colorValue)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	alertStyle = lipgloss.NewStyle().Foreground(colorAlert)

	// successStyle marks running timers and finished rounds.
	successStyle = lipgloss.NewStyle().Foreground(colorTracking)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame).
			Padding(1, 2)

	// livePanelStyle frames whatever is currently counting.
	livePanelStyle = panelStyle.BorderForeground(colorBrand)

	clockStyle         = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Align(lipgloss.Center)
	trackingClockStyle = clockStyle.Foreground(colorTracking)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = dimStyle.Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)

	chartBarStyle = lipgloss.NewStyle().Foreground(colorBrand)
)

func tabStyle(active bool) lipgloss.Style {
	if active {
		return brandStyle.
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)
	}
	return dimStyle.Padding(0, 2)
}

func priorityStyle(p string) lipgloss.Style {
	if p == "" {
		p = tracker.PriorityNone
	}
	c, ok := priorityColors[p]
	if !ok {
		c = colorDim
	}
	return lipgloss.NewStyle().Foreground(c)
}

func phaseStyle(k tracker.PhaseKind) lipgloss.Style {
	c, ok := phaseColors[k]
	if !ok {
		c = colorTracking
	}
	return lipgloss.NewStyle().Foreground(c)
}

// kindMark is the one-glyph badge shown next to an entry.
func kindMark(k store.EntryKind) string {
	m, ok := entryMarks[k]
	if !ok {
		m = entryMarks[store.KindTracked]
	}
	return lipgloss.NewStyle().Foreground(m.color).Render(m.glyph)
}
