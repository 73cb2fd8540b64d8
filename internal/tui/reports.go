package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/corhyn/internal/tracker"
)

type reportsModel struct {
	svc    Services
	width  int
	height int

	kind   tracker.PeriodKind
	bucket tracker.Bucket
	report *tracker.Report
}

func newReportsModel(svc Services) reportsModel {
	r := reportsModel{svc: svc}
	r.setKind(tracker.PeriodWeek)
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

// setKind switches period kind and jumps back to the current period.
func (r *reportsModel) setKind(kind tracker.PeriodKind) {
	b, err := tracker.ResolveBucket(kind, r.svc.now())
	if err != nil {
		return
	}
	r.kind = kind
	r.bucket = b
}

func nextKind(k tracker.PeriodKind) tracker.PeriodKind {
	for i, pk := range tracker.PeriodKinds {
		if pk == k {
			return tracker.PeriodKinds[(i+1)%len(tracker.PeriodKinds)]
		}
	}
	return tracker.PeriodWeek
}

type reportsDataMsg struct {
	report *tracker.Report
	err    error
}

func (r reportsModel) refresh() tea.Cmd {
	stats, b := r.svc.Stats, r.bucket
	return func() tea.Msg {
		report, err := stats.ComputeBucket(b, true)
		return reportsDataMsg{report: report, err: err}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, errorCmd(msg.err)
		}
		// Drop results for a period we already navigated away from.
		if msg.report.Bucket.Start.Equal(r.bucket.Start) && msg.report.Bucket.Kind == r.bucket.Kind {
			r.report = msg.report
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.bucket = r.bucket.Shift(-1)
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			next := r.bucket.Shift(1)
			if next.Start.After(r.svc.now()) {
				return r, nil
			}
			r.bucket = next
			return r, r.refresh()
		case key.Matches(msg, keys.Period):
			r.setKind(nextKind(r.kind))
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for _, k := range tracker.PeriodKinds {
		tabs = append(tabs, tabStyle(k == r.kind).Render(string(k)))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Reports"), "  "}, tabs...)...,
	)

	body := dimStyle.Render("Loading...")
	if r.report != nil {
		body = RenderReport(r.report, w-6)
	}

	nav := dimStyle.Render("  ←/→: previous/next period  p: switch period")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}
