package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"

	"github.com/sadopc/corhyn/internal/tracker"
)

const chartHeight = 10

// RenderReport renders a stats report for a terminal of the given width.
// Charts and the peak hour are included only for detailed reports.
func RenderReport(r *tracker.Report, width int) string {
	w := max(40, width)

	sections := []string{
		titleStyle.Render(r.Bucket.Label()) + dimStyle.Render("  ("+string(r.Bucket.Kind)+")"),
		renderTotals(r),
	}
	if r.Detailed {
		if bars := chartBars(r); len(bars) > 0 {
			chart := barchart.New(w, chartHeight)
			chart.PushAll(bars)
			chart.Draw()
			sections = append(sections, "", chart.View())
		}
	}
	sections = append(sections, "", renderTaskTable(r, w))
	if len(r.Priorities) > 0 {
		sections = append(sections, "", renderPriorities(r))
	}
	if r.Detailed {
		sections = append(sections, "", renderPeak(r))
	}
	return strings.Join(sections, "\n")
}

func renderTotals(r *tracker.Report) string {
	stat := func(label, value string) string {
		return dimStyle.Render(label+" ") + valueStyle.Render(value)
	}
	return strings.Join([]string{
		stat("Total", FormatMinutes(r.TotalMinutes)),
		stat("Sessions", fmt.Sprint(r.Sessions)),
		stat("Tasks worked", fmt.Sprint(r.ActiveTasks)),
		stat("Completed", fmt.Sprint(r.TasksCompleted)),
		stat("Pomodoros", fmt.Sprint(r.Pomodoros)),
	}, "   ")
}

// chartBars lays the report out as bars in hours: by hour for a day, by
// weekday for a week, by date for a month and by month for a year. It
// returns nil when nothing was recorded.
func chartBars(r *tracker.Report) []barchart.BarData {
	if r.TotalMinutes == 0 {
		return nil
	}
	bar := func(label string, minutes int64) barchart.BarData {
		return barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  label,
				Value: float64(minutes) / 60,
				Style: chartBarStyle,
			}},
		}
	}

	var bars []barchart.BarData
	switch r.Bucket.Kind {
	case tracker.PeriodDay:
		first, last := -1, -1
		for h, m := range r.Hours {
			if m > 0 {
				if first < 0 {
					first = h
				}
				last = h
			}
		}
		if first < 0 {
			return nil
		}
		for h := first; h <= last; h++ {
			bars = append(bars, bar(fmt.Sprintf("%02d", h), r.Hours[h]))
		}
	case tracker.PeriodWeek:
		for _, d := range r.PerDay {
			bars = append(bars, bar(d.Date.Format("Mon"), d.Minutes))
		}
	case tracker.PeriodMonth:
		for _, d := range r.PerDay {
			bars = append(bars, bar(d.Date.Format("02"), d.Minutes))
		}
	case tracker.PeriodYear:
		var months [12]int64
		for _, d := range r.PerDay {
			months[d.Date.Month()-1] += d.Minutes
		}
		for i, m := range months {
			bars = append(bars, bar(time.Month(i+1).String()[:3], m))
		}
	}
	return bars
}

func renderTaskTable(r *tracker.Report, w int) string {
	if len(r.PerTask) == 0 {
		return dimStyle.Render("  No data for this period")
	}

	titleWidth := min(32, max(12, w-40))
	rows := []string{
		dimStyle.Render(fmt.Sprintf("  %-*s %-8s %9s %8s %6s", titleWidth, "Task", "Priority", "Time", "Sessions", "Share")),
		dimStyle.Render("  " + strings.Repeat("─", titleWidth+36)),
	}
	for _, tm := range r.PerTask {
		priority := tm.Priority
		if priority == "" {
			priority = "-"
		}
		share := 0.0
		if r.TotalMinutes > 0 {
			share = float64(tm.Minutes) / float64(r.TotalMinutes) * 100
		}
		rows = append(rows, fmt.Sprintf("  %-*s %s %9s %8d %5.0f%%",
			titleWidth, truncate(tm.Title, titleWidth),
			priorityStyle(tm.Priority).Render(fmt.Sprintf("%-8s", priority)),
			FormatMinutes(tm.Minutes), tm.Sessions, share))
	}
	return strings.Join(rows, "\n")
}

func renderPriorities(r *tracker.Report) string {
	rows := []string{titleStyle.Render("Completion by priority")}
	for _, p := range r.Priorities {
		rows = append(rows, fmt.Sprintf("  %s %3d/%-3d %s",
			priorityStyle(p.Priority).Render(fmt.Sprintf("%-7s", p.Priority)),
			p.Completed, p.Completed+p.Pending,
			dimStyle.Render(fmt.Sprintf("%.0f%%", p.Rate*100))))
	}
	return strings.Join(rows, "\n")
}

func renderPeak(r *tracker.Report) string {
	if r.MostProductiveHour < 0 {
		return dimStyle.Render("Most productive hour: n/a")
	}
	h := r.MostProductiveHour
	return dimStyle.Render("Most productive hour: ") +
		valueStyle.Render(fmt.Sprintf("%02d:00-%02d:00", h, (h+1)%24)) +
		dimStyle.Render(fmt.Sprintf(" (%s)", FormatMinutes(r.Hours[h])))
}
