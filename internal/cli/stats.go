package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/corhyn/internal/tracker"
	"github.com/sadopc/corhyn/internal/tui"
)

func (a *app) computeReport(period, date string, detailed bool) (*tracker.Report, error) {
	kind, err := tracker.ParsePeriodKind(period)
	if err != nil {
		return nil, err
	}
	ref, err := a.refTime(date)
	if err != nil {
		return nil, err
	}
	return a.stats.ComputeStats(kind, ref, detailed)
}

func (a *app) statsCmd() *cobra.Command {
	var (
		period, date string
		detailed     bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize tracked time for a period",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			r, err := a.computeReport(period, date, detailed)
			if err != nil {
				return err
			}
			writeStats(cmd.OutOrStdout(), r)
			return nil
		}),
	}
	cmd.Flags().StringVar(&period, "period", string(tracker.PeriodWeek), "Period: day, week, month or year")
	cmd.Flags().StringVar(&date, "date", "", "Any date inside the period (YYYY-MM-DD), default today")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include per-day totals and the most productive hour")
	return cmd
}

// writeStats prints a plain-text report suitable for piping.
func writeStats(w io.Writer, r *tracker.Report) {
	fmt.Fprintf(w, "%s (%s)\n", r.Bucket.Label(), r.Bucket.Kind)
	fmt.Fprintf(w, "Total:        %s\n", tui.FormatMinutes(r.TotalMinutes))
	fmt.Fprintf(w, "Sessions:     %d\n", r.Sessions)
	fmt.Fprintf(w, "Tasks worked: %d\n", r.ActiveTasks)
	fmt.Fprintf(w, "Completed:    %d\n", r.TasksCompleted)
	fmt.Fprintf(w, "Pomodoros:    %d\n", r.Pomodoros)

	if len(r.PerTask) > 0 {
		fmt.Fprintln(w, "\nBy task:")
		for _, tm := range r.PerTask {
			fmt.Fprintf(w, "  %-32s %9s  %d sessions\n", tm.Title, tui.FormatMinutes(tm.Minutes), tm.Sessions)
		}
	}

	if len(r.Priorities) > 0 {
		fmt.Fprintln(w, "\nCompletion by priority:")
		for _, p := range r.Priorities {
			fmt.Fprintf(w, "  %-7s %d/%d (%.0f%%)\n", p.Priority, p.Completed, p.Completed+p.Pending, p.Rate*100)
		}
	}

	if !r.Detailed {
		return
	}
	fmt.Fprintln(w, "\nBy day:")
	for _, d := range r.PerDay {
		fmt.Fprintf(w, "  %s  %s\n", d.Date.Format("Mon 2006-01-02"), tui.FormatMinutes(d.Minutes))
	}
	if r.MostProductiveHour < 0 {
		fmt.Fprintln(w, "\nMost productive hour: n/a")
		return
	}
	h := r.MostProductiveHour
	fmt.Fprintf(w, "\nMost productive hour: %02d:00-%02d:00 (%s)\n", h, (h+1)%24, tui.FormatMinutes(r.Hours[h]))
}

func (a *app) reportCmd() *cobra.Command {
	var (
		period, date string
		width        int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a detailed report with charts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			r, err := a.computeReport(period, date, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderReport(r, width))
			return nil
		}),
	}
	cmd.Flags().StringVar(&period, "period", string(tracker.PeriodWeek), "Period: day, week, month or year")
	cmd.Flags().StringVar(&date, "date", "", "Any date inside the period (YYYY-MM-DD), default today")
	cmd.Flags().IntVar(&width, "width", 80, "Output width in columns")
	return cmd
}
