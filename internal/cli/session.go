package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
	"github.com/sadopc/corhyn/internal/tui"
)

func (a *app) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start tracking time on a task",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			s, err := a.tracker.Start(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tracking #%d %s since %s\n",
				id, a.taskTitle(&id), s.StartTime.Local().Format("15:04"))
			return nil
		}),
	}
}

func (a *app) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session and record it",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			entry, err := a.tracker.Stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped #%d %s: %s recorded\n",
				*entry.TaskID, a.taskTitle(entry.TaskID), tui.FormatMinutes(entry.DurationMinutes))
			return nil
		}),
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session and today's totals",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			now := a.clock.Now()

			if s := a.tracker.Current(); s != nil {
				fmt.Fprintf(out, "Tracking #%d %s for %s (since %s)\n",
					s.TaskID, a.taskTitle(&s.TaskID), tui.FormatDuration(s.Elapsed(now)), s.StartTime.Local().Format("15:04"))
			} else {
				fmt.Fprintln(out, "No active session.")
			}

			total, err := a.store.GetTodayTotal(now)
			if err != nil {
				return err
			}
			day, err := tracker.ResolveBucket(tracker.PeriodDay, now)
			if err != nil {
				return err
			}
			pomodoros, pomodoroMinutes, err := a.store.GetPomodoroStats(day.Start, day.End)
			if err != nil {
				return err
			}

			line := "Today: " + tui.FormatMinutes(total)
			if goal := int64(a.cfg.Report.DailyGoalMinutes); goal > 0 {
				line += fmt.Sprintf(" of %s goal (%.0f%%)", tui.FormatMinutes(goal), float64(total)/float64(goal)*100)
			}
			fmt.Fprintln(out, line)
			if pomodoros > 0 {
				fmt.Fprintf(out, "Pomodoros: %d (%s)\n", pomodoros, tui.FormatMinutes(pomodoroMinutes))
			}
			return nil
		}),
	}
}

func (a *app) logCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "log <task-id> <minutes>",
		Short: "Record time already spent on a task",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			minutes, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: minutes %q is not a number", tracker.ErrValidation, args[1])
			}
			entry, err := a.tracker.AddManual(id, minutes, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on #%d %s\n",
				tui.FormatMinutes(entry.DurationMinutes), id, a.taskTitle(&id))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes for the entry")
	return cmd
}

func (a *app) entriesCmd() *cobra.Command {
	var (
		period, date string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List recorded time entries, most recent first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			f := store.EntryFilter{Limit: limit}
			b, err := a.bucket(period, date)
			if err != nil {
				return err
			}
			if b != nil {
				f.From, f.To = &b.Start, &b.End
			}
			entries, err := a.store.ListEntries(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries found.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					fmt.Sprint(e.ID),
					e.StartTime.Local().Format("2006-01-02 15:04"),
					a.taskTitle(e.TaskID),
					string(e.Kind),
					tui.FormatMinutes(e.DurationMinutes),
					orDash(e.Notes),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Start", "Task", "Kind", "Duration", "Notes"}, rows))
			return nil
		}),
	}
	cmd.Flags().StringVar(&period, "period", "", "Only entries in this period: day, week, month or year")
	cmd.Flags().StringVar(&date, "date", "", "Reference date for --period (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "entry")
			if err != nil {
				return err
			}
			if err := a.store.DeleteEntry(id); err != nil {
				return notFound(err, "entry", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry #%d\n", id)
			return nil
		}),
	})
	return cmd
}
