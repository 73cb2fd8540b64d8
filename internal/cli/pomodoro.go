package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/corhyn/internal/tracker"
	"github.com/sadopc/corhyn/internal/tui"
)

// pollInterval bounds how long a plain-mode break sleeps between clock reads.
var pollInterval = time.Second

func (a *app) pomodoroCmd() *cobra.Command {
	var (
		work, shortBreak, longBreak, rounds int
		plain                               bool
	)
	cmd := &cobra.Command{
		Use:   "pomodoro [task-id]",
		Short: "Run a pomodoro cycle, recording each completed work phase",
		Long: `Run rounds of focused work separated by short breaks, ending with a long
break. Each completed work phase is recorded as a pomodoro entry, attributed
to the task when one is given. Cancelling records nothing for the phase in
progress.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var taskID *int64
			if len(args) == 1 {
				id, err := parseID(args[0], "task")
				if err != nil {
					return err
				}
				taskID = &id
			}

			plan := a.plan()
			flags := cmd.Flags()
			if flags.Changed("minutes") {
				plan.Work = time.Duration(work) * time.Minute
			}
			if flags.Changed("break") {
				plan.ShortBreak = time.Duration(shortBreak) * time.Minute
			}
			if flags.Changed("long-break") {
				plan.LongBreak = time.Duration(longBreak) * time.Minute
			}
			if flags.Changed("rounds") {
				plan.Rounds = rounds
			}
			if err := plan.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return a.runPlainPomodoro(ctx, out, plan, taskID)
			}

			svc := a.services()
			svc.Plan = plan
			res, err := tui.RunPomodoro(svc, taskID,
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(out), tea.WithAltScreen())
			if err != nil {
				return err
			}
			if res.Cancelled {
				fmt.Fprintf(out, "Pomodoro cancelled after %d of %d rounds\n", res.Completed, plan.Rounds)
				return nil
			}
			fmt.Fprintf(out, "Pomodoro cycle complete: %d rounds\n", res.Completed)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&work, "minutes", "m", 25, "Work phase length in minutes")
	cmd.Flags().IntVar(&shortBreak, "break", 5, "Short break length in minutes")
	cmd.Flags().IntVar(&longBreak, "long-break", 15, "Long break length in minutes")
	cmd.Flags().IntVar(&rounds, "rounds", 4, "Number of work rounds")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print phase changes instead of the full-screen timer")
	return cmd
}

// runPlainPomodoro walks plan, printing one line per phase. When ctx ends
// the running work phase is cancelled and nothing more is recorded.
func (a *app) runPlainPomodoro(ctx context.Context, out io.Writer, plan tracker.PomodoroPlan, taskID *int64) error {
	completed := 0
	for _, ph := range plan.Phases() {
		fmt.Fprintf(out, "[%d/%d] %s %s\n", ph.Round, plan.Rounds, ph.Kind, tui.FormatMinutes(tracker.RoundMinutes(ph.Duration)))

		if ph.Kind != tracker.PhaseWork {
			if err := a.sleepUntil(ctx, a.clock.Now().Add(ph.Duration)); err != nil {
				fmt.Fprintf(out, "Pomodoro cancelled after %d of %d rounds\n", completed, plan.Rounds)
				return nil
			}
			continue
		}

		if _, err := a.pomodoro.Begin(taskID, plan.WorkMinutes()); err != nil {
			return err
		}
		entry, err := a.pomodoro.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				if cerr := a.pomodoro.Cancel(); cerr != nil && !errors.Is(cerr, tracker.ErrPomodoroNotRunning) {
					return cerr
				}
				fmt.Fprintf(out, "Pomodoro cancelled after %d of %d rounds\n", completed, plan.Rounds)
				return nil
			}
			return err
		}
		completed++
		fmt.Fprintf(out, "Recorded %s\a\n", tui.FormatMinutes(entry.DurationMinutes))
	}
	fmt.Fprintf(out, "Pomodoro cycle complete: %d rounds\n", completed)
	return nil
}

func (a *app) sleepUntil(ctx context.Context, deadline time.Time) error {
	for {
		rem := deadline.Sub(a.clock.Now())
		if rem <= 0 {
			return nil
		}
		timer := time.NewTimer(min(rem, pollInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
