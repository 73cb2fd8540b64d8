// Package cli wires the corhyn command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/corhyn/internal/config"
	"github.com/sadopc/corhyn/internal/logger"
	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
	"github.com/sadopc/corhyn/internal/tui"
)

// app holds the flags shared by every command and the services opened for
// the duration of one command.
type app struct {
	clock   tracker.Clock
	dbPath  string
	cfgDir  string
	verbose bool

	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	tracker  *tracker.Tracker
	pomodoro *tracker.PomodoroTimer
	stats    *tracker.Aggregator
}

// NewRootCmd builds the corhyn command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(tracker.SystemClock{})
}

func newRootCmd(clock tracker.Clock) *cobra.Command {
	a := &app{clock: clock}

	root := &cobra.Command{
		Use:   "corhyn",
		Short: "corhyn - personal task and time tracker",
		Long: `corhyn keeps a task list, tracks time against tasks, runs pomodoros and
summarizes where the time went by day, week, month or year.

Run "corhyn ui" for the interactive dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Database file (overrides database.path)")
	root.PersistentFlags().StringVar(&a.cfgDir, "config", "", "Directory containing config.yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.tagsCmd(),
		a.doneCmd(),
		a.deleteCmd(),
		a.startCmd(),
		a.stopCmd(),
		a.statusCmd(),
		a.logCmd(),
		a.entriesCmd(),
		a.statsCmd(),
		a.reportCmd(),
		a.pomodoroCmd(),
		a.exportCmd(),
		a.uiCmd(),
	)
	return root
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// run opens the services before fn and closes them after it, whatever fn
// returns.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *app) open() error {
	cfg, err := config.LoadWithPath(a.cfgDir)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	a.log = log

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	a.store = s
	log.Debug("database opened", zap.String("path", cfg.Database.Path))

	opts := []tracker.Option{
		tracker.WithTaskSource(s),
		tracker.WithJournal(s),
		tracker.WithClock(a.clock),
		tracker.WithLogger(log),
	}
	a.tracker = tracker.NewTracker(s, opts...)
	if err := a.tracker.Restore(); err != nil {
		s.Close()
		return err
	}
	a.pomodoro = tracker.NewPomodoroTimer(s, opts...)
	a.stats = tracker.NewAggregator(s, opts...)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WithError(err).Warn("close database")
		}
		a.store = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) plan() tracker.PomodoroPlan {
	p := a.cfg.Pomodoro
	return tracker.PomodoroPlan{
		Work:       p.Work(),
		ShortBreak: p.ShortBreak(),
		LongBreak:  p.LongBreak(),
		Rounds:     p.Rounds,
	}
}

func (a *app) services() tui.Services {
	return tui.Services{
		Store:            a.store,
		Tracker:          a.tracker,
		Pomodoro:         a.pomodoro,
		Stats:            a.stats,
		Plan:             a.plan(),
		Clock:            a.clock,
		Log:              a.log,
		DailyGoalMinutes: int64(a.cfg.Report.DailyGoalMinutes),
		ExportDir:        ".",
	}
}
