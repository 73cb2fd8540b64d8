package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s id %q", tracker.ErrValidation, what, s)
	}
	return id, nil
}

// notFound turns a missing row into a validation error naming the id.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d not found", tracker.ErrValidation, what, id)
	}
	return err
}

// refTime parses a YYYY-MM-DD date in local time, or returns now when date
// is empty.
func (a *app) refTime(date string) (time.Time, error) {
	if date == "" {
		return a.clock.Now(), nil
	}
	t, err := time.ParseInLocation(store.DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", tracker.ErrValidation, date)
	}
	return t, nil
}

// bucket resolves --period/--date. An empty period yields nil.
func (a *app) bucket(period, date string) (*tracker.Bucket, error) {
	if period == "" {
		if date != "" {
			period = string(tracker.PeriodDay)
		} else {
			return nil, nil
		}
	}
	kind, err := tracker.ParsePeriodKind(period)
	if err != nil {
		return nil, err
	}
	ref, err := a.refTime(date)
	if err != nil {
		return nil, err
	}
	b, err := tracker.ResolveBucket(kind, ref)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.PaddingRight(1)
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// taskTitle returns the title for id, or a placeholder if it is gone.
func (a *app) taskTitle(id *int64) string {
	if id == nil {
		return "(no task)"
	}
	t, err := a.store.GetTask(*id)
	if err != nil {
		return fmt.Sprintf("#%d", *id)
	}
	return t.Title
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
