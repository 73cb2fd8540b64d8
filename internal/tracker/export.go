package tracker

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/corhyn/internal/store"
)

// ExportRow is one time entry flattened for export.
type ExportRow struct {
	TaskID          *int64
	TaskTitle       string
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int64
}

// RowSink writes rows to the file at path.
type RowSink interface {
	WriteRows(path string, rows []ExportRow) error
}

// ExportRows returns every entry, or only those inside filter when it is
// non-nil, oldest first.
func (a *Aggregator) ExportRows(filter *Bucket) ([]ExportRow, error) {
	var (
		list []store.TimeEntry
		err  error
	)
	if filter != nil {
		list, err = a.entries.QueryWithin(filter.Start, filter.End)
	} else {
		list, err = a.entries.AllEntries()
	}
	if err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}

	labels := newLabelCache(a.tasks)
	rows := make([]ExportRow, 0, len(list))
	for _, e := range list {
		title, _, err := labels.lookup(e.TaskID)
		if err != nil {
			return nil, fmt.Errorf("export rows: %w", err)
		}
		rows = append(rows, ExportRow{
			TaskID:          e.TaskID,
			TaskTitle:       title,
			StartTime:       e.StartTime,
			EndTime:         e.EndTime,
			DurationMinutes: e.DurationMinutes,
		})
	}
	return rows, nil
}

// ExportEntries writes the rows selected by filter through sink and returns
// how many were written. A partially written file is left in place.
func (a *Aggregator) ExportEntries(path string, sink RowSink, filter *Bucket) (int, error) {
	rows, err := a.ExportRows(filter)
	if err != nil {
		return 0, err
	}
	if err := sink.WriteRows(path, rows); err != nil {
		return 0, fmt.Errorf("%w: export to %s: %w", ErrIO, path, err)
	}
	a.log.Info("entries exported", zap.String("path", path), zap.Int("rows", len(rows)))
	return len(rows), nil
}
