package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/corhyn/internal/tracker"
)

type document struct {
	ExportedAt string  `json:"exported_at" yaml:"exported_at"`
	Count      int     `json:"count" yaml:"count"`
	Entries    []entry `json:"entries" yaml:"entries"`
}

type entry struct {
	TaskID          *int64 `json:"task_id" yaml:"task_id"`
	TaskTitle       string `json:"task_title" yaml:"task_title"`
	StartTime       string `json:"start_time" yaml:"start_time"`
	EndTime         string `json:"end_time" yaml:"end_time"`
	DurationMinutes int64  `json:"duration_minutes" yaml:"duration_minutes"`
}

func newDocument(rows []tracker.ExportRow, now time.Time) document {
	doc := document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(rows),
		Entries:    make([]entry, 0, len(rows)),
	}
	for _, r := range rows {
		doc.Entries = append(doc.Entries, entry{
			TaskID:          r.TaskID,
			TaskTitle:       r.TaskTitle,
			StartTime:       r.StartTime.Local().Format(time.RFC3339),
			EndTime:         r.EndTime.Local().Format(time.RFC3339),
			DurationMinutes: r.DurationMinutes,
		})
	}
	return doc
}

// JSON writes an indented document with an export timestamp and count.
type JSON struct{}

func (JSON) WriteRows(path string, rows []tracker.ExportRow) error {
	data, err := json.MarshalIndent(newDocument(rows, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
