package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/corhyn/internal/tracker"
)

var csvHeader = []string{"task_id", "task_title", "start_time", "end_time", "duration_minutes"}

// CSV writes one header line followed by one line per row.
type CSV struct{}

func (CSV) WriteRows(path string, rows []tracker.ExportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			formatTaskID(r.TaskID),
			r.TaskTitle,
			r.StartTime.Local().Format(time.RFC3339),
			r.EndTime.Local().Format(time.RFC3339),
			strconv.FormatInt(r.DurationMinutes, 10),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func formatTaskID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
