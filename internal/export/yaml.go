package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/corhyn/internal/tracker"
)

// YAML writes the same document as JSON in YAML form.
type YAML struct{}

func (YAML) WriteRows(path string, rows []tracker.ExportRow) error {
	data, err := yaml.Marshal(newDocument(rows, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
