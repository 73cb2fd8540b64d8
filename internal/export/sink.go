package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/corhyn/internal/tracker"
)

var Formats = []string{"csv", "json", "yaml"}

// ForFormat returns the sink for a format name.
func ForFormat(format string) (tracker.RowSink, error) {
	switch strings.ToLower(format) {
	case "csv":
		return CSV{}, nil
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	}
	return nil, fmt.Errorf("%w: unsupported export format %q (want one of %s)",
		tracker.ErrValidation, format, strings.Join(Formats, ", "))
}

// FormatFromPath guesses the format from the file extension, falling back
// to def.
func FormatFromPath(path, def string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".json", ".yaml":
		return ext[1:]
	case ".yml":
		return "yaml"
	}
	return def
}
