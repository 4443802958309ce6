// Package export writes snapshots of the task collection to disk.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/taskr/internal/core"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
}

// DefaultPath returns dir/taskr-export-<date>.<ext>.
func DefaultPath(dir string, f Format, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("taskr-export-%s.%s", now.Format("2006-01-02"), f))
}

// Write dispatches to the writer for f.
func Write(f Format, tasks []core.Task, stats core.Stats, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(tasks, path)
	case FormatJSON:
		return ToJSON(tasks, stats, path)
	case FormatXLSX:
		return ToXLSX(tasks, stats, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
