package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/taskr/internal/core"
)

var header = []string{"ID", "Title", "Description", "Status", "Created", "Updated"}

func ToCSV(tasks []core.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			status(t.Done),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func status(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

// formatTime renders t as local RFC3339, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
