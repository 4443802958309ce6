package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/taskr/internal/core"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Padding(0, 1)
)

// filterTasks keeps tasks whose done flag equals *done; nil keeps all.
func filterTasks(tasks []core.Task, done *bool) []core.Task {
	if done == nil {
		return tasks
	}
	out := make([]core.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Done == *done {
			out = append(out, t)
		}
	}
	return out
}

func renderTasks(tasks []core.Task) string {
	if len(tasks) == 0 {
		return "No tasks."
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "", "TITLE", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(tasks) && tasks[row].Done {
				return doneStyle
			}
			return cellStyle
		})

	for _, task := range tasks {
		mark := "[ ]"
		if task.Done {
			mark = "[x]"
		}
		created := ""
		if !task.CreatedAt.IsZero() {
			created = humanize.Time(task.CreatedAt)
		}
		t.Row(strconv.FormatInt(task.ID, 10), mark, oneLine(task.Title), created)
	}
	return t.String()
}

func renderStats(s core.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total:      %d\n", s.Total)
	fmt.Fprintf(&b, "Completed:  %d\n", s.Completed)
	fmt.Fprintf(&b, "Pending:    %d\n", s.Pending)
	fmt.Fprintf(&b, "Completion: %d%%", s.CompletionRate)
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
