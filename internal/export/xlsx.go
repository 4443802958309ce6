package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/taskr/internal/core"
)

const (
	tasksSheet   = "Tasks"
	summarySheet = "Summary"
)

// ToXLSX writes a workbook with a Tasks sheet and a Summary sheet.
func ToXLSX(tasks []core.Task, stats core.Stats, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tasksSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#6C63FF"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(tasksSheet, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(tasksSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, t := range tasks {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{t.ID, t.Title, t.Description, status(t.Done), formatTime(t.CreatedAt), formatTime(t.UpdatedAt)}
		if err := f.SetSheetRow(tasksSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	widths := []float64{8, 40, 50, 10, 26, 26}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(tasksSheet, col, col, w); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Total", stats.Total},
		{"Completed", stats.Completed},
		{"Pending", stats.Pending},
		{"Completion rate (%)", stats.CompletionRate},
	}
	for i, r := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	return f.SaveAs(path)
}
