package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskr/internal/core"
)

type statsModel struct {
	width  int
	height int

	stats core.Stats
	chart barchart.Model
}

func newStatsModel() statsModel {
	return statsModel{chart: barchart.New(40, 10)}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

func (s *statsModel) setStats(st core.Stats) {
	s.stats = st
	s.buildChart()
}

func (s *statsModel) buildChart() {
	chartWidth := min(max(s.width-8, 20), 60)
	chartHeight := 10
	if s.height > 30 {
		chartHeight = 14
	}

	s.chart = barchart.New(chartWidth, chartHeight)
	s.chart.PushAll([]barchart.BarData{
		{
			Label: "Completed",
			Values: []barchart.BarValue{{
				Name:  "Completed",
				Value: float64(s.stats.Completed),
				Style: lipgloss.NewStyle().Foreground(colorSuccess),
			}},
		},
		{
			Label: "Pending",
			Values: []barchart.BarValue{{
				Name:  "Pending",
				Value: float64(s.stats.Pending),
				Style: lipgloss.NewStyle().Foreground(colorSecondary),
			}},
		},
	})
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Stats")

	if s.stats.Total == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Completed and pending counts appear here."),
		))
	}

	summary := []string{
		fmt.Sprintf("  %-12s %s", "Total", highlightStyle.Render(fmt.Sprint(s.stats.Total))),
		fmt.Sprintf("  %-12s %s", "Completed", successStyle.Render(fmt.Sprint(s.stats.Completed))),
		fmt.Sprintf("  %-12s %s", "Pending", accentStyle.Render(fmt.Sprint(s.stats.Pending))),
		fmt.Sprintf("  %-12s %s", "Completion", highlightStyle.Render(fmt.Sprintf("%d%%", s.stats.CompletionRate))),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		strings.Join(summary, "\n"),
		"",
		progressBar(s.stats.CompletionRate, min(max(w-10, 10), 50)),
		"",
		s.chart.View(),
	))
}

// progressBar renders pct (0-100) as a bar of the given width.
func progressBar(pct, width int) string {
	pct = min(max(pct, 0), 100)
	filled := width * pct / 100
	return "  " + successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}
