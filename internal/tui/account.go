package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskr/internal/core"
)

type accountModel struct {
	width  int
	height int

	user   core.User
	apiURL string
}

func (a *accountModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a accountModel) view() string {
	w := a.width - 4
	title := titleStyle.Render("Account")

	rows := []string{title, ""}
	for _, field := range [][2]string{
		{"Name", a.user.DisplayName()},
		{"Email", a.user.Email},
		{"User ID", fmt.Sprint(a.user.ID)},
		{"Server", a.apiURL},
	} {
		label := lipgloss.NewStyle().Width(12).Render(field[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(field[1])))
	}
	rows = append(rows, "", mutedStyle.Render("Press L to log out"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
