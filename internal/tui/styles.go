package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

var (
	activeTabStyle = fg(colorPrimary).Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = fg(colorMuted).Padding(0, 2)

	panelStyle       = panel(colorSubtle)
	activePanelStyle = panel(colorPrimary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = fg(colorMuted).Padding(0, 1)

	titleStyle     = fg(colorFg).Bold(true)
	mutedStyle     = fg(colorMuted)
	accentStyle    = fg(colorAccent)
	successStyle   = fg(colorSuccess)
	errorStyle     = fg(colorError)
	warningStyle   = fg(colorWarning)
	highlightStyle = fg(colorHighlight)

	// Task rows: done tasks are struck through and dimmed.
	doneStyle      = fg(colorSuccess)
	doneTitleStyle = fg(colorMuted).Strikethrough(true)
	pendingStyle   = fg(colorSecondary)

	selectedItemStyle = fg(colorPrimary).Bold(true)
	normalItemStyle   = fg(colorFg)

	notifySuccessStyle = successStyle.Bold(true)
	notifyErrorStyle   = errorStyle.Bold(true)
)
