package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/taskr/internal/core"
	"github.com/sadopc/taskr/internal/tasks"
)

type formKind int

const (
	formNone formKind = iota
	formCreate
	formEdit
	formDelete
)

type taskListModel struct {
	mgr    *tasks.Manager
	width  int
	height int

	items  []core.Task
	cursor int

	form     *huh.Form
	formKind formKind
	target   core.Task

	// Form field pointers (survive value copies)
	formTitle *string
	formDesc  *string
	confirm   *bool
}

func newTaskListModel(mgr *tasks.Manager) taskListModel {
	title, desc, confirm := "", "", false
	return taskListModel{
		mgr:       mgr,
		formTitle: &title,
		formDesc:  &desc,
		confirm:   &confirm,
	}
}

func (m *taskListModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m taskListModel) formActive() bool { return m.form != nil }

// sync copies the manager's collection into the view.
func (m *taskListModel) sync() {
	if m.mgr == nil {
		m.items = nil
		return
	}
	m.items = m.mgr.Tasks()
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m taskListModel) selected() (core.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return core.Task{}, false
	}
	return m.items[m.cursor], true
}

func (m taskListModel) loadCmd() tea.Cmd {
	mgr := m.mgr
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		return tasksLoadedMsg{err: mgr.Load(context.Background())}
	}
}

func (m taskListModel) createCmd(d core.Draft) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		t, err := mgr.CreateTask(context.Background(), d)
		return taskDoneMsg{op: opCreate, task: t, err: err}
	}
}

func (m taskListModel) updateCmd(id int64, p core.Patch) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		t, err := mgr.UpdateTask(context.Background(), id, p)
		return taskDoneMsg{op: opUpdate, task: t, err: err}
	}
}

func (m taskListModel) toggleCmd(id int64) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		t, err := mgr.ToggleTask(context.Background(), id)
		return taskDoneMsg{op: opToggle, task: t, err: err}
	}
}

func (m taskListModel) deleteCmd(t core.Task) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		err := mgr.DeleteTask(context.Background(), t.ID)
		return taskDoneMsg{op: opDelete, task: t, err: err}
	}
}

func (m taskListModel) update(msg tea.Msg) (taskListModel, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.mgr == nil {
		return m, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.New):
		return m.showTaskForm(formCreate, core.Task{})
	case key.Matches(km, keys.Edit):
		if t, ok := m.selected(); ok {
			return m.showTaskForm(formEdit, t)
		}
	case key.Matches(km, keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.toggleCmd(t.ID)
		}
	case key.Matches(km, keys.Delete):
		if t, ok := m.selected(); ok {
			return m.showDeleteConfirm(t)
		}
	case key.Matches(km, keys.Reload):
		return m, m.loadCmd()
	}
	return m, nil
}

func (m taskListModel) showTaskForm(kind formKind, t core.Task) (taskListModel, tea.Cmd) {
	*m.formTitle = t.Title
	*m.formDesc = t.Description
	m.formKind = kind
	m.target = t

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewText().Title("Description").Lines(3).Value(m.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	return m, m.form.Init()
}

func (m taskListModel) showDeleteConfirm(t core.Task) (taskListModel, tea.Cmd) {
	*m.confirm = false
	m.formKind = formDelete
	m.target = t

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", truncate(t.Title, 40))).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithShowHelp(true)

	return m, m.form.Init()
}

func (m taskListModel) closeForm() taskListModel {
	m.form = nil
	m.formKind = formNone
	return m
}

func (m taskListModel) updateForm(msg tea.Msg) (taskListModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			return m.closeForm(), nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	kind, target := m.formKind, m.target
	m = m.closeForm()
	switch kind {
	case formCreate:
		return m, m.createCmd(core.Draft{Title: *m.formTitle, Description: *m.formDesc})
	case formEdit:
		p, changed := editPatch(target, *m.formTitle, *m.formDesc)
		if !changed {
			return m, nil
		}
		return m, m.updateCmd(target.ID, p)
	case formDelete:
		if *m.confirm {
			return m, m.deleteCmd(target)
		}
	}
	return m, nil
}

// editPatch builds a patch carrying only the fields that differ from t.
func editPatch(t core.Task, title, desc string) (core.Patch, bool) {
	var p core.Patch
	if title != t.Title {
		p.Title = &title
	}
	if desc != t.Description {
		p.Description = &desc
	}
	return p, p.Title != nil || p.Description != nil
}

// visibleRows is how many task rows fit in the panel.
func (m taskListModel) visibleRows() int {
	return max(1, m.height-8)
}

func (m taskListModel) view() string {
	w := m.width - 4

	if m.form != nil {
		title := titleStyle.Render("New Task")
		switch m.formKind {
		case formEdit:
			title = titleStyle.Render("Edit Task")
		case formDelete:
			title = titleStyle.Render("Delete Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	stats := core.Stats{}
	if m.mgr != nil {
		stats = m.mgr.Stats()
	}
	header := titleStyle.Render("Tasks") + "  " +
		mutedStyle.Render(fmt.Sprintf("%d total, %d done", stats.Total, stats.Completed))

	var rows []string
	rows = append(rows, header, "")

	if len(m.items) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks yet. Press n to create one."))
	} else {
		rows = append(rows, m.renderRows(w)...)
	}

	if m.mgr != nil {
		if err := m.mgr.Err(); err != "" {
			rows = append(rows, "", errorStyle.Render("! "+err))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  space: toggle  d: delete  r: reload  x: export"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m taskListModel) renderRows(w int) []string {
	n := m.visibleRows()
	start := 0
	if m.cursor >= n {
		start = m.cursor - n + 1
	}
	end := min(len(m.items), start+n)

	titleWidth := max(10, w-30)
	var rows []string
	for i := start; i < end; i++ {
		t := m.items[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		mark := pendingStyle.Render("[ ]")
		title := style.Render(truncate(t.Title, titleWidth))
		if t.Done {
			mark = doneStyle.Render("[x]")
			if i != m.cursor {
				title = doneTitleStyle.Render(truncate(t.Title, titleWidth))
			}
		}
		if m.mgr != nil && m.mgr.Pending(t.ID) {
			mark = warningStyle.Render("[~]")
		}

		age := ""
		if !t.CreatedAt.IsZero() {
			age = mutedStyle.Render(" " + humanize.Time(t.CreatedAt))
		}
		rows = append(rows, fmt.Sprintf("%s%s %s%s", cursor, mark, title, age))

		if t.Description != "" {
			rows = append(rows, "      "+mutedStyle.Render(truncate(t.Description, titleWidth)))
		}
	}
	if end < len(m.items) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  ... %d more", len(m.items)-end)))
	}
	return rows
}
