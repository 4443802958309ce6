package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/sadopc/taskr/internal/core"
	"github.com/sadopc/taskr/internal/export"
	"github.com/sadopc/taskr/internal/notify"
	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/tasks"
)

type Options struct {
	Session *session.Store
	Gateway core.Gateway
	Log     zerolog.Logger
	// APIURL is shown on the account tab.
	APIURL string
	// ExportDir receives export files; defaults to the home directory.
	ExportDir string
	NotifyTTL time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	session   *session.Store
	gw        core.Gateway
	mgr       *tasks.Manager
	notes     *notify.Channel
	log       zerolog.Logger
	exportDir string

	width  int
	height int

	screen        screen
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	authBusy      bool

	auth     authModel
	taskList taskListModel
	stats    statsModel
	account  accountModel

	help    help.Model
	spinner spinner.Model
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return App{
		session:   opts.Session,
		gw:        opts.Gateway,
		notes:     notify.New(notify.WithTTL(opts.NotifyTTL)),
		log:       opts.Log.With().Str("component", "tui").Logger(),
		exportDir: opts.ExportDir,
		screen:    screenRestoring,
		auth:      newAuthModel(),
		taskList:  newTaskListModel(nil),
		stats:     newStatsModel(),
		account:   accountModel{apiURL: opts.APIURL},
		help:      h,
		spinner:   sp,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.restoreCmd(),
		a.spinner.Tick,
	)
}

func (a App) restoreCmd() tea.Cmd {
	sess := a.session
	return func() tea.Msg {
		return restoreDoneMsg{err: sess.Restore(context.Background())}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.auth.width = a.width
		a.taskList.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.account.setSize(a.width, contentHeight)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case notifyExpiredMsg:
		return a, nil

	case restoreDoneMsg:
		return a.handleRestore(msg)

	case authDoneMsg:
		return a.handleAuth(msg)

	case tasksLoadedMsg:
		if errors.Is(msg.err, core.ErrClosed) {
			return a, nil
		}
		a.refreshData()
		if msg.err != nil {
			return a, a.notifyError(msg.err)
		}
		return a, nil

	case taskDoneMsg:
		return a.handleTaskDone(msg)

	case exportDoneMsg:
		if msg.err != nil {
			return a, a.notifyError(msg.err)
		}
		return a, a.notifySuccess("Exported to " + msg.path)

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return a, tea.Quit
		}
		switch a.screen {
		case screenRestoring:
			return a, nil
		case screenAuth:
			return a.updateAuth(msg)
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Back):
			a.notes.Hide()
			if a.mgr != nil {
				a.mgr.ClearError()
			}
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewStats
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewAccount
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		case key.Matches(msg, keys.Logout) && a.activeView == viewAccount:
			return a.logout()
		}
	}

	switch a.screen {
	case screenAuth:
		return a.updateAuth(msg)
	case screenMain:
		return a.updateActiveView(msg)
	}
	return a, nil
}

func (a App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.authBusy {
		return a, nil
	}
	auth, cmd, submitted := a.auth.update(msg)
	a.auth = auth
	if !submitted {
		return a, cmd
	}
	a.authBusy = true
	return a, a.submitAuth()
}

func (a App) submitAuth() tea.Cmd {
	sess := a.session
	if a.auth.registering() {
		r := a.auth.registration()
		return func() tea.Msg {
			u, err := sess.Register(context.Background(), r)
			return authDoneMsg{user: u, register: true, err: err}
		}
	}
	c := a.auth.credentials()
	return func() tea.Msg {
		u, err := sess.Login(context.Background(), c)
		return authDoneMsg{user: u, err: err}
	}
}

func (a App) handleRestore(msg restoreDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		if u, ok := a.session.User(); ok {
			return a.startSession(u)
		}
	}

	a.screen = screenAuth
	cmds := []tea.Cmd{a.auth.form.Init()}
	if msg.err != nil {
		if errors.Is(msg.err, core.ErrSessionInvalid) {
			a.log.Info().Err(msg.err).Msg("stored session discarded")
		} else {
			a.log.Error().Err(msg.err).Msg("restore session")
			cmds = append(cmds, a.notifyError(msg.err))
		}
	}
	return a, tea.Batch(cmds...)
}

func (a App) handleAuth(msg authDoneMsg) (tea.Model, tea.Cmd) {
	a.authBusy = false
	if msg.err != nil {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.reset()
		return a, tea.Batch(cmd, a.notifyError(msg.err))
	}
	a.auth, _ = a.auth.clear()

	model, cmd := a.startSession(msg.user)
	text := "Welcome back, " + msg.user.DisplayName()
	if msg.register {
		text = "Welcome, " + msg.user.DisplayName()
	}
	app := model.(App)
	return app, tea.Batch(cmd, app.notifySuccess(text))
}

// startSession opens a fresh manager for user and loads their tasks.
func (a App) startSession(u core.User) (tea.Model, tea.Cmd) {
	a.mgr = tasks.NewManager(a.gw, a.log)
	a.taskList.mgr = a.mgr
	a.taskList.cursor = 0
	a.taskList.sync()
	a.stats.setStats(core.Stats{})
	a.account.user = u
	a.screen = screenMain
	a.activeView = viewTasks
	return a, a.taskList.loadCmd()
}

// logout closes the manager so late results are dropped, then clears the
// session.
func (a App) logout() (tea.Model, tea.Cmd) {
	if a.mgr != nil {
		a.mgr.Close()
		a.mgr = nil
	}
	a.session.Logout()

	a.taskList.mgr = nil
	a.taskList.sync()
	a.stats.setStats(core.Stats{})
	a.account.user = core.User{}
	a.exportPicking = false
	a.screen = screenAuth

	var cmd tea.Cmd
	a.auth, cmd = a.auth.clear()
	return a, tea.Batch(cmd, a.notifySuccess("Logged out"))
}

func (a App) handleTaskDone(msg taskDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, core.ErrClosed) {
		return a, nil
	}
	a.refreshData()
	if msg.err != nil {
		return a, a.notifyError(msg.err)
	}
	return a, a.notifySuccess(successText(msg.op, msg.task))
}

func (a *App) refreshData() {
	a.taskList.sync()
	if a.mgr != nil {
		a.stats.setStats(a.mgr.Stats())
	}
}

func (a App) notifySuccess(text string) tea.Cmd {
	a.notes.Success(text)
	return a.expireCmd()
}

func (a App) notifyError(err error) tea.Cmd {
	a.log.Debug().Err(err).Msg("showing error")
	a.notes.Error(err)
	return a.expireCmd()
}

// expireCmd schedules a redraw for when the current notification lapses.
func (a App) expireCmd() tea.Cmd {
	return tea.Tick(a.notes.TTL(), func(time.Time) tea.Msg {
		return notifyExpiredMsg{}
	})
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.taskList, cmd = a.taskList.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewTasks && a.taskList.formActive()
}

func (a App) loading() bool {
	return a.authBusy || a.screen == screenRestoring || (a.mgr != nil && a.mgr.Loading())
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.screen {
	case screenRestoring:
		content = panelStyle.Width(a.width - 4).Render(a.spinner.View() + " " + mutedStyle.Render("Restoring session..."))
	case screenAuth:
		content = a.auth.view(a.authBusy, a.spinner.View())
	default:
		switch a.activeView {
		case viewTasks:
			content = a.taskList.view()
		case viewStats:
			content = a.stats.view()
		case viewAccount:
			content = a.account.view()
		}
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskr")
	if a.screen != screenMain {
		return headerStyle.Render(title)
	}

	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := ""
	if a.screen == screenMain {
		left = footerStyle.Render(a.help.View(keys))
	}

	var right []string
	if a.loading() {
		right = append(right, a.spinner.View())
	}
	if n, ok := a.notes.Current(); ok {
		style := notifySuccessStyle
		if n.Kind == core.KindError {
			style = notifyErrorStyle
		}
		right = append(right, style.Render(n.Text))
	}
	status := strings.Join(right, " ")

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	mgr, dir := a.mgr, a.exportDir
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		path := export.DefaultPath(dir, f, time.Now())
		err := export.Write(f, mgr.Tasks(), mgr.Stats(), path)
		return exportDoneMsg{path: path, err: err}
	}
}
