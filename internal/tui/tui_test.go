package tui

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sadopc/taskr/internal/core"
	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/store"
)

// ============================================================
// Fakes
// ============================================================

type fakeGateway struct {
	mu      sync.Mutex
	nextID  int64
	tasks   []core.Task
	creates int
}

func (g *fakeGateway) ListTasks(context.Context) ([]core.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]core.Task(nil), g.tasks...), nil
}

func (g *fakeGateway) CreateTask(_ context.Context, d core.Draft) (core.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	g.nextID++
	t := core.Task{ID: g.nextID, Title: d.Title, Description: d.Description, CreatedAt: time.Now()}
	g.tasks = append([]core.Task{t}, g.tasks...)
	return t, nil
}

func (g *fakeGateway) find(id int64) int {
	for i := range g.tasks {
		if g.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *fakeGateway) UpdateTask(_ context.Context, id int64, p core.Patch) (core.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.find(id)
	if i < 0 {
		return core.Task{}, &core.RequestError{Status: 404, Message: "Task not found"}
	}
	if p.Title != nil {
		g.tasks[i].Title = *p.Title
	}
	if p.Description != nil {
		g.tasks[i].Description = *p.Description
	}
	return g.tasks[i], nil
}

func (g *fakeGateway) ToggleTask(_ context.Context, id int64) (core.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.find(id)
	if i < 0 {
		return core.Task{}, &core.RequestError{Status: 404, Message: "Task not found"}
	}
	g.tasks[i].Done = !g.tasks[i].Done
	return g.tasks[i], nil
}

func (g *fakeGateway) DeleteTask(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.find(id)
	if i < 0 {
		return &core.RequestError{Status: 404, Message: "Task not found"}
	}
	g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
	return nil
}

type fakeAuth struct{}

var testUser = core.User{ID: 7, Email: "ana@example.com", Name: "Ana"}

func (fakeAuth) Login(_ context.Context, c core.Credentials) (core.AuthResult, error) {
	if c.Password != "secret" {
		return core.AuthResult{}, &core.RequestError{Status: 401, Message: "Invalid credentials"}
	}
	return core.AuthResult{AccessToken: "tok", User: testUser}, nil
}

func (fakeAuth) Register(_ context.Context, r core.Registration) (core.AuthResult, error) {
	return core.AuthResult{AccessToken: "tok", User: core.User{ID: 8, Email: r.Email, Name: r.Name}}, nil
}

func (fakeAuth) Profile(_ context.Context, token string) (core.User, error) {
	if token != "tok" {
		return core.User{}, &core.RequestError{Status: 401, Message: "Unauthorized"}
	}
	return testUser, nil
}

// ============================================================
// Helpers
// ============================================================

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T) (App, *fakeGateway, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	gw := &fakeGateway{}
	app := NewApp(Options{
		Session:   session.New(fakeAuth{}, st, zerolog.Nop()),
		Gateway:   gw,
		Log:       zerolog.Nop(),
		APIURL:    "http://localhost:3000",
		ExportDir: t.TempDir(),
	})
	app = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, gw, st
}

// mainApp returns an app logged in as testUser with the gateway's tasks
// loaded.
func mainApp(t *testing.T, seed ...core.Task) (App, *fakeGateway) {
	t.Helper()
	app, gw, _ := newTestApp(t)
	gw.tasks = seed
	gw.nextID = int64(len(seed))

	model, cmd := app.startSession(testUser)
	app = model.(App)
	app = update(t, app, cmd())
	return app, gw
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	model, _ := a.Update(msg)
	app, ok := model.(App)
	if !ok {
		t.Fatalf("Update returned %T", model)
	}
	return app
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func notification(t *testing.T, a App) string {
	t.Helper()
	n, ok := a.notes.Current()
	if !ok {
		return ""
	}
	return n.Text
}

// ============================================================
// Helpers under test
// ============================================================

func TestSuccessText(t *testing.T) {
	tests := []struct {
		op   taskOp
		task core.Task
		want string
	}{
		{opCreate, core.Task{}, "Task created"},
		{opUpdate, core.Task{}, "Task updated"},
		{opToggle, core.Task{Done: true}, "Task marked as done"},
		{opToggle, core.Task{Done: false}, "Task marked as pending"},
		{opDelete, core.Task{}, "Task deleted"},
	}
	for _, tt := range tests {
		if got := successText(tt.op, tt.task); got != tt.want {
			t.Errorf("successText(%d) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"a longer title", 6, "a lon…"},
		{"line\nbreak", 20, "line break"},
		{"héllo wörld", 5, "héll…"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestEditPatch(t *testing.T) {
	orig := core.Task{ID: 1, Title: "a", Description: "b"}

	if _, changed := editPatch(orig, "a", "b"); changed {
		t.Fatal("unchanged fields should produce no patch")
	}
	p, changed := editPatch(orig, "A", "b")
	if !changed || p.Title == nil || *p.Title != "A" || p.Description != nil {
		t.Fatalf("expected title-only patch, got %+v", p)
	}
	p, _ = editPatch(orig, "a", "")
	if p.Description == nil || *p.Description != "" || p.Title != nil {
		t.Fatalf("expected description-only patch, got %+v", p)
	}
}

func TestProgressBar(t *testing.T) {
	if !strings.Contains(progressBar(50, 10), strings.Repeat("█", 5)) {
		t.Fatal("half bar should contain 5 filled cells")
	}
	if strings.Contains(progressBar(-5, 10), "█") {
		t.Fatal("negative percentage should clamp to empty")
	}
}

// ============================================================
// App lifecycle
// ============================================================

func TestNewApp(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.screen != screenRestoring {
		t.Fatal("app should start restoring")
	}
	if app.activeView != viewTasks {
		t.Fatal("default view should be tasks")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	if app.mgr != nil {
		t.Fatal("no manager before a session exists")
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(Options{Log: zerolog.Nop()})
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestRestoreWithoutSessionShowsAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	app = update(t, app, app.restoreCmd()())
	if app.screen != screenAuth {
		t.Fatalf("expected auth screen, got %d", app.screen)
	}
	if notification(t, app) != "" {
		t.Fatal("nothing persisted should not notify")
	}
}

func TestRestoreValidSession(t *testing.T) {
	app, gw, st := newTestApp(t)
	gw.tasks = []core.Task{{ID: 1, Title: "persisted"}}
	st.Set(session.KeyToken, "tok")
	st.Set(session.KeyUser, `{"id":7,"email":"ana@example.com","name":"Ana"}`)

	model, cmd := app.Update(app.restoreCmd()())
	app = model.(App)
	if app.screen != screenMain {
		t.Fatalf("expected main screen, got %d", app.screen)
	}
	app = update(t, app, cmd())
	if len(app.taskList.items) != 1 {
		t.Fatalf("expected tasks loaded after restore, got %d", len(app.taskList.items))
	}
	if app.account.user.Email != "ana@example.com" {
		t.Fatal("account view should show restored user")
	}
}

func TestRestoreInvalidTokenIsSilent(t *testing.T) {
	app, _, st := newTestApp(t)
	st.Set(session.KeyToken, "stale")
	st.Set(session.KeyUser, `{"id":7,"email":"ana@example.com"}`)

	app = update(t, app, app.restoreCmd()())
	if app.screen != screenAuth {
		t.Fatal("invalid session should fall back to auth")
	}
	if notification(t, app) != "" {
		t.Fatal("invalid stored session should not show an error")
	}
	if _, ok, _ := st.Get(session.KeyToken); ok {
		t.Fatal("invalid token should be cleared")
	}
}

func TestLoginSuccess(t *testing.T) {
	app, _, _ := newTestApp(t)
	app = update(t, app, app.restoreCmd()())
	*app.auth.email = " ana@example.com "
	*app.auth.password = "secret"

	app.authBusy = true
	app = update(t, app, app.submitAuth()())
	if app.authBusy {
		t.Fatal("busy flag should clear when auth returns")
	}
	if app.screen != screenMain || app.mgr == nil {
		t.Fatal("successful login should open the main screen")
	}
	if got := notification(t, app); got != "Welcome back, Ana" {
		t.Fatalf("unexpected notification %q", got)
	}
	if !app.session.IsAuthenticated() {
		t.Fatal("session should be authenticated")
	}
}

func TestLoginFailureShowsError(t *testing.T) {
	app, _, _ := newTestApp(t)
	app = update(t, app, app.restoreCmd()())
	*app.auth.email = "ana@example.com"
	*app.auth.password = "wrong"

	app = update(t, app, app.submitAuth()())
	if app.screen != screenAuth {
		t.Fatal("failed login should stay on auth screen")
	}
	if got := notification(t, app); got != "Invalid credentials" {
		t.Fatalf("unexpected notification %q", got)
	}
	if *app.auth.password != "" {
		t.Fatal("password should be cleared after a failed attempt")
	}
	if *app.auth.email != "ana@example.com" {
		t.Fatal("email should survive a failed attempt")
	}
}

func TestLoginValidationShowsError(t *testing.T) {
	app, _, _ := newTestApp(t)
	app = update(t, app, app.restoreCmd()())

	app = update(t, app, app.submitAuth()())
	if got := notification(t, app); got != "Email is required" {
		t.Fatalf("unexpected notification %q", got)
	}
}

func TestRegister(t *testing.T) {
	app, _, _ := newTestApp(t)
	app = update(t, app, app.restoreCmd()())
	*app.auth.mode = modeRegister
	*app.auth.email = "bo@example.com"
	*app.auth.name = "Bo"
	*app.auth.password = "pw"

	app = update(t, app, app.submitAuth()())
	if app.screen != screenMain {
		t.Fatal("register should open the main screen")
	}
	if got := notification(t, app); got != "Welcome, Bo" {
		t.Fatalf("unexpected notification %q", got)
	}
}

func TestLogout(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"})
	old := app.mgr
	toggle := app.taskList.toggleCmd(1)

	app = update(t, app, keyPress("3"))
	app = update(t, app, keyPress("L"))

	if app.screen != screenAuth {
		t.Fatal("logout should show auth screen")
	}
	if app.session.IsAuthenticated() {
		t.Fatal("session should be cleared")
	}
	if app.mgr != nil || len(app.taskList.items) != 0 {
		t.Fatal("task state should be dropped on logout")
	}

	// A result from before the logout is discarded.
	late := toggle()
	if done, ok := late.(taskDoneMsg); !ok || done.err == nil {
		t.Fatalf("expected closed-manager error, got %#v", late)
	}
	app = update(t, app, late)
	if got := notification(t, app); got != "Logged out" {
		t.Fatalf("late result should not notify, got %q", got)
	}
	if old.Tasks()[0].Done {
		t.Fatal("closed manager must not apply results")
	}
}

func TestLogoutKeyOnlyOnAccountTab(t *testing.T) {
	app, _ := mainApp(t)
	app = update(t, app, keyPress("L"))
	if app.screen != screenMain {
		t.Fatal("L outside the account tab should not log out")
	}
}

// ============================================================
// Task operations
// ============================================================

func TestCreateTask(t *testing.T) {
	app, gw := mainApp(t)

	app = update(t, app, app.taskList.createCmd(core.Draft{Title: "Buy milk"})())
	if got := notification(t, app); got != "Task created" {
		t.Fatalf("unexpected notification %q", got)
	}
	if len(app.taskList.items) != 1 || app.taskList.items[0].Title != "Buy milk" {
		t.Fatalf("expected new task in view, got %+v", app.taskList.items)
	}
	if app.stats.stats.Total != 1 {
		t.Fatal("stats should follow the collection")
	}
	if gw.creates != 1 {
		t.Fatalf("expected one create call, got %d", gw.creates)
	}
}

func TestCreateEmptyTitle(t *testing.T) {
	app, gw := mainApp(t)

	app = update(t, app, app.taskList.createCmd(core.Draft{Title: "   "})())
	if got := notification(t, app); got != "Title is required" {
		t.Fatalf("unexpected notification %q", got)
	}
	if gw.creates != 0 {
		t.Fatal("empty title must not reach the gateway")
	}
}

func TestToggleNotifications(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"})

	app = update(t, app, app.taskList.toggleCmd(1)())
	if got := notification(t, app); got != "Task marked as done" {
		t.Fatalf("unexpected notification %q", got)
	}
	app = update(t, app, app.taskList.toggleCmd(1)())
	if got := notification(t, app); got != "Task marked as pending" {
		t.Fatalf("unexpected notification %q", got)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"}, core.Task{ID: 2, Title: "b"})

	title := "renamed"
	app = update(t, app, app.taskList.updateCmd(2, core.Patch{Title: &title})())
	if got := notification(t, app); got != "Task updated" {
		t.Fatalf("unexpected notification %q", got)
	}
	if app.taskList.items[1].Title != "renamed" {
		t.Fatal("update should be visible in place")
	}

	app = update(t, app, app.taskList.deleteCmd(app.taskList.items[0])())
	if got := notification(t, app); got != "Task deleted" {
		t.Fatalf("unexpected notification %q", got)
	}
	if len(app.taskList.items) != 1 {
		t.Fatalf("expected 1 task left, got %d", len(app.taskList.items))
	}
}

func TestDeleteMissingShowsError(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"})

	app = update(t, app, app.taskList.deleteCmd(core.Task{ID: 99})())
	if got := notification(t, app); got != "Task not found" {
		t.Fatalf("unexpected notification %q", got)
	}
	if !strings.Contains(app.taskList.view(), "Task not found") {
		t.Fatal("task panel should show the manager error")
	}

	app = update(t, app, keyPress("esc"))
	if notification(t, app) != "" || app.mgr.Err() != "" {
		t.Fatal("esc should dismiss the notification and error")
	}
}

func TestCursorNavigation(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"}, core.Task{ID: 2, Title: "b"})

	app = update(t, app, keyPress("j"))
	app = update(t, app, keyPress("j"))
	if app.taskList.cursor != 1 {
		t.Fatalf("cursor should stop at the last row, got %d", app.taskList.cursor)
	}
	app = update(t, app, keyPress("k"))
	if app.taskList.cursor != 0 {
		t.Fatalf("cursor should move up, got %d", app.taskList.cursor)
	}
}

func TestNewTaskFormCapturesKeys(t *testing.T) {
	app, _ := mainApp(t)

	app = update(t, app, keyPress("n"))
	if !app.isFormActive() || app.taskList.formKind != formCreate {
		t.Fatal("n should open the create form")
	}
	app = update(t, app, keyPress("q"))
	if !app.isFormActive() {
		t.Fatal("q inside a form should not quit or close it")
	}
	app = update(t, app, keyPress("esc"))
	if app.isFormActive() {
		t.Fatal("esc should close the form")
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"})

	app = update(t, app, keyPress("d"))
	if app.taskList.formKind != formDelete {
		t.Fatal("d should open the delete confirmation")
	}
	if app.taskList.target.ID != 1 {
		t.Fatal("confirmation should target the selected task")
	}
	if len(app.taskList.items) != 1 {
		t.Fatal("nothing is deleted before confirming")
	}
}

func TestEditPrefillsForm(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a", Description: "desc"})

	app = update(t, app, keyPress("e"))
	if app.taskList.formKind != formEdit {
		t.Fatal("e should open the edit form")
	}
	if *app.taskList.formTitle != "a" || *app.taskList.formDesc != "desc" {
		t.Fatal("edit form should be prefilled")
	}
}

// ============================================================
// Export
// ============================================================

func TestExportPicker(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"})

	app = update(t, app, keyPress("x"))
	if !app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	app = update(t, app, keyPress("j"))
	app = update(t, app, keyPress("j"))
	app = update(t, app, keyPress("j"))
	if app.exportCursor != 2 {
		t.Fatalf("cursor should stop at the last format, got %d", app.exportCursor)
	}
	app = update(t, app, keyPress("esc"))
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestDoExport(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a"})

	msg := app.doExport("json")()
	done, ok := msg.(exportDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("export failed: %#v", msg)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	app = update(t, app, msg)
	if !strings.HasPrefix(notification(t, app), "Exported to ") {
		t.Fatal("export should notify with the path")
	}
}

// ============================================================
// Rendering
// ============================================================

func TestAppViewStates(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a", Done: true}, core.Task{ID: 2, Title: "b", CreatedAt: time.Now()})

	for _, v := range []viewState{viewTasks, viewStats, viewAccount} {
		app.activeView = v
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAuthAndRestoringRender(t *testing.T) {
	app, _, _ := newTestApp(t)
	if !strings.Contains(app.View(), "Restoring session") {
		t.Fatal("restoring screen should say so")
	}
	app = update(t, app, app.restoreCmd()())
	if !strings.Contains(app.View(), "Log in or register") {
		t.Fatal("auth screen should render the form")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := mainApp(t)

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestTabSwitching(t *testing.T) {
	app, _ := mainApp(t)

	app = update(t, app, keyPress("2"))
	if app.activeView != viewStats {
		t.Fatal("2 should switch to stats")
	}
	app = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activeView != viewAccount {
		t.Fatal("tab should advance to account")
	}
	app = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activeView != viewTasks {
		t.Fatal("tab should wrap to tasks")
	}
}

func TestStatsViewShowsCompletion(t *testing.T) {
	app, _ := mainApp(t, core.Task{ID: 1, Title: "a", Done: true}, core.Task{ID: 2, Title: "b"}, core.Task{ID: 3, Title: "c"})

	if app.stats.stats.CompletionRate != 33 {
		t.Fatalf("completion = %d, want 33", app.stats.stats.CompletionRate)
	}
	if !strings.Contains(app.stats.view(), "33%") {
		t.Fatal("stats view should show the completion rate")
	}
}

func TestAppRenderFooterShowsNotification(t *testing.T) {
	app, _ := mainApp(t)
	app.notes.Success("Task created")

	if !strings.Contains(app.renderFooter(), "Task created") {
		t.Fatal("footer should contain the notification")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"done", func() string { return doneStyle.Render("test") }},
		{"doneTitle", func() string { return doneTitleStyle.Render("test") }},
		{"pending", func() string { return pendingStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"notifySuccess", func() string { return notifySuccessStyle.Render("test") }},
		{"notifyError", func() string { return notifyErrorStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
