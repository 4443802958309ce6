package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskr/internal/core"
)

const (
	modeLogin    = "login"
	modeRegister = "register"
)

// authModel is the login/register screen shown while no session exists.
type authModel struct {
	width int
	form  *huh.Form

	// Form field pointers (survive value copies)
	mode     *string
	email    *string
	name     *string
	password *string
}

func newAuthModel() authModel {
	mode, email, name, password := modeLogin, "", "", ""
	m := authModel{
		mode:     &mode,
		email:    &email,
		name:     &name,
		password: &password,
	}
	m.form = m.buildForm()
	return m
}

func (m authModel) buildForm() *huh.Form {
	mode := m.mode
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Account").
				Options(
					huh.NewOption("Log in", modeLogin),
					huh.NewOption("Register", modeRegister),
				).Value(m.mode),
			huh.NewInput().Title("Email").Value(m.email),
		),
		huh.NewGroup(
			huh.NewInput().Title("Name").Description("Optional").Value(m.name),
		).WithHideFunc(func() bool { return *mode != modeRegister }),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// reset rebuilds the form after a failed attempt. Mode and email are kept.
func (m authModel) reset() (authModel, tea.Cmd) {
	*m.password = ""
	m.form = m.buildForm()
	return m, m.form.Init()
}

// clear empties every field, as after a logout.
func (m authModel) clear() (authModel, tea.Cmd) {
	*m.mode = modeLogin
	*m.email = ""
	*m.name = ""
	return m.reset()
}

func (m authModel) registering() bool { return *m.mode == modeRegister }

func (m authModel) credentials() core.Credentials {
	return core.Credentials{Email: strings.TrimSpace(*m.email), Password: *m.password}
}

func (m authModel) registration() core.Registration {
	return core.Registration{
		Email:    strings.TrimSpace(*m.email),
		Password: *m.password,
		Name:     strings.TrimSpace(*m.name),
	}
}

// update forwards msg to the form and reports whether it was submitted.
func (m authModel) update(msg tea.Msg) (authModel, tea.Cmd, bool) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m, cmd, m.form.State == huh.StateCompleted
}

func (m authModel) view(busy bool, spin string) string {
	title := titleStyle.Render("Log in or register")
	if busy {
		body := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			spin+" "+mutedStyle.Render("Signing in..."),
		)
		return panelStyle.Width(m.width - 4).Render(body)
	}
	return panelStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
	)
}
