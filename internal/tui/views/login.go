package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/forms"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/commands"
)

const (
	msgLoginFailed      = "Login failed"
	msgRegistered       = "Registration successful! Please login."
	msgRegisterFailed   = "Registration failed"
	loginFieldUsername  = 0
	loginFieldSecondary = 1
)

// LoginModel is the entry view. It switches between login and register
// modes; the second field is the password in login mode and the optional
// platform handle in register mode.
type LoginModel struct {
	deps *Deps

	register bool
	username textinput.Model
	password textinput.Model
	handle   textinput.Model
	focus    int

	phase  tui.Phase
	dialog Dialog
	notice string

	width  int
	height int
}

// NewLoginModel creates a LoginModel in login mode with the username focused.
func NewLoginModel(deps *Deps, width, height int) LoginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Prompt = "› "
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Prompt = "› "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	handle := textinput.New()
	handle.Placeholder = "twitter username (optional)"
	handle.CharLimit = 16
	handle.Prompt = "› "

	return LoginModel{
		deps:     deps,
		username: username,
		password: password,
		handle:   handle,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the login view.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetNotice shows a one-off message above the form.
func (m *LoginModel) SetNotice(notice string) {
	m.notice = notice
}

// Phase reports the request state.
func (m LoginModel) Phase() tui.Phase {
	return m.phase
}

// RegisterMode reports whether the form is in register mode.
func (m LoginModel) RegisterMode() bool {
	return m.register
}

// Dialog returns the dialog currently shown, if any.
func (m LoginModel) Dialog() Dialog {
	return m.dialog
}

// CapturesInput is always true: a text field is focused.
func (m LoginModel) CapturesInput() bool {
	return true
}

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tui.LoginResultMsg:
		if msg.OK {
			m.phase = tui.PhaseSucceeded
			m.password.SetValue("")
			return m, nil
		}
		m.phase = tui.PhaseFailed
		m.dialog = Alert(msgLoginFailed)
		return m, nil

	case tui.RegisterResultMsg:
		if msg.OK {
			m.phase = tui.PhaseSucceeded
			m.dialog = Alert(msgRegistered)
			m.setMode(false)
			return m, nil
		}
		m.phase = tui.PhaseFailed
		m.dialog = Alert(msgRegisterFailed)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m LoginModel) handleKey(msg tea.KeyMsg) (LoginModel, tea.Cmd) {
	if m.dialog.Open() {
		var res DialogResult
		m.dialog, res = m.dialog.Update(msg)
		if res != DialogPending {
			m.phase = tui.PhaseIdle
		}
		return m, nil
	}
	if m.phase == tui.PhaseSubmitting {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+r":
		m.setMode(!m.register)
		return m, nil
	case tui.KeyTab, tui.KeyDown:
		m.setFocus((m.focus + 1) % 2)
		return m, nil
	case tui.KeyShiftTab, tui.KeyUp:
		m.setFocus((m.focus + 1) % 2)
		return m, nil
	case tui.KeyEnter:
		return m.submit()
	}

	var cmd tea.Cmd
	switch {
	case m.focus == loginFieldUsername:
		m.username, cmd = m.username.Update(msg)
	case m.register:
		m.handle, cmd = m.handle.Update(msg)
	default:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())

	if m.register {
		name, handle, err := forms.ParseRegister(username, m.handle.Value())
		if err != nil {
			m.dialog = Alert(err.Error())
			return m, nil
		}
		m.phase = tui.PhaseSubmitting
		return m, commands.RegisterCmd(m.deps.Session, name, handle)
	}

	password := m.password.Value()
	if err := forms.ValidateLogin(username, password); err != nil {
		m.dialog = Alert(err.Error())
		return m, nil
	}
	m.notice = ""
	m.phase = tui.PhaseSubmitting
	return m, commands.LoginCmd(m.deps.Session, username, password)
}

// setMode switches mode, keeping the username and clearing the rest.
func (m *LoginModel) setMode(register bool) {
	m.register = register
	m.password.SetValue("")
	m.handle.SetValue("")
	m.setFocus(loginFieldUsername)
}

func (m *LoginModel) setFocus(field int) {
	m.focus = field
	m.username.Blur()
	m.password.Blur()
	m.handle.Blur()
	switch {
	case field == loginFieldUsername:
		m.username.Focus()
	case m.register:
		m.handle.Focus()
	default:
		m.password.Focus()
	}
}

// View renders the login view.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("xpost"))
	b.WriteString("\n")
	mode := "Login"
	if m.register {
		mode = "Register"
	}
	b.WriteString(tui.SectionStyle.Render(mode))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(tui.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(fieldLabel("Username", m.focus == loginFieldUsername))
	b.WriteString("\n")
	b.WriteString(m.username.View())
	b.WriteString("\n\n")

	if m.register {
		b.WriteString(fieldLabel("Twitter Username (optional)", m.focus == loginFieldSecondary))
		b.WriteString("\n")
		b.WriteString(m.handle.View())
	} else {
		b.WriteString(fieldLabel("Password", m.focus == loginFieldSecondary))
		b.WriteString("\n")
		b.WriteString(m.password.View())
	}
	b.WriteString("\n\n")

	if m.phase == tui.PhaseSubmitting {
		b.WriteString(tui.DimStyle.Render("Loading..."))
		b.WriteString("\n\n")
	}

	if m.dialog.Open() {
		b.WriteString(m.dialog.View())
		b.WriteString("\n\n")
	}

	other := "register"
	if m.register {
		other = "login"
	}
	b.WriteString(tui.HelpLine(tui.Relabel(tui.DefaultKeyMap.Enter, strings.ToLower(mode)), tui.DefaultKeyMap.Tab, tui.Relabel(tui.DefaultKeyMap.SwitchMode, other), tui.DefaultKeyMap.CtrlC))

	width := 60
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	return tui.BoxStyle.Width(width).Render(b.String())
}

// fieldLabel renders a form label, highlighted when focused.
func fieldLabel(label string, focused bool) string {
	if focused {
		return tui.FocusedFieldStyle.Render(label)
	}
	return label
}
