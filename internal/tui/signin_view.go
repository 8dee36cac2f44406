package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type signInView struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	signUp   bool
	busy     bool
	problem  string
}

func newTextInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 256
	input.Width = 40
	_ = input.Cursor.SetMode(cursor.CursorStatic)
	return input
}

func newSignInView() *signInView {
	v := &signInView{
		email:    newTextInput("you@example.com"),
		password: newTextInput("password"),
	}
	v.password.EchoMode = textinput.EchoPassword
	v.password.EchoCharacter = '•'
	v.focusField(0)
	return v
}

func (v *signInView) setWidth(width int) {
	w := max(20, min(60, width-20))
	v.email.Width = w
	v.password.Width = w
}

func (v *signInView) focusField(idx int) {
	v.focus = idx
	if idx == 0 {
		_ = v.email.Focus()
		v.password.Blur()
		return
	}
	v.email.Blur()
	_ = v.password.Focus()
}

func (v *signInView) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		v.focusField(1 - v.focus)
		return
	case "ctrl+t":
		v.signUp = !v.signUp
		v.problem = ""
		return
	}
	if v.focus == 0 {
		v.email, _ = v.email.Update(msg)
	} else {
		v.password, _ = v.password.Update(msg)
	}
}

// submit returns the entered credentials; ok is false when a field is blank.
func (v *signInView) submit() (email, password string, signUp, ok bool) {
	email = strings.TrimSpace(v.email.Value())
	password = v.password.Value()
	if email == "" || password == "" {
		return "", "", false, false
	}
	return email, password, v.signUp, true
}

func (v *signInView) reset() {
	v.email.Reset()
	v.password.Reset()
	v.problem = ""
	v.busy = false
	v.signUp = false
	v.focusField(0)
}

func (v *signInView) view(spin string) string {
	title := "Sign in"
	action := "Log In"
	toggle := "Need an account? ctrl+t to sign up"
	if v.signUp {
		title = "Create an account"
		action = "Sign Up"
		toggle = "Already registered? ctrl+t to log in"
	}
	lines := []string{
		labelStyle.Render(title),
		"",
		labelStyle.Render("Email"),
		v.email.View(),
		labelStyle.Render("Password"),
		v.password.View(),
		"",
	}
	if v.busy {
		lines = append(lines, spin+" "+dimStyle.Render("Contacting the identity service..."))
	} else {
		lines = append(lines, accentStyle.Render("[ "+action+" ]")+"  "+dimStyle.Render(toggle))
	}
	if v.problem != "" {
		lines = append(lines, "", problemStyle.Render(v.problem))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
