package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/session"
)

type formField struct {
	name  string
	label string
	input textinput.Model
}

// authForm backs the sign-in and sign-up views.
type authForm struct {
	fields     []formField
	focus      int
	errs       session.FieldErrors
	failure    string
	remember   bool
	rememberOn bool
}

func newField(name, label, placeholder string, secret bool) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 256
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return formField{name: name, label: label, input: ti}
}

func newSignInForm(lastEmail string) *authForm {
	f := &authForm{
		fields: []formField{
			newField(session.FieldEmail, "Email", "you@example.com", false),
			newField(session.FieldPassword, "Password", "at least 6 characters", true),
		},
		errs:       session.FieldErrors{},
		remember:   true,
		rememberOn: true,
	}
	if lastEmail != "" {
		f.fields[0].input.SetValue(lastEmail)
		f.focus = 1
	}
	f.fields[f.focus].input.Focus()
	return f
}

func newSignUpForm() *authForm {
	f := &authForm{
		fields: []formField{
			newField(session.FieldName, "Name", "Your name", false),
			newField(session.FieldEmail, "Email", "you@example.com", false),
			newField(session.FieldPassword, "Password", "at least 6 characters", true),
			newField(session.FieldConfirm, "Confirm password", "repeat password", true),
		},
		errs: session.FieldErrors{},
	}
	f.fields[0].input.Focus()
	return f
}

func (f *authForm) value(name string) string {
	for _, field := range f.fields {
		if field.name == name {
			return field.input.Value()
		}
	}
	return ""
}

func (f *authForm) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// reject records validation results and moves focus to the first failing field.
func (f *authForm) reject(errs session.FieldErrors) tea.Cmd {
	f.errs = errs
	f.failure = ""
	for i, field := range f.fields {
		if _, bad := errs[field.name]; bad {
			f.fields[f.focus].input.Blur()
			f.focus = i
			return f.fields[i].input.Focus()
		}
	}
	return nil
}

func (f *authForm) view(title, subtitle string) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	if subtitle != "" {
		b.WriteString(styles.muted.Render(subtitle))
		b.WriteString("\n\n")
	}

	for i, field := range f.fields {
		label := field.label
		if i == f.focus {
			label = styles.label.Render(label)
		}
		b.WriteString(label + "\n")
		b.WriteString(field.input.View() + "\n")
		if msg, ok := f.errs[field.name]; ok {
			b.WriteString(styles.err.Render(msg) + "\n")
		}
		b.WriteString("\n")
	}

	if f.rememberOn {
		box := "[ ]"
		if f.remember {
			box = "[x]"
		}
		b.WriteString(box + " Remember me\n\n")
	}

	if f.failure != "" {
		b.WriteString(styles.err.Render(f.failure) + "\n\n")
	}

	return styles.box.Render(strings.TrimRight(b.String(), "\n"))
}
