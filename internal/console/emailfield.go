package console

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/powerpack/internal/inlineedit"
	"github.com/muurk/powerpack/internal/looker"
)

// EmailField binds an inlineedit.Field to a text input for one user's
// login e-mail.
type EmailField struct {
	Field   *inlineedit.Field
	Input   textinput.Model
	updater inlineedit.Updater
}

// NewEmailField creates the field for user, seeded from its credential
func NewEmailField(user looker.User, updater inlineedit.Updater) EmailField {
	field := inlineedit.New(inlineedit.Record{
		ID:       user.ID,
		Value:    user.CredentialEmail(),
		Disabled: user.IsDisabled,
	}, updater)

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "add e-mail login"
	input.CharLimit = 254
	input.SetValue(field.View())

	return EmailField{Field: field, Input: input, updater: updater}
}

// Editing reports whether keystrokes go to this field
func (e *EmailField) Editing() bool {
	return e.Field.Focused() && !e.Field.Disabled()
}

// Focus starts editing. Disabled fields never take focus.
func (e *EmailField) Focus() tea.Cmd {
	if e.Field.Disabled() {
		return nil
	}
	e.Field.Focus()
	e.Input.SetValue(e.Field.Draft())
	e.Input.CursorEnd()
	return e.Input.Focus()
}

// Blur is a focus loss
func (e *EmailField) Blur() {
	e.Field.Blur()
	e.sync()
}

// Cancel reverts the draft
func (e *EmailField) Cancel() {
	e.Field.Cancel()
	e.sync()
}

// Resolve applies a finished commit
func (e *EmailField) Resolve(req inlineedit.Request, err error) {
	e.Field.Resolve(req, err)
	e.sync()
}

// sync mirrors the field state into the input
func (e *EmailField) sync() {
	if e.Input.Value() != e.Field.View() {
		e.Input.SetValue(e.Field.View())
		e.Input.CursorEnd()
	}
	if e.Field.Focused() {
		e.Input.Focus()
	} else {
		e.Input.Blur()
	}
}

// HandleKey processes a key while editing. Enter starts a commit and
// returns the command performing it; local rejections are returned as err.
func (e *EmailField) HandleKey(msg tea.KeyMsg) (tea.Cmd, error) {
	switch msg.String() {
	case "esc":
		e.Cancel()
		return nil, nil

	case "enter":
		if e.Field.Status() == inlineedit.StatusSaving {
			return nil, nil
		}
		req, err := e.Field.Begin()
		if err != nil {
			return nil, err
		}
		return commitCmd(e.updater, e.Field, req), nil
	}

	// The draft is frozen while a commit is in flight
	if e.Field.Status() == inlineedit.StatusSaving {
		return nil, nil
	}

	var cmd tea.Cmd
	e.Input, cmd = e.Input.Update(msg)
	if e.Input.Value() != e.Field.Draft() {
		e.Field.Change(e.Input.Value())
	}
	return cmd, nil
}

// View renders the value and status affordance within width cells
func (e *EmailField) View(width int) string {
	var value string
	switch {
	case e.Editing():
		e.Input.Width = width
		value = e.Input.View()
	case e.Field.Disabled():
		value = DisabledRowStyle.Render(orDash(e.Field.View()))
	case e.Field.View() == "":
		value = HintStyle.Render("-")
	default:
		value = e.Field.View()
	}

	value = lipgloss.NewStyle().Width(width).MaxWidth(width).Render(value)

	status := e.Field.Status()
	label := status.Affordance().Label
	if label != "" {
		label = lipgloss.NewStyle().Foreground(ToneColor(status.Affordance().Tone)).Render(label)
	}
	return value + " " + RenderAffordance(status) + " " + label
}

// commitCmd performs the remote mutation off the update loop
func commitCmd(updater inlineedit.Updater, field *inlineedit.Field, req inlineedit.Request) tea.Cmd {
	return func() tea.Msg {
		err := updater.Update(context.Background(), req.Op, req.RecordID, req.Payload)
		return commitDoneMsg{field: field, req: req, err: err}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
