package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/powerpack/internal/inlineedit"
	"github.com/muurk/powerpack/internal/looker"
)

// usersKeyMap defines key bindings for the users page
type usersKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Save   key.Binding
	Cancel key.Binding
	Reload key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k usersKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.Save, k.Cancel, k.Reload}
}

// FullHelp returns keybindings for the expanded help view
func (k usersKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Edit, k.Save, k.Cancel, k.Reload},
	}
}

func newUsersKeyMap() usersKeyMap {
	return usersKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter/e", "edit e-mail"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// userRow is one line of the users table
type userRow struct {
	user  looker.User
	email EmailField
}

// UsersPage lists users with an inline-editable login e-mail per row.
type UsersPage struct {
	api     API
	rows    []userRow
	cursor  int
	height  int
	loading bool
	err     error
	hint    string
	keys    usersKeyMap
}

// NewUsersPage creates the users page
func NewUsersPage(api API) *UsersPage {
	return &UsersPage{
		api:    api,
		height: DefaultHeight,
		keys:   newUsersKeyMap(),
	}
}

// Init starts loading the user list
func (p *UsersPage) Init() tea.Cmd {
	p.loading = true
	return loadUsersCmd(p.api, false)
}

func loadUsersCmd(api API, refresh bool) tea.Cmd {
	return func() tea.Msg {
		var (
			users []looker.User
			err   error
		)
		if refresh {
			users, err = api.RefreshUsers(context.Background())
		} else {
			users, err = api.ListUsers(context.Background())
		}
		return usersLoadedMsg{users: users, err: err}
	}
}

// Capturing reports whether a row's e-mail is being edited
func (p *UsersPage) Capturing() bool {
	row := p.current()
	return row != nil && row.email.Editing()
}

// KeyMap returns the bindings valid in the current state
func (p *UsersPage) KeyMap() help.KeyMap {
	k := p.keys
	editing := p.Capturing()
	saving := editing && p.current().email.Field.InFlight()

	k.Edit.SetEnabled(!editing && len(p.rows) > 0)
	k.Save.SetEnabled(editing && !saving)
	k.Cancel.SetEnabled(editing)
	k.Reload.SetEnabled(!editing && !p.loading)
	return k
}

func (p *UsersPage) current() *userRow {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	return &p.rows[p.cursor]
}

// Update handles messages for the users page
func (p *UsersPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.height = msg.Height

	case usersLoadedMsg:
		p.loading = false
		p.err = msg.err
		if msg.err != nil {
			return p, nil
		}
		p.setUsers(msg.users)

	case commitDoneMsg:
		for i := range p.rows {
			if p.rows[i].email.Field == msg.field {
				p.rows[i].email.Resolve(msg.req, msg.err)
				break
			}
		}

	case pageHiddenMsg:
		if row := p.current(); row != nil && row.email.Field.Focused() {
			row.email.Blur()
		}

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	return p, nil
}

// setUsers rebuilds the rows from a fresh user list, keeping the cursor
// on the same user when it still exists.
func (p *UsersPage) setUsers(users []looker.User) {
	var selected string
	if row := p.current(); row != nil {
		selected = row.user.ID
	}

	updater := p.api.Updater()
	p.rows = make([]userRow, len(users))
	p.cursor = 0
	for i, u := range users {
		p.rows[i] = userRow{user: u, email: NewEmailField(u, updater)}
		if u.ID == selected {
			p.cursor = i
		}
	}
}

func (p *UsersPage) handleKey(msg tea.KeyMsg) (Page, tea.Cmd) {
	p.hint = ""
	row := p.current()

	if row != nil && row.email.Editing() {
		// Arrow keys leave the field; letters like j/k are typed
		if msg.Type == tea.KeyUp || msg.Type == tea.KeyDown {
			row.email.Blur()
			p.move(msg.Type == tea.KeyDown)
			return p, nil
		}

		cmd, err := row.email.HandleKey(msg)
		switch {
		case errors.Is(err, inlineedit.ErrEmptyValue):
			p.hint = "A login e-mail cannot be empty"
		case errors.Is(err, inlineedit.ErrCommitInFlight):
			p.hint = "The previous save is still in progress; try again when it finishes"
		}
		return p, cmd
	}

	switch {
	case key.Matches(msg, p.keys.Up):
		p.move(false)
	case key.Matches(msg, p.keys.Down):
		p.move(true)
	case key.Matches(msg, p.keys.Edit):
		if row == nil {
			return p, nil
		}
		if row.email.Field.Disabled() {
			p.hint = fmt.Sprintf("%s is disabled; the e-mail is read-only", row.user.Name())
			return p, nil
		}
		return p, row.email.Focus()
	case key.Matches(msg, p.keys.Reload):
		if p.loading {
			return p, nil
		}
		p.loading = true
		return p, loadUsersCmd(p.api, true)
	}

	return p, nil
}

func (p *UsersPage) move(down bool) {
	if len(p.rows) == 0 {
		return
	}
	if down && p.cursor < len(p.rows)-1 {
		p.cursor++
	}
	if !down && p.cursor > 0 {
		p.cursor--
	}
}

// visibleRows is the number of table rows that fit the terminal
func (p *UsersPage) visibleRows() int {
	n := p.height - 16
	if n < 5 {
		n = 5
	}
	return n
}

// View renders the users table
func (p *UsersPage) View(width int) string {
	var b strings.Builder

	if p.err != nil {
		b.WriteString(ErrorTextStyle.Render("✗ " + looker.GetShortErrorMessage(p.err)))
		b.WriteString("\n")
		for _, tip := range looker.GetTroubleshootingHint(p.err) {
			b.WriteString(HintStyle.Render("  • " + tip))
			b.WriteString("\n")
		}
		return b.String()
	}

	if p.loading && len(p.rows) == 0 {
		return HintStyle.Render("Loading users...")
	}

	if len(p.rows) == 0 {
		return HintStyle.Render("No users.")
	}

	const idWidth, nameWidth = 8, 26
	emailWidth := width - idWidth - nameWidth - 24
	if emailWidth < 20 {
		emailWidth = 20
	}

	b.WriteString(ColumnHeaderStyle.Render(fmt.Sprintf("  %-*s %-*s %s", idWidth, "ID", nameWidth, "NAME", "LOGIN E-MAIL")))
	b.WriteString("\n")

	start, end := window(p.cursor, len(p.rows), p.visibleRows())
	for i := start; i < end; i++ {
		row := &p.rows[i]

		name := row.user.Name()
		if len(name) > nameWidth {
			name = name[:nameWidth-1] + "…"
		}
		prefix := fmt.Sprintf("%-*s %-*s ", idWidth, row.user.ID, nameWidth, name)

		switch {
		case i == p.cursor:
			prefix = SelectedRowStyle.Render("→ " + prefix)
		case row.user.IsDisabled:
			prefix = "  " + DisabledRowStyle.Render(prefix)
		default:
			prefix = "  " + prefix
		}

		b.WriteString(RowStyle.Render(prefix + row.email.View(emailWidth)))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%d users", len(p.rows))
	if end-start < len(p.rows) {
		footer = fmt.Sprintf("%d-%d of %d users", start+1, end, len(p.rows))
	}
	if p.loading {
		footer += " · reloading"
	}
	b.WriteString(HintStyle.Render("  " + footer))

	if p.hint != "" {
		b.WriteString("\n")
		b.WriteString(ErrorTextStyle.Render("  " + p.hint))
	}

	return b.String()
}

// window returns the [start, end) slice of n rows of height size that keeps
// cursor visible.
func window(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
