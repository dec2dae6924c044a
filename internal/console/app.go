package console

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/looker"
	"github.com/muurk/powerpack/internal/routes"
)

// Options configures the console
type Options struct {
	API API

	// Login obtains an API token before the first page loads. Nil skips it.
	Login func(ctx context.Context) error

	Instance string // Config name of the instance, may be empty
	BaseURL  string

	// Routes defaults to routes.Default()
	Routes routes.Table
	// Start is the initial path, "/" when empty
	Start string

	// Host is notified of boot and local navigation. May be nil.
	Host Host
	// Changes delivers route changes from the host shell. May be nil.
	Changes <-chan routes.Change
}

// globalKeyMap defines bindings handled by the app rather than a page
type globalKeyMap struct {
	Next key.Binding
	Prev key.Binding
	Jump key.Binding
	Help key.Binding
	Quit key.Binding
}

func newGlobalKeyMap() globalKeyMap {
	return globalKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev page"),
		),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to page"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// footerKeys merges the active page's bindings with the global ones
type footerKeys struct {
	page   help.KeyMap
	global globalKeyMap
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k footerKeys) ShortHelp() []key.Binding {
	return append(k.page.ShortHelp(), k.global.Help, k.global.Quit)
}

// FullHelp returns keybindings for the expanded help view
func (k footerKeys) FullHelp() [][]key.Binding {
	return append(k.page.FullHelp(),
		[]key.Binding{k.global.Next, k.global.Prev, k.global.Jump},
		[]key.Binding{k.global.Help, k.global.Quit},
	)
}

// hostRouteMsg carries one value read from Options.Changes
type hostRouteMsg struct {
	change routes.Change
	ok     bool
}

// AppModel is the top-level console model. It owns the route state, the
// boot placeholder and one Page per route.
type AppModel struct {
	opts   Options
	table  routes.Table
	pages  map[string]Page
	inited map[string]bool

	path  string
	state json.RawMessage

	booting bool
	bootErr error
	me      *looker.User

	Width  int
	Height int

	spinner spinner.Model
	help    help.Model
	keys    globalKeyMap
}

// New creates the console model
func New(opts Options) AppModel {
	table := opts.Routes
	if len(table) == 0 {
		table = routes.Default()
	}
	start := opts.Start
	if start == "" {
		start = routes.PathHome
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return AppModel{
		opts:  opts,
		table: table,
		pages: map[string]Page{
			routes.PathHome:      NewHomePage(table, opts.Instance, opts.BaseURL),
			routes.PathUsers:     NewUsersPage(opts.API),
			routes.PathSchedules: NewSchedulesPage(opts.API),
			routes.PathEmbed:     NewEmbedPage(opts.API),
		},
		inited:  make(map[string]bool),
		path:    start,
		booting: true,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		spinner: s,
		help:    help.New(),
		keys:    newGlobalKeyMap(),
	}
}

// Path returns the active route path
func (m AppModel) Path() string { return m.path }

// State returns the opaque route state last received from the host
func (m AppModel) State() json.RawMessage { return m.state }

// Booting reports whether the loading placeholder is shown
func (m AppModel) Booting() bool { return m.booting }

// Init starts the spinner, the login and the host route listener
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, bootCmd(m.opts), waitForChange(m.opts.Changes))
}

func bootCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if opts.Login != nil {
			if err := opts.Login(ctx); err != nil {
				return bootedMsg{err: err}
			}
		}
		me, err := opts.API.Me(ctx)
		return bootedMsg{me: me, err: err}
	}
}

// waitForChange reads one host route change. It is re-armed after every
// value and stops when the channel closes.
func waitForChange(ch <-chan routes.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		return hostRouteMsg{change: c, ok: ok}
	}
}

// Update handles all messages and routes them to the pages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width - 6
		// Propagate to all pages with the inner content size
		return m, m.broadcast(tea.WindowSizeMsg{Width: m.contentWidth(), Height: msg.Height})

	case spinner.TickMsg:
		if !m.booting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootedMsg:
		m.booting = false
		m.bootErr = msg.err
		if msg.err != nil {
			logging.Error("Console boot failed", zap.Error(msg.err))
			return m, nil
		}
		m.me = msg.me
		if m.opts.Host != nil {
			m.opts.Host.Ready()
		}
		return m, tea.Batch(m.broadcast(msg), m.initPage(m.path))

	case hostRouteMsg:
		if !msg.ok {
			return m, nil
		}
		m.state = msg.change.State
		cmd := m.navigate(msg.change.Path, "host")
		return m, tea.Batch(cmd, waitForChange(m.opts.Changes))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.broadcast(msg)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.booting || m.bootErr != nil {
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "r":
			if m.bootErr != nil {
				m.booting = true
				m.bootErr = nil
				return m, tea.Batch(m.spinner.Tick, bootCmd(m.opts))
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.local(m.table.Next(m.path))
	case key.Matches(msg, m.keys.Prev):
		return m, m.local(m.table.Prev(m.path))
	}

	page := m.pages[m.path]
	capturing := page != nil && page.Capturing()

	if !capturing {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Jump):
			i := int(msg.Runes[0] - '1')
			if i < len(m.table) {
				return m, m.local(m.table[i].Path)
			}
			return m, nil
		}
	}

	if page == nil {
		return m, nil
	}
	updated, cmd := page.Update(msg)
	m.pages[m.path] = updated
	return m, cmd
}

// local navigates on behalf of the operator and tells the host
func (m *AppModel) local(path string) tea.Cmd {
	if path == m.path {
		return nil
	}
	m.state = nil
	cmd := m.navigate(path, "keyboard")
	if m.opts.Host != nil {
		m.opts.Host.Navigated(path)
	}
	return cmd
}

// navigate switches the active page. Host-originated changes are not
// echoed back to the host.
func (m *AppModel) navigate(path, source string) tea.Cmd {
	if path == m.path {
		return nil
	}
	logging.LogRouteChange(source, path)

	var cmds []tea.Cmd
	if old, ok := m.pages[m.path]; ok {
		updated, cmd := old.Update(pageHiddenMsg{})
		m.pages[m.path] = updated
		cmds = append(cmds, cmd)
	}
	m.path = path
	if !m.booting && m.bootErr == nil {
		cmds = append(cmds, m.initPage(path))
	}
	return tea.Batch(cmds...)
}

// initPage runs a page's Init the first time it is shown
func (m *AppModel) initPage(path string) tea.Cmd {
	page, ok := m.pages[path]
	if !ok || m.inited[path] {
		return nil
	}
	m.inited[path] = true
	return page.Init()
}

// broadcast delivers a non-key message to every page
func (m *AppModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for path, page := range m.pages {
		updated, cmd := page.Update(msg)
		m.pages[path] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m AppModel) contentWidth() int {
	w := m.Width
	if w < MinTerminalWidth {
		w = MinTerminalWidth
	}
	return w - 6
}

// View renders the current state
func (m AppModel) View() string {
	var content, footer string

	switch {
	case m.booting:
		content = "\n  " + m.spinner.View() + " Connecting to " + m.opts.BaseURL + "..."
		footer = "ctrl+c: quit"

	case m.bootErr != nil:
		content = m.renderBootError()
		footer = "r: retry • q: quit"

	default:
		content = m.renderPage()
		keys := footerKeys{page: homeKeyMap{}, global: m.keys}
		if page, ok := m.pages[m.path]; ok {
			keys.page = page.KeyMap()
		}
		footer = m.help.View(keys)
	}

	return RenderApplicationContainer(m.opts.Instance, content, footer, m.Width, m.Height)
}

func (m AppModel) renderPage() string {
	var b strings.Builder
	b.WriteString(RenderNav(m.table, m.path))
	b.WriteString("\n")

	route, ok := m.table.Match(m.path)
	page, hasPage := m.pages[m.path]
	if !ok || !hasPage {
		b.WriteString(TitleStyle.Render("Not found"))
		b.WriteString("\n\n")
		b.WriteString(HintStyle.Render("  No page at " + m.path + ". Use tab or 1-9 to pick one."))
		return b.String()
	}

	b.WriteString(TitleStyle.Render(route.PageTitle))
	b.WriteString("\n\n")
	b.WriteString(page.View(m.contentWidth()))
	return b.String()
}

func (m AppModel) renderBootError() string {
	var b strings.Builder
	b.WriteString(ErrorTextStyle.Bold(true).Render("✗ " + looker.GetShortErrorMessage(m.bootErr)))
	b.WriteString("\n\n")
	for _, tip := range looker.GetTroubleshootingHint(m.bootErr) {
		b.WriteString("• " + tip + "\n")
	}
	return ErrorBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
