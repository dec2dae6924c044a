package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/powerpack/internal/looker"
	"github.com/muurk/powerpack/internal/routes"
	"github.com/muurk/powerpack/internal/urls"
	"github.com/muurk/powerpack/internal/version"
)

// homeKeyMap has no page-specific bindings
type homeKeyMap struct{}

// ShortHelp returns keybindings to be shown in the mini help view
func (homeKeyMap) ShortHelp() []key.Binding { return nil }

// FullHelp returns keybindings for the expanded help view
func (homeKeyMap) FullHelp() [][]key.Binding { return nil }

// HomePage shows the connected instance and the available pages.
type HomePage struct {
	table    routes.Table
	instance string
	baseURL  string
	me       *looker.User
}

// NewHomePage creates the landing page
func NewHomePage(table routes.Table, instance, baseURL string) *HomePage {
	return &HomePage{table: table, instance: instance, baseURL: baseURL}
}

// Init does nothing
func (p *HomePage) Init() tea.Cmd { return nil }

// Capturing is always false
func (p *HomePage) Capturing() bool { return false }

// KeyMap returns no bindings
func (p *HomePage) KeyMap() help.KeyMap { return homeKeyMap{} }

// Update records the signed-in user once login completes
func (p *HomePage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if msg, ok := msg.(bootedMsg); ok && msg.err == nil {
		p.me = msg.me
	}
	return p, nil
}

// View renders the connection summary and page index
func (p *HomePage) View(width int) string {
	var info strings.Builder
	line := func(k, v string) {
		info.WriteString(HintStyle.Render(fmt.Sprintf("%-10s", k)))
		info.WriteString(v)
		info.WriteString("\n")
	}
	if p.instance != "" {
		line("Instance", p.instance)
	}
	line("API", p.baseURL)
	line("Web", urls.WebURL(p.baseURL))
	if p.me != nil {
		line("Signed in", fmt.Sprintf("%s (user %s)", p.me.Name(), p.me.ID))
	}
	line("Version", version.Version)

	var b strings.Builder
	b.WriteString(InfoBoxStyle.Render(strings.TrimRight(info.String(), "\n")))
	b.WriteString("\n\n")

	for i, r := range p.table {
		if r.Path == routes.PathHome {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s  %s %-12s %s\n",
			HintStyle.Render(fmt.Sprintf("[%d]", i+1)),
			r.Icon,
			r.NavTitle,
			HintStyle.Render(r.Path),
		))
	}

	return b.String()
}
