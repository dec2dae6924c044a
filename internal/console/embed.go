package console

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/powerpack/internal/looker"
	"github.com/muurk/powerpack/internal/urls"
)

// DefaultSessionLength is the embed session length requested, in seconds
const DefaultSessionLength = 3600

// embedKeyMap defines key bindings for the embed page
type embedKeyMap struct {
	Edit     key.Binding
	Generate key.Binding
	Done     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k embedKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Generate, k.Done}
}

// FullHelp returns keybindings for the expanded help view
func (k embedKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Edit, k.Generate, k.Done}}
}

// EmbedPage signs SSO embed URLs for a target path on the instance.
type EmbedPage struct {
	api     API
	input   textinput.Model
	loading bool
	target  string
	url     string
	err     error
	keys    embedKeyMap
}

// NewEmbedPage creates the embed playground page
func NewEmbedPage(api API) *EmbedPage {
	in := textinput.New()
	in.Prompt = "target ▸ "
	in.Placeholder = "/embed/dashboards/1"
	in.CharLimit = 512
	in.Width = 60

	return &EmbedPage{
		api:   api,
		input: in,
		keys: embedKeyMap{
			Edit: key.NewBinding(
				key.WithKeys("enter", "e"),
				key.WithHelp("enter/e", "edit target"),
			),
			Generate: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "sign url"),
			),
			Done: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "done"),
			),
		},
	}
}

// Init does nothing; URLs are only signed on request
func (p *EmbedPage) Init() tea.Cmd { return nil }

// Capturing reports whether the target input has focus
func (p *EmbedPage) Capturing() bool { return p.input.Focused() }

// KeyMap returns the bindings valid in the current state
func (p *EmbedPage) KeyMap() help.KeyMap {
	k := p.keys
	editing := p.input.Focused()
	k.Edit.SetEnabled(!editing)
	k.Generate.SetEnabled(editing && !p.loading)
	k.Done.SetEnabled(editing)
	return k
}

func signEmbedCmd(api API, target string) tea.Cmd {
	return func() tea.Msg {
		embed, err := api.CreateSSOEmbedURL(context.Background(), looker.EmbedSSOParams{
			TargetURL:     target,
			SessionLength: DefaultSessionLength,
			ForceLogout:   true,
		})
		if err != nil {
			return embedURLMsg{target: target, err: err}
		}
		return embedURLMsg{target: target, url: embed.URL}
	}
}

// Update handles messages for the embed page
func (p *EmbedPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - 20
		if w < 30 {
			w = 30
		}
		p.input.Width = w
		return p, nil

	case pageHiddenMsg:
		p.input.Blur()
		return p, nil

	case embedURLMsg:
		// Only the latest request is shown
		if msg.target != p.target {
			return p, nil
		}
		p.loading = false
		p.url = msg.url
		p.err = msg.err
		return p, nil

	case tea.KeyMsg:
		if !p.input.Focused() {
			if key.Matches(msg, p.keys.Edit) {
				return p, p.input.Focus()
			}
			return p, nil
		}

		switch {
		case key.Matches(msg, p.keys.Done):
			p.input.Blur()
			return p, nil
		case msg.Type == tea.KeyEnter:
			target := strings.TrimSpace(p.input.Value())
			if p.loading && target == p.target {
				return p, nil
			}
			p.target = target
			p.loading = true
			p.url = ""
			p.err = nil
			return p, signEmbedCmd(p.api, target)
		}

		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}

	return p, nil
}

// View renders the target input and the signed URL
func (p *EmbedPage) View(width int) string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Sign a single sign-on embed URL for a dashboard, look or explore path."))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	switch {
	case p.loading:
		b.WriteString(HintStyle.Render("Signing " + p.target + "..."))
	case p.err != nil:
		b.WriteString(ErrorTextStyle.Render("✗ " + looker.GetShortErrorMessage(p.err)))
		if looker.IsValidationError(p.err) {
			b.WriteString("\n")
			b.WriteString(HintStyle.Render("  • " + looker.GetTroubleshootingHint(p.err)[0]))
			b.WriteString("\n")
			b.WriteString(HintStyle.Render("  • See: " + urls.SSOEmbedding))
		}
	case p.url != "":
		boxWidth := width - 6
		if boxWidth < 20 {
			boxWidth = 20
		}
		b.WriteString(InfoBoxStyle.Width(boxWidth).Render(p.url))
		b.WriteString("\n")
		b.WriteString(HintStyle.Render("The URL is single-use and expires if not opened within five minutes."))
	}

	return b.String()
}
