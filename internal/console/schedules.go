package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/powerpack/internal/looker"
)

// schedulesKeyMap defines key bindings for the schedules page
type schedulesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Run     key.Binding
	Reload  key.Binding
	Confirm key.Binding
	Abort   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k schedulesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Run, k.Reload, k.Confirm, k.Abort}
}

// FullHelp returns keybindings for the expanded help view
func (k schedulesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Run, k.Reload},
		{k.Confirm, k.Abort},
	}
}

// SchedulesPage lists scheduled plans across all users and can trigger a
// one-off run of the selected plan. A run delivers immediately, so it is
// asked for with y/N first.
type SchedulesPage struct {
	api        API
	table      table.Model
	plans      []looker.ScheduledPlan
	running    map[string]bool
	confirming *looker.ScheduledPlan
	loading    bool
	err        error
	status     string
	failed     bool
	keys       schedulesKeyMap
}

// NewSchedulesPage creates the schedules page
func NewSchedulesPage(api API) *SchedulesPage {
	t := table.New(
		table.WithColumns(scheduleColumns(DefaultWidth)),
		table.WithFocused(true),
		table.WithHeight(DefaultHeight-16),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderBottom(true).
		BorderForeground(SubtleColor).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(TextColor).
		Background(PrimaryColor).
		Bold(false)
	t.SetStyles(styles)

	return &SchedulesPage{
		api:     api,
		table:   t,
		running: make(map[string]bool),
		keys: schedulesKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "down"),
			),
			Run: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "run once"),
			),
			Reload: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "reload"),
			),
			Confirm: key.NewBinding(
				key.WithKeys("y", "Y"),
				key.WithHelp("y", "run now"),
			),
			Abort: key.NewBinding(
				key.WithKeys("n", "N", "esc"),
				key.WithHelp("n/esc", "cancel"),
			),
		},
	}
}

// scheduleColumns sizes the table columns for width
func scheduleColumns(width int) []table.Column {
	fixed := 8 + 16 + 18 + 8 + 14
	name := width - fixed - 16
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "NAME", Width: name},
		{Title: "OWNER", Width: 16},
		{Title: "SOURCE", Width: 18},
		{Title: "ENABLED", Width: 8},
		{Title: "CRONTAB", Width: 14},
	}
}

// Init starts loading the plans
func (p *SchedulesPage) Init() tea.Cmd {
	p.loading = true
	return loadSchedulesCmd(p.api)
}

func loadSchedulesCmd(api API) tea.Cmd {
	return func() tea.Msg {
		plans, err := api.ListScheduledPlans(context.Background())
		return schedulesLoadedMsg{plans: plans, err: err}
	}
}

func runPlanCmd(api API, planID string) tea.Cmd {
	return func() tea.Msg {
		plan, err := api.RunScheduledPlanOnce(context.Background(), planID)
		return planRunMsg{planID: planID, plan: plan, err: err}
	}
}

// Capturing is true while a run waits for confirmation, so the answer key
// is never taken as a global shortcut.
func (p *SchedulesPage) Capturing() bool { return p.confirming != nil }

// KeyMap returns the bindings valid in the current state
func (p *SchedulesPage) KeyMap() help.KeyMap {
	k := p.keys
	asking := p.confirming != nil
	k.Up.SetEnabled(!asking)
	k.Down.SetEnabled(!asking)
	k.Run.SetEnabled(!asking && len(p.plans) > 0)
	k.Reload.SetEnabled(!asking && !p.loading)
	k.Confirm.SetEnabled(asking)
	k.Abort.SetEnabled(asking)
	return k
}

// Update handles messages for the schedules page
func (p *SchedulesPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.table.SetColumns(scheduleColumns(msg.Width))
		h := msg.Height - 16
		if h < 5 {
			h = 5
		}
		p.table.SetHeight(h)
		return p, nil

	case schedulesLoadedMsg:
		p.loading = false
		p.err = msg.err
		if msg.err == nil {
			p.setPlans(msg.plans)
		}
		return p, nil

	case planRunMsg:
		delete(p.running, msg.planID)
		if msg.err != nil {
			p.status = fmt.Sprintf("✗ Run of plan %s failed: %s", msg.planID, looker.GetShortErrorMessage(msg.err))
			p.failed = true
		} else {
			p.status = fmt.Sprintf("✓ Plan %s queued for delivery", msg.planID)
			p.failed = false
		}
		return p, nil

	case pageHiddenMsg:
		p.confirming = nil
		return p, nil

	case tea.KeyMsg:
		if p.confirming != nil {
			return p, p.answer(msg)
		}
		switch {
		case key.Matches(msg, p.keys.Run):
			p.askRun()
			return p, nil
		case key.Matches(msg, p.keys.Reload):
			if p.loading {
				return p, nil
			}
			p.loading = true
			p.status = ""
			return p, loadSchedulesCmd(p.api)
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

// askRun asks to confirm a run of the selected plan
func (p *SchedulesPage) askRun() {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.plans) {
		return
	}
	plan := p.plans[i]
	if p.running[plan.ID] {
		return
	}
	p.confirming = &plan
	p.status = ""
}

// answer resolves the pending confirmation. Anything but y declines.
func (p *SchedulesPage) answer(msg tea.KeyMsg) tea.Cmd {
	plan := *p.confirming
	p.confirming = nil

	if !key.Matches(msg, p.keys.Confirm) {
		p.status = fmt.Sprintf("Run of plan %s cancelled", plan.ID)
		p.failed = false
		return nil
	}
	return p.run(plan)
}

func (p *SchedulesPage) run(plan looker.ScheduledPlan) tea.Cmd {
	if p.running[plan.ID] {
		return nil
	}
	p.running[plan.ID] = true
	p.status = fmt.Sprintf("Running plan %s (%s)...", plan.ID, plan.Name)
	p.failed = false
	return runPlanCmd(p.api, plan.ID)
}

func (p *SchedulesPage) setPlans(plans []looker.ScheduledPlan) {
	p.plans = plans
	rows := make([]table.Row, len(plans))
	for i := range plans {
		plan := &plans[i]
		enabled := "no"
		if plan.Enabled {
			enabled = "yes"
		}
		rows[i] = table.Row{plan.ID, plan.Name, plan.OwnerName(), plan.Source(), enabled, plan.Crontab}
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(0)
	}
}

// View renders the plan table and the last run status
func (p *SchedulesPage) View(width int) string {
	if p.err != nil {
		var b strings.Builder
		b.WriteString(ErrorTextStyle.Render("✗ " + looker.GetShortErrorMessage(p.err)))
		b.WriteString("\n")
		for _, tip := range looker.GetTroubleshootingHint(p.err) {
			b.WriteString(HintStyle.Render("  • " + tip))
			b.WriteString("\n")
		}
		return b.String()
	}

	if p.loading && len(p.plans) == 0 {
		return HintStyle.Render("Loading scheduled plans...")
	}
	if len(p.plans) == 0 {
		return HintStyle.Render("No scheduled plans.")
	}

	var b strings.Builder
	b.WriteString(p.table.View())
	b.WriteString("\n")

	footer := fmt.Sprintf("%d plans", len(p.plans))
	if p.loading {
		footer += " · reloading"
	}
	b.WriteString(HintStyle.Render(footer))

	if p.confirming != nil {
		b.WriteString("\n")
		b.WriteString(WarningTextStyle.Render(fmt.Sprintf(
			"Run plan %s (%s) now? Its destinations receive a delivery immediately. [y/N]",
			p.confirming.ID, p.confirming.Name)))
		return b.String()
	}

	if p.status != "" {
		b.WriteString("\n")
		if p.failed {
			b.WriteString(ErrorTextStyle.Render(p.status))
		} else {
			b.WriteString(SelectedRowStyle.Render(p.status))
		}
	}
	return b.String()
}
