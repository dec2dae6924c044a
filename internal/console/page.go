package console

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/powerpack/internal/inlineedit"
	"github.com/muurk/powerpack/internal/looker"
)

// API is the platform surface the console uses. *looker.Client implements it.
type API interface {
	Me(ctx context.Context) (*looker.User, error)
	ListUsers(ctx context.Context) ([]looker.User, error)
	RefreshUsers(ctx context.Context) ([]looker.User, error)
	ListScheduledPlans(ctx context.Context) ([]looker.ScheduledPlan, error)
	RunScheduledPlanOnce(ctx context.Context, planID string) (*looker.ScheduledPlan, error)
	CreateSSOEmbedURL(ctx context.Context, params looker.EmbedSSOParams) (*looker.EmbedURL, error)
	Updater() inlineedit.Updater
}

var _ API = (*looker.Client)(nil)

// Host is the embedding shell, notified of console lifecycle and local
// navigation. The bridge server implements it.
type Host interface {
	Ready()
	Navigated(path string)
}

// Page is one routed console page.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View(width int) string
	// KeyMap describes the page's bindings for the footer
	KeyMap() help.KeyMap
	// Capturing is true while the page owns the keyboard (text entry), so
	// single-key global shortcuts are delivered to the page instead.
	Capturing() bool
}

// bootedMsg reports the result of the initial login
type bootedMsg struct {
	me  *looker.User
	err error
}

// pageHiddenMsg is sent to a page when the operator navigates away from it
type pageHiddenMsg struct{}

type usersLoadedMsg struct {
	users []looker.User
	err   error
}

type commitDoneMsg struct {
	field *inlineedit.Field
	req   inlineedit.Request
	err   error
}

type schedulesLoadedMsg struct {
	plans []looker.ScheduledPlan
	err   error
}

type planRunMsg struct {
	planID string
	plan   *looker.ScheduledPlan
	err    error
}

type embedURLMsg struct {
	target string
	url    string
	err    error
}
