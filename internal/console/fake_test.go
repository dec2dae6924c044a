package console

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/powerpack/internal/inlineedit"
	"github.com/muurk/powerpack/internal/looker"
)

// fakeAPI is an in-memory API
type fakeAPI struct {
	mu sync.Mutex

	me    *looker.User
	users []looker.User
	plans []looker.ScheduledPlan

	meErr     error
	updateErr error
	runErr    error

	requests     []inlineedit.Request
	runs         []string
	embeds       []looker.EmbedSSOParams
	refreshCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		me: &looker.User{ID: "1", DisplayName: "Admin"},
		users: []looker.User{
			{ID: "1", DisplayName: "Admin", CredentialsEmail: &looker.CredentialsEmail{Email: "admin@example.com"}},
			{ID: "2", DisplayName: "New Hire"},
			{ID: "3", DisplayName: "Gone", IsDisabled: true, CredentialsEmail: &looker.CredentialsEmail{Email: "gone@example.com"}},
		},
		plans: []looker.ScheduledPlan{
			{ID: "10", Name: "Daily sales", UserID: "1", Enabled: true, Crontab: "0 6 * * *", DashboardID: "7"},
			{ID: "11", Name: "Weekly churn", UserID: "2", Crontab: "0 6 * * 1", LookID: "3"},
		},
	}
}

func (f *fakeAPI) Me(ctx context.Context) (*looker.User, error) {
	return f.me, f.meErr
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]looker.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]looker.User(nil), f.users...), nil
}

func (f *fakeAPI) RefreshUsers(ctx context.Context) ([]looker.User, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	return f.ListUsers(ctx)
}

func (f *fakeAPI) ListScheduledPlans(ctx context.Context) ([]looker.ScheduledPlan, error) {
	return f.plans, nil
}

func (f *fakeAPI) RunScheduledPlanOnce(ctx context.Context, planID string) (*looker.ScheduledPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, planID)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &looker.ScheduledPlan{ID: "99", RunOnce: true}, nil
}

func (f *fakeAPI) CreateSSOEmbedURL(ctx context.Context, params looker.EmbedSSOParams) (*looker.EmbedURL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, params)
	if params.TargetURL == "" {
		return nil, looker.NewHTTPError(422, "target_url is required")
	}
	return &looker.EmbedURL{URL: "https://example.com/login/embed/" + params.TargetURL}, nil
}

func (f *fakeAPI) Updater() inlineedit.Updater {
	return inlineedit.UpdaterFunc(func(ctx context.Context, op inlineedit.Operation, id string, p inlineedit.Payload) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, inlineedit.Request{Op: op, RecordID: id, Payload: p})
		return f.updateErr
	})
}

var errBoom = errors.New("boom")

// fakeHost records host notifications
type fakeHost struct {
	ready     int
	navigated []string
}

func (h *fakeHost) Ready()                { h.ready++ }
func (h *fakeHost) Navigated(path string) { h.navigated = append(h.navigated, path) }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// typeText feeds s one rune at a time
func typeText(p Page, s string) {
	for _, r := range s {
		p.Update(runes(string(r)))
	}
}
