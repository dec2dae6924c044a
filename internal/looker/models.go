package looker

import "time"

// APIVersion is the REST API version all paths are built against
const APIVersion = "4.0"

// AccessToken is the response of POST /login
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // Seconds
}

// CredentialsEmail is a user's e-mail/password login credential.
// Users that never had one return null from the API.
type CredentialsEmail struct {
	Email          string     `json:"email"`
	IsDisabled     bool       `json:"is_disabled,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	LoggedInAt     *time.Time `json:"logged_in_at,omitempty"`
	PasswordSetURL string     `json:"password_reset_url,omitempty"`
}

// User is the subset of the platform user object the console works with
type User struct {
	ID               string            `json:"id"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	DisplayName      string            `json:"display_name"`
	Email            string            `json:"email"`
	IsDisabled       bool              `json:"is_disabled"`
	CredentialsEmail *CredentialsEmail `json:"credentials_email"`
	RoleIDs          []string          `json:"role_ids,omitempty"`
}

// CredentialEmail returns the e-mail credential address, or "" if the user
// has no e-mail credential.
func (u *User) CredentialEmail() string {
	if u.CredentialsEmail == nil {
		return ""
	}
	return u.CredentialsEmail.Email
}

// Name returns the best available display name
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.FirstName != "" || u.LastName != "" {
		return trimJoin(u.FirstName, u.LastName)
	}
	return u.Email
}

// ScheduledPlanDestination is one delivery target of a scheduled plan
type ScheduledPlanDestination struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`    // "email", "webhook", "s3", "sftp", ...
	Format  string `json:"format"`  // "csv", "wysiwyg_pdf", ...
	Address string `json:"address"` // Recipient, URL or bucket
}

// ScheduledPlanOwner is the embedded owner of a scheduled plan
type ScheduledPlanOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ScheduledPlan is a delivery schedule
type ScheduledPlan struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	UserID          string                     `json:"user_id"`
	User            *ScheduledPlanOwner        `json:"user,omitempty"`
	Enabled         bool                       `json:"enabled"`
	Crontab         string                     `json:"crontab"`
	Timezone        string                     `json:"timezone"`
	LookID          string                     `json:"look_id,omitempty"`
	DashboardID     string                     `json:"dashboard_id,omitempty"`
	NextRunAt       *time.Time                 `json:"next_run_at,omitempty"`
	LastRunAt       *time.Time                 `json:"last_run_at,omitempty"`
	Destinations    []ScheduledPlanDestination `json:"scheduled_plan_destination,omitempty"`
	RunOnce         bool                       `json:"run_once,omitempty"`
	IncludeLinks    bool                       `json:"include_links,omitempty"`
	RequireResults  bool                       `json:"require_results,omitempty"`
	RequireNoResult bool                       `json:"require_no_results,omitempty"`
}

// OwnerName returns the owner display name, falling back to the user ID
func (p *ScheduledPlan) OwnerName() string {
	if p.User != nil && p.User.DisplayName != "" {
		return p.User.DisplayName
	}
	return p.UserID
}

// Source describes what the plan delivers (look or dashboard)
func (p *ScheduledPlan) Source() string {
	switch {
	case p.DashboardID != "":
		return "dashboard " + p.DashboardID
	case p.LookID != "":
		return "look " + p.LookID
	default:
		return "-"
	}
}

// EmbedSSOParams is the request body for POST /embed/sso_url
type EmbedSSOParams struct {
	TargetURL     string   `json:"target_url"`
	SessionLength int      `json:"session_length,omitempty"` // Seconds
	ForceLogout   bool     `json:"force_logout_login"`
	ExternalID    string   `json:"external_user_id,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
	Models        []string `json:"models,omitempty"`
}

// EmbedURL is the response of POST /embed/sso_url
type EmbedURL struct {
	URL string `json:"url"`
}

func trimJoin(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
