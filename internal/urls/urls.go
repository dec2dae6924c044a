package urls

import (
	"net/url"
	"strings"
)

// Documentation URLs for guides and troubleshooting

// APIAuthentication explains API3 client credentials and the login call.
const APIAuthentication = "https://cloud.google.com/looker/docs/api-auth"

// UserAdmin covers the users admin page, including e-mail credentials.
const UserAdmin = "https://cloud.google.com/looker/docs/admin-panel-users-users"

// ScheduleAdmin covers the schedules admin page.
const ScheduleAdmin = "https://cloud.google.com/looker/docs/admin-panel-platform-schedules"

// SSOEmbedding explains signed single sign-on embed URLs.
const SSOEmbedding = "https://cloud.google.com/looker/docs/single-sign-on-embedding"

// defaultAPIPort is the port self-hosted instances serve the API on
const defaultAPIPort = "19999"

// WebURL derives the browser URL of an instance from its API base URL by
// dropping the API port and any /api path.
func WebURL(apiBase string) string {
	u, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil || u.Host == "" {
		return strings.TrimRight(apiBase, "/")
	}
	if u.Port() == defaultAPIPort {
		u.Host = u.Hostname()
	}
	if i := strings.Index(u.Path, "/api"); i >= 0 {
		u.Path = u.Path[:i]
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

// AdminUserURL is the admin edit page of one user
func AdminUserURL(apiBase, userID string) string {
	return WebURL(apiBase) + "/admin/users/" + url.PathEscape(userID) + "/edit"
}

// AdminSchedulesURL is the admin page listing every schedule
func AdminSchedulesURL(apiBase string) string {
	return WebURL(apiBase) + "/admin/scheduled_jobs"
}
