// Package routes holds the console's static route table.
//
// The table drives both the navigation bar and page selection. Matching is
// exact on the path; there are no parameters or prefixes.
package routes

import "encoding/json"

// Route describes one console page.
type Route struct {
	Path      string // e.g. "/users"
	NavTitle  string // Short label in the navigation bar
	PageTitle string // Heading shown above the page
	Icon      string // Glyph shown next to the nav label
}

// Change is a route-change notification from the hosting shell. State is
// opaque and passed through untouched.
type Change struct {
	Path  string          `json:"path"`
	State json.RawMessage `json:"state,omitempty"`
}

// NavItem is a route as rendered in the navigation bar.
type NavItem struct {
	Route
	Active bool
}

// Table is an ordered list of routes.
type Table []Route

// Paths of the built-in pages.
const (
	PathHome      = "/"
	PathUsers     = "/users"
	PathSchedules = "/schedules"
	PathEmbed     = "/embed"
)

// Default returns the console's route table.
func Default() Table {
	return Table{
		{Path: PathHome, NavTitle: "Home", PageTitle: "⚡ Admin Power Pack ⚡", Icon: "⌂"},
		{Path: PathUsers, NavTitle: "Users", PageTitle: "⚡ Users++", Icon: "☺"},
		{Path: PathSchedules, NavTitle: "Schedules", PageTitle: "⚡ Schedules++", Icon: "✉"},
		{Path: PathEmbed, NavTitle: "Embed", PageTitle: "⚡ Embed Playground", Icon: "▦"},
	}
}

// Match returns the route whose path equals path.
func (t Table) Match(path string) (Route, bool) {
	if i := t.Index(path); i >= 0 {
		return t[i], true
	}
	return Route{}, false
}

// Index returns the position of path in the table, or -1.
func (t Table) Index(path string) int {
	for i, r := range t {
		if r.Path == path {
			return i
		}
	}
	return -1
}

// Next returns the path after path, wrapping around. An unknown path yields
// the first route.
func (t Table) Next(path string) string {
	if len(t) == 0 {
		return path
	}
	i := t.Index(path)
	return t[(i+1)%len(t)].Path
}

// Prev returns the path before path, wrapping around. An unknown path yields
// the last route.
func (t Table) Prev(path string) string {
	if len(t) == 0 {
		return path
	}
	i := t.Index(path)
	if i <= 0 {
		return t[len(t)-1].Path
	}
	return t[i-1].Path
}

// Nav returns the navigation entries with the one matching active flagged.
func (t Table) Nav(active string) []NavItem {
	items := make([]NavItem, len(t))
	for i, r := range t {
		items[i] = NavItem{Route: r, Active: r.Path == active}
	}
	return items
}
