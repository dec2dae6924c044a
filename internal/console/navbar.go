package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/powerpack/internal/routes"
)

// RenderNav renders the navigation bar with the entry for active
// highlighted. Entries are numbered for the 1-9 jump keys.
func RenderNav(table routes.Table, active string) string {
	items := table.Nav(active)
	cells := make([]string, 0, len(items))
	for i, item := range items {
		label := fmt.Sprintf("%d %s %s", i+1, item.Icon, item.NavTitle)
		if item.Active {
			cells = append(cells, ActiveNavItemStyle.Render(label))
		} else {
			cells = append(cells, NavItemStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
