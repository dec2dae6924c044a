// Package console implements the interactive terminal console.
//
// The console is a Bubble Tea program organized around the static route
// table in package routes. Each route has one Page; the AppModel owns the
// active path, the boot placeholder and the navigation bar, and delivers
// key messages to the active page only. Other messages (window size,
// async results) are broadcast to every page so late results land even
// after the operator has moved on.
//
// # Pages
//
//   - Home: instance and signed-in user
//   - Users: user list with an inline-editable login e-mail per row
//   - Schedules: scheduled plans, with run-once
//   - Embed: sign SSO embed URLs
//
// # Host integration
//
// An embedding shell may drive the active route through Options.Changes
// and is told about boot completion and local navigation through the Host
// interface. The bridge package implements both ends over a WebSocket.
//
// # Usage Example
//
//	model := console.New(console.Options{
//		API:     client,
//		Login:   func(ctx context.Context) error { return client.Login(ctx, id, secret) },
//		BaseURL: client.BaseURL,
//	})
//	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
package console
