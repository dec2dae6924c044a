// Package inlineedit implements the state machine behind an inline-editable
// remote value, such as a user's e-mail credential.
//
// A Field tracks three things: the value last known to be persisted
// remotely (the revert target), the draft being typed, and a Status:
//
//	Idle ──change──▶ Editing ──commit──▶ Saving ──ok──▶ Saved
//	  ▲                 │                   │
//	  └──cancel─────────┘                   └──fail──▶ Error ──blur/cancel──▶ Idle
//
// The remote mutation is delegated to an injected Updater. Which operation
// is used depends on whether the property already exists: a user without an
// e-mail credential needs a create call, not an update.
//
// # Usage
//
// Synchronous callers (CLI commands) use Commit:
//
//	field := inlineedit.New(inlineedit.Record{ID: "42", Value: "old@x.com"}, updater)
//	field.Change("new@x.com")
//	if err := field.Commit(ctx); err != nil {
//	    return err // rejected locally, nothing was sent
//	}
//	if field.Status() == inlineedit.StatusError {
//	    // remote failure, already logged
//	}
//
// Event loops that must not block (the TUI) split the commit in two:
//
//	req, err := field.Begin()   // on Enter
//	// ... run updater.Update(ctx, req.Op, req.RecordID, req.Payload) elsewhere ...
//	field.Resolve(req, err)     // when the result message arrives
//
// # Concurrency
//
// Only one commit may be in flight per Field. Begin rejects a second commit
// with ErrCommitInFlight until the first is resolved, even if the field was
// cancelled meanwhile. In-flight requests are never aborted.
package inlineedit
