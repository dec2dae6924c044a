package inlineedit

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/metrics"
)

// Record seeds a Field with the remote state of one backing record.
type Record struct {
	ID       string // Backing record identity (e.g. user ID)
	Value    string // Current remote value, empty if the property is absent
	Disabled bool   // Disabled records are rendered read-only
}

// Request describes one remote mutation produced by Begin.
type Request struct {
	Op       Operation
	RecordID string
	Payload  Payload
}

// Field is the view-model for one inline-editable remote scalar.
//
// A Field is not safe for concurrent use; it is owned by a single UI event
// loop. The remote call itself may run elsewhere (Begin/Resolve), but both
// halves must be invoked from the owning loop.
type Field struct {
	recordID string
	updater  Updater

	committed string
	draft     string
	status    Status
	focused   bool
	disabled  bool

	// exists is true once the remote property is known to exist. It selects
	// between the create and update operations.
	exists bool

	// inFlight stays set until Resolve, even if the field was cancelled
	// meanwhile.
	inFlight bool

	lastErr error
}

// New creates a Field for record. updater may be nil when only Begin/Resolve
// are used.
func New(record Record, updater Updater) *Field {
	return &Field{
		recordID:  record.ID,
		updater:   updater,
		committed: record.Value,
		draft:     record.Value,
		status:    StatusIdle,
		disabled:  record.Disabled,
		exists:    record.Value != "",
	}
}

// RecordID returns the identity of the backing record.
func (f *Field) RecordID() string { return f.recordID }

// Committed returns the value last known to be persisted remotely.
func (f *Field) Committed() string { return f.committed }

// Draft returns the value currently being edited.
func (f *Field) Draft() string { return f.draft }

// Status returns the current commit state.
func (f *Field) Status() Status { return f.status }

// Focused reports whether the field holds input focus.
func (f *Field) Focused() bool { return f.focused }

// InFlight reports whether a remote update is outstanding.
func (f *Field) InFlight() bool { return f.inFlight }

// Disabled reports whether the field is read-only.
func (f *Field) Disabled() bool { return f.disabled }

// Err returns the failure of the most recent commit, if it failed.
func (f *Field) Err() error { return f.lastErr }

// View returns the text to display: the committed value for read-only
// fields, the draft otherwise.
func (f *Field) View() string {
	if f.disabled {
		return f.committed
	}
	return f.draft
}

// Operation returns the remote operation the next commit would use.
func (f *Field) Operation() Operation {
	if f.exists {
		return OpUpdateEmail
	}
	return OpCreateEmail
}

// Focus grants input focus.
func (f *Field) Focus() {
	if f.disabled {
		return
	}
	f.focused = true
}

// Change records a keystroke. The draft is kept raw while typing and only
// trimmed on commit. Input is ignored while a commit is in flight.
func (f *Field) Change(text string) {
	if f.disabled || f.status == StatusSaving {
		return
	}
	f.focused = true
	f.draft = text
	if text != f.committed {
		f.status = StatusEditing
	}
}

// Begin validates the draft and moves the field to Saving. The caller must
// perform the returned request and hand the outcome to Resolve.
func (f *Field) Begin() (Request, error) {
	if f.disabled {
		return Request{}, ErrReadOnly
	}
	if f.inFlight {
		return Request{}, ErrCommitInFlight
	}

	value := strings.TrimSpace(f.draft)
	if value == "" {
		return Request{}, ErrEmptyValue
	}

	f.status = StatusSaving
	f.inFlight = true
	return Request{
		Op:       f.Operation(),
		RecordID: f.recordID,
		Payload:  Payload{Email: value},
	}, nil
}

// Resolve applies the outcome of a request produced by Begin. Failures are
// logged and reflected as StatusError; they are never returned.
func (f *Field) Resolve(req Request, err error) {
	f.inFlight = false
	if err != nil {
		f.resolveFailure(req, err)
		return
	}

	metrics.RecordCommit(string(req.Op), "success")

	stale := f.status != StatusSaving
	f.committed = req.Payload.Email
	f.exists = true
	f.lastErr = nil

	if stale {
		// Cancelled while in flight. The remote value changed anyway, so the
		// revert target follows it; an untouched draft follows too.
		if f.status == StatusIdle {
			f.draft = f.committed
		}
		if f.draft == f.committed {
			f.status = StatusIdle
		} else {
			f.status = StatusEditing
		}
		return
	}

	f.draft = f.committed
	f.status = StatusSaved
	f.focused = false
}

func (f *Field) resolveFailure(req Request, err error) {
	metrics.RecordCommit(string(req.Op), "failure")

	wrapped := fmt.Errorf("%w: %s %s: %w", ErrRemoteCommitFailed, req.Op, req.RecordID, err)
	logging.LogCommitFailure(string(req.Op), req.RecordID, wrapped)

	if f.status != StatusSaving {
		logging.Debug("Ignoring stale commit failure",
			zap.String("record_id", req.RecordID),
			zap.String("status", f.status.String()),
		)
		return
	}

	f.lastErr = wrapped
	f.status = StatusError
}

// Commit performs Begin, the remote update and Resolve in one call. It
// returns only local rejections (ErrReadOnly, ErrCommitInFlight,
// ErrEmptyValue, ErrNoUpdater); a remote failure leaves the field in
// StatusError and returns nil.
func (f *Field) Commit(ctx context.Context) error {
	if f.updater == nil {
		return ErrNoUpdater
	}

	req, err := f.Begin()
	if err != nil {
		return err
	}

	f.Resolve(req, f.updater.Update(ctx, req.Op, req.RecordID, req.Payload))
	return nil
}

// Cancel reverts the draft to the committed value and releases focus. An
// in-flight request is not aborted.
func (f *Field) Cancel() {
	if f.disabled {
		return
	}
	f.draft = f.committed
	f.status = StatusIdle
	f.focused = false
	f.lastErr = nil
}

// Blur handles focus loss. A failed edit is reverted; anything else stays
// pending until explicitly committed or cancelled.
func (f *Field) Blur() {
	if f.disabled {
		return
	}
	if f.status == StatusError {
		f.Cancel()
		return
	}
	f.focused = false
}
