package inlineedit

import (
	"context"
	"errors"
)

// Operation names the remote mutation a commit performs.
type Operation string

const (
	// OpCreateEmail creates an e-mail credential for a user that has none.
	OpCreateEmail Operation = "create_user_credentials_email"
	// OpUpdateEmail changes an existing e-mail credential.
	OpUpdateEmail Operation = "update_user_credentials_email"
)

// Payload is the body sent with a credential mutation.
type Payload struct {
	Email string `json:"email"`
}

// Updater performs the remote mutation for a commit. Any non-nil error is
// treated as a failed commit regardless of cause.
type Updater interface {
	Update(ctx context.Context, op Operation, recordID string, payload Payload) error
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(ctx context.Context, op Operation, recordID string, payload Payload) error

// Update calls f.
func (f UpdaterFunc) Update(ctx context.Context, op Operation, recordID string, payload Payload) error {
	return f(ctx, op, recordID, payload)
}

var (
	// ErrReadOnly is returned when committing a field bound to a disabled record.
	ErrReadOnly = errors.New("field is read-only")

	// ErrCommitInFlight is returned when a commit is requested while another is outstanding.
	ErrCommitInFlight = errors.New("commit already in flight")

	// ErrEmptyValue is returned when the trimmed draft is empty.
	ErrEmptyValue = errors.New("value is empty")

	// ErrRemoteCommitFailed wraps every failure reported by the Updater.
	ErrRemoteCommitFailed = errors.New("remote commit failed")

	// ErrNoUpdater is returned by Commit when the field was built without an Updater.
	ErrNoUpdater = errors.New("no updater configured")
)
