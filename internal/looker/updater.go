package looker

import (
	"context"
	"fmt"

	"github.com/muurk/powerpack/internal/inlineedit"
)

// Call dispatches an inline-edit operation to the matching endpoint
func (c *Client) Call(ctx context.Context, op inlineedit.Operation, recordID string, payload inlineedit.Payload) error {
	var err error
	switch op {
	case inlineedit.OpCreateEmail:
		_, err = c.CreateUserCredentialsEmail(ctx, recordID, payload.Email)
	case inlineedit.OpUpdateEmail:
		_, err = c.UpdateUserCredentialsEmail(ctx, recordID, payload.Email)
	default:
		err = fmt.Errorf("unsupported operation %q", op)
	}
	return err
}

// Updater returns the client as an inlineedit.Updater
func (c *Client) Updater() inlineedit.Updater {
	return inlineedit.UpdaterFunc(c.Call)
}
