// Package looker provides a client for the platform's REST API 4.0.
//
// The client covers what the admin console needs: logging in with API3
// credentials, listing users, creating and updating e-mail login
// credentials, listing and triggering scheduled plans, and signing SSO
// embed URLs.
//
// # Usage Example
//
//	client := looker.NewClient("https://acme.example.com:19999")
//	if err := client.Login(ctx, clientID, clientSecret); err != nil {
//	    log.Fatal(looker.GetShortErrorMessage(err))
//	}
//
//	users, err := client.ListUsers(ctx)
//
// # Retries
//
// Reads are retried with exponential backoff when the error is retryable
// (network failures, 5xx, 429). Mutations are sent exactly once; a failed
// credential change is reported to the caller and never replayed.
//
// # Caching
//
// The user list is cached for CacheDuration. Any credential mutation
// invalidates it, and RefreshUsers bypasses it.
//
// # Inline Editing
//
// Client.Updater adapts the client to inlineedit.Updater so e-mail fields
// commit straight to the credentials_email endpoints.
//
// # Error Handling
//
// All errors are *APIError values with an ErrorType. Use IsAuthError,
// IsNotFound, IsRetryable and friends to inspect them, and
// GetTroubleshootingHint for operator-facing advice.
package looker
