// Package logging provides structured logging for powerpack.
//
// This package wraps a zap logger with convenience functions for the
// logging patterns used throughout the console, the API client and the host
// bridge.
//
// # Log Levels
//
//   - Debug: API request/response details, stale commit results
//   - Info: route changes, bridge connections
//   - Warn: recoverable issues (dropped host connections, retries)
//   - Error: failed commits and startup failures
//
// # Silent by Default
//
// Nothing is logged unless a level is given, either with --log-level or the
// POWERPACK_LOG_LEVEL environment variable. This keeps CLI output clean.
//
// # Specialized Logging
//
//	logging.LogAPIRequest(requestID, "GET", "/api/4.0/users", 1)
//	logging.LogCommitFailure("update_user_credentials_email", "42", err)
//	logging.LogRouteChange("host", "/users")
//	logging.LogConnection(connID, remoteAddr, "websocket_upgraded")
//
// # Output
//
// CLI commands log to stderr. The interactive console logs to a file in the
// configuration directory, since its terminal is owned by bubbletea:
//
//	if err := logging.InitializeWithOutput(level, logPath); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
