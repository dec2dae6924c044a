package looker

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/powerpack/internal/urls"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused, timeout, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates an authentication failure (bad API credentials, expired token)
	ErrTypeAuth
	// ErrTypePermission indicates the API user lacks the required permission
	ErrTypePermission
	// ErrTypeNotFound indicates the addressed resource does not exist
	ErrTypeNotFound
	// ErrTypeValidation indicates the platform rejected the request body (HTTP 422)
	ErrTypeValidation
	// ErrTypeHTTP indicates any other non-2xx status code
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the instance refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypePermission:
		return "Permission Denied"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError represents an error that occurred while talking to the platform API
type APIError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// apiErrorBody is the error document the platform returns on 4xx/5xx
type apiErrorBody struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ClassifyNetworkError analyzes a transport error and returns a typed error
func ClassifyNetworkError(err error) *APIError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &APIError{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Err:       err,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:       err,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &APIError{
			Type:      ErrTypeConnectionRefused,
			Message:   "Instance refused connection",
			Err:       err,
			Retryable: true,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &APIError{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Err:       err,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *APIError {
	classified := ClassifyNetworkError(err)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &APIError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *APIError {
	return &APIError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Retryable:  false,
	}
}

// NewHTTPError creates a typed error for a non-2xx status code
func NewHTTPError(statusCode int, message string) *APIError {
	errType := ErrTypeHTTP
	switch statusCode {
	case http.StatusUnauthorized:
		errType = ErrTypeAuth
	case http.StatusForbidden:
		errType = ErrTypePermission
	case http.StatusNotFound:
		errType = ErrTypeNotFound
	case http.StatusUnprocessableEntity:
		errType = ErrTypeValidation
	}

	return &APIError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500 || statusCode == http.StatusTooManyRequests,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *APIError {
	return &APIError{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// errorFromResponse builds an APIError from a non-2xx status and its body
func errorFromResponse(statusCode int, body []byte) *APIError {
	message := fmt.Sprintf("unexpected status code: %d", statusCode)

	var doc apiErrorBody
	if err := json.Unmarshal(body, &doc); err == nil && doc.Message != "" {
		message = doc.Message
		var details []string
		for _, e := range doc.Errors {
			if e.Field != "" {
				details = append(details, e.Field+": "+e.Message)
			} else if e.Message != "" {
				details = append(details, e.Message)
			}
		}
		if len(details) > 0 {
			message += " (" + strings.Join(details, "; ") + ")"
		}
	}

	return NewHTTPError(statusCode, message)
}

func typeOf(err error) (ErrorType, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type, true
	}
	return 0, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeAuth
}

// IsPermissionError checks if an error is a permission error
func IsPermissionError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypePermission
}

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeValidation
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) []string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return []string{"An unexpected error occurred. Please try again."}
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return []string{
			"The instance did not respond in time.",
			"Check that the API host and port are correct (API is usually on :19999 or /api/4.0)",
			"Increase the request timeout in the config file",
		}
	case ErrTypeConnectionRefused, ErrTypeNetwork:
		return []string{
			"Could not reach the instance.",
			"Check the --base-url value and your network connection",
			"Make sure the API is enabled for this instance",
		}
	case ErrTypeDNS:
		return []string{
			"Could not resolve the instance hostname.",
			"Check the --base-url value for typos",
		}
	case ErrTypeAuth:
		return []string{
			"Authentication failed.",
			"Check the API client ID and POWERPACK_CLIENT_SECRET",
			"API3 keys are created on the user's admin page",
			"See: " + urls.APIAuthentication,
		}
	case ErrTypePermission:
		return []string{
			"The API user is not allowed to do this.",
			"Credential and schedule management needs an admin role",
			"See: " + urls.UserAdmin,
		}
	case ErrTypeNotFound:
		return []string{"The resource no longer exists. Reload and try again."}
	case ErrTypeValidation:
		return []string{
			"The platform rejected the value: " + apiErr.Message,
			"Login e-mails must be unique across the instance",
		}
	case ErrTypeParse:
		return []string{
			"Failed to parse the platform's response.",
			"The instance may run an unsupported API version (4.0 is required)",
		}
	default:
		if apiErr.StatusCode >= 500 {
			return []string{fmt.Sprintf("The instance returned a server error (HTTP %d). Try again later.", apiErr.StatusCode)}
		}
		return []string{"An error occurred. Please check the error message for details."}
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return "Instance not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Instance refused connection"
	case ErrTypeDNS:
		return "Cannot resolve instance hostname"
	case ErrTypeAuth:
		return "Authentication failed - check API credentials"
	case ErrTypePermission:
		return "Permission denied"
	case ErrTypeNotFound:
		return "Not found"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Instance error (HTTP %d)", apiErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse response"
	default:
		return apiErr.Message
	}
}
