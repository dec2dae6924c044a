package looker

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/powerpack/internal/urls"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{
			name: "timeout",
			err: &url.Error{Op: "Get", URL: "https://acme.example.com", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: timeoutError{},
			}},
			wantType:  ErrTypeTimeout,
			retryable: true,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "https://acme.example.com", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			wantType:  ErrTypeConnectionRefused,
			retryable: true,
		},
		{
			name:      "dns",
			err:       &url.Error{Op: "Get", URL: "https://nowhere.invalid", Err: &net.DNSError{Name: "nowhere.invalid", Err: "no such host"}},
			wantType:  ErrTypeDNS,
			retryable: false,
		},
		{
			name:      "generic",
			err:       errors.New("connection reset"),
			wantType:  ErrTypeNetwork,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ClassifyNetworkError(tt.err)
			if apiErr == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", apiErr.Type, tt.wantType)
			}
			if apiErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", apiErr.Retryable, tt.retryable)
			}
		})
	}

	if ClassifyNetworkError(nil) != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestNewHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{http.StatusUnauthorized, ErrTypeAuth, false},
		{http.StatusForbidden, ErrTypePermission, false},
		{http.StatusNotFound, ErrTypeNotFound, false},
		{http.StatusUnprocessableEntity, ErrTypeValidation, false},
		{http.StatusConflict, ErrTypeHTTP, false},
		{http.StatusTooManyRequests, ErrTypeHTTP, true},
		{http.StatusInternalServerError, ErrTypeHTTP, true},
		{http.StatusBadGateway, ErrTypeHTTP, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := NewHTTPError(tt.status, "boom")
			if err.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", err.Type, tt.wantType)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestErrorFromResponse(t *testing.T) {
	body := []byte(`{"message":"Validation Failed","errors":[{"field":"email","code":"taken","message":"is already taken"},{"message":"second"}]}`)
	err := errorFromResponse(http.StatusUnprocessableEntity, body)

	if err.Message != "Validation Failed (email: is already taken; second)" {
		t.Errorf("Message = %q", err.Message)
	}

	plain := errorFromResponse(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	if plain.Message != "unexpected status code: 502" {
		t.Errorf("Message = %q", plain.Message)
	}
}

func TestPredicatesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", NewAuthError("expired"))

	if !IsAuthError(wrapped) {
		t.Error("IsAuthError should see through wrapping")
	}
	if IsNetworkError(wrapped) || IsNotFound(wrapped) || IsPermissionError(wrapped) {
		t.Error("auth error matched another predicate")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("unknown errors are not retryable")
	}
	if !IsNetworkError(NewNetworkError("down", errors.New("x"))) {
		t.Error("IsNetworkError should match network errors")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	cause := errors.New("eof")
	err := NewParseError("bad body", cause)

	if !strings.Contains(err.Error(), "caused by: eof") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("APIError should unwrap to its cause")
	}
	if got := NewAuthError("nope").Error(); got != "Authentication Error: nope" {
		t.Errorf("Error() = %q", got)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewAuthError("x"), "Authentication failed - check API credentials"},
		{NewHTTPError(500, "x"), "Instance error (HTTP 500)"},
		{NewHTTPError(404, "x"), "Not found"},
		{NewHTTPError(422, "email is invalid"), "email is invalid"},
		{errors.New("plain"), "plain"},
	}

	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.want {
			t.Errorf("GetShortErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	for _, err := range []error{
		NewAuthError("x"),
		NewHTTPError(403, "x"),
		NewHTTPError(503, "x"),
		ClassifyNetworkError(timeoutError{}),
		errors.New("plain"),
	} {
		if hints := GetTroubleshootingHint(err); len(hints) == 0 {
			t.Errorf("no hints for %v", err)
		}
	}
}

func TestGetTroubleshootingHint_DocLinks(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewAuthError("bad key"), urls.APIAuthentication},
		{NewHTTPError(http.StatusForbidden, "nope"), urls.UserAdmin},
	}
	for _, tt := range tests {
		hints := strings.Join(GetTroubleshootingHint(tt.err), "\n")
		if !strings.Contains(hints, tt.want) {
			t.Errorf("hints for %v should link %s, got:\n%s", tt.err, tt.want, hints)
		}
	}
}
