package looker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/metrics"
	"github.com/muurk/powerpack/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed reads
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultCacheDuration is the default validity of the cached user list
	DefaultCacheDuration = 30 * time.Second

	// RequestIDHeader carries the per-request correlation ID
	RequestIDHeader = "X-Request-Id"

	tracerName = "github.com/muurk/powerpack/internal/looker"
)

// Client talks to the platform REST API on behalf of one API user
type Client struct {
	// BaseURL is the instance URL without the API prefix (e.g., "https://acme.example.com:19999")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed GET requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	// CacheDuration is how long to cache the user list (0 = no cache)
	CacheDuration time.Duration

	tracer trace.Tracer

	// Credentials are kept in memory only, to log in again when the token expires
	authMutex    sync.RWMutex
	clientID     string
	clientSecret string
	token        string
	tokenExpiry  time.Time

	cachedUsers []User
	cacheTime   time.Time
	cacheMutex  sync.RWMutex
}

// NewClient creates a new API client for the instance at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		CacheDuration:         DefaultCacheDuration,
		tracer:                otel.Tracer(tracerName),
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior for reads
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// SetToken installs a bearer token obtained elsewhere
func (c *Client) SetToken(token string) {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()
	c.token = token
	c.tokenExpiry = time.Time{}
}

// Authenticated reports whether the client holds a token
func (c *Client) Authenticated() bool {
	c.authMutex.RLock()
	defer c.authMutex.RUnlock()
	return c.token != ""
}

func (c *Client) apiURL(path string) string {
	return c.BaseURL + "/api/" + APIVersion + path
}

// Login exchanges API3 credentials for an access token.
// The credentials are remembered so an expired token can be renewed.
func (c *Client) Login(ctx context.Context, clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return NewAuthError("client ID and secret are required")
	}

	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	var token AccessToken
	err := c.send(ctx, http.MethodPost, "/login", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), &token, false, 1)
	if err != nil {
		return err
	}
	if token.AccessToken == "" {
		return NewParseError("login response has no access_token", nil)
	}

	c.authMutex.Lock()
	c.clientID = clientID
	c.clientSecret = clientSecret
	c.token = token.AccessToken
	if token.ExpiresIn > 0 {
		c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	} else {
		c.tokenExpiry = time.Time{}
	}
	c.authMutex.Unlock()

	logging.Info("Logged in", zap.String("base_url", c.BaseURL))
	return nil
}

// relogin renews the token with the remembered credentials.
// Returns false when there is nothing to renew with.
func (c *Client) relogin(ctx context.Context) bool {
	c.authMutex.RLock()
	id, secret := c.clientID, c.clientSecret
	c.authMutex.RUnlock()
	if id == "" || secret == "" {
		return false
	}
	return c.Login(ctx, id, secret) == nil
}

func (c *Client) tokenExpired() bool {
	c.authMutex.RLock()
	defer c.authMutex.RUnlock()
	return !c.tokenExpiry.IsZero() && time.Now().After(c.tokenExpiry)
}

// Me returns the API user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, using the cached list when it is fresh
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	if c.CacheDuration > 0 {
		if cached := c.GetCachedUsers(); cached != nil {
			return cached, nil
		}
	}
	return c.RefreshUsers(ctx)
}

// RefreshUsers fetches the user list from the instance, bypassing and updating the cache
func (c *Client) RefreshUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}

	if c.CacheDuration > 0 {
		c.cacheMutex.Lock()
		c.cachedUsers = users
		c.cacheTime = time.Now()
		c.cacheMutex.Unlock()
	}

	return copyUsers(users), nil
}

// GetCachedUsers returns the cached user list without making a network request.
// Returns nil if no valid cache exists.
func (c *Client) GetCachedUsers() []User {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()

	if c.cachedUsers != nil && time.Since(c.cacheTime) < c.CacheDuration {
		return copyUsers(c.cachedUsers)
	}
	return nil
}

// InvalidateCache clears the cached user list
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cachedUsers = nil
	c.cacheTime = time.Time{}
}

func copyUsers(users []User) []User {
	out := make([]User, len(users))
	copy(out, users)
	return out
}

// CreateUserCredentialsEmail creates an e-mail credential for a user that has none
func (c *Client) CreateUserCredentialsEmail(ctx context.Context, userID, email string) (*CredentialsEmail, error) {
	return c.writeCredentialsEmail(ctx, http.MethodPost, userID, email)
}

// UpdateUserCredentialsEmail changes a user's existing e-mail credential
func (c *Client) UpdateUserCredentialsEmail(ctx context.Context, userID, email string) (*CredentialsEmail, error) {
	return c.writeCredentialsEmail(ctx, http.MethodPatch, userID, email)
}

func (c *Client) writeCredentialsEmail(ctx context.Context, method, userID, email string) (*CredentialsEmail, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusNotFound, "user ID is required")
	}

	var creds CredentialsEmail
	path := "/users/" + url.PathEscape(userID) + "/credentials_email"
	if err := c.write(ctx, method, path, CredentialsEmail{Email: email}, &creds); err != nil {
		return nil, err
	}

	c.InvalidateCache()
	return &creds, nil
}

// ListScheduledPlans returns the schedules of every user
func (c *Client) ListScheduledPlans(ctx context.Context) ([]ScheduledPlan, error) {
	var plans []ScheduledPlan
	if err := c.get(ctx, "/scheduled_plans?all_users=true", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// RunScheduledPlanOnce triggers an immediate delivery of an existing schedule
func (c *Client) RunScheduledPlanOnce(ctx context.Context, planID string) (*ScheduledPlan, error) {
	var plan ScheduledPlan
	path := "/scheduled_plans/" + url.PathEscape(planID) + "/run_once"
	if err := c.write(ctx, http.MethodPost, path, nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateSSOEmbedURL signs an embed URL for targetURL
func (c *Client) CreateSSOEmbedURL(ctx context.Context, params EmbedSSOParams) (*EmbedURL, error) {
	if params.TargetURL == "" {
		return nil, NewHTTPError(http.StatusUnprocessableEntity, "target URL is required")
	}

	var embed EmbedURL
	if err := c.write(ctx, http.MethodPost, "/embed/sso_url", params, &embed); err != nil {
		return nil, err
	}
	return &embed, nil
}

// get performs an idempotent read with retries and exponential backoff
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, currentDelay); err != nil {
				return err
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := c.authorized(ctx, http.MethodGet, path, nil, out, attempt+1)
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// write performs a mutation. Mutations are sent exactly once.
func (c *Client) write(ctx context.Context, method, path string, body, out any) error {
	return c.authorized(ctx, method, path, body, out, 1)
}

// authorized sends an authenticated JSON request, renewing an expired token
// once. attempt is the 1-based try number of the calling read or write.
func (c *Client) authorized(ctx context.Context, method, path string, body, out any, attempt int) error {
	if c.tokenExpired() {
		c.relogin(ctx)
	}

	err := c.sendJSON(ctx, method, path, body, out, attempt)
	if IsAuthError(err) && c.relogin(ctx) {
		return c.sendJSON(ctx, method, path, body, out, attempt)
	}
	return err
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any, attempt int) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewParseError("failed to encode request body", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, reader, out, true, attempt)
}

// send performs a single request
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any, withToken bool, attempt int) error {
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, method+" "+spanPath(path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("powerpack.request_id", requestID),
			attribute.Int("powerpack.attempt", attempt),
		),
	)
	defer span.End()

	err := c.doSend(ctx, requestID, method, path, contentType, body, out, withToken, attempt, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

func (c *Client) doSend(ctx context.Context, requestID, method, path, contentType string, body io.Reader, out any, withToken bool, attempt int, span trace.Span) error {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(path), body)
	if err != nil {
		return NewNetworkError(fmt.Sprintf("failed to create %s request", method), err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if withToken {
		c.authMutex.RLock()
		token := c.token
		c.authMutex.RUnlock()
		if token == "" {
			return NewAuthError("not logged in")
		}
		req.Header.Set("Authorization", "token "+token)
	}

	logging.LogAPIRequest(requestID, method, path, attempt)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, 0)
		return NewNetworkError(fmt.Sprintf("%s request failed", method), err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordAPIRequest(method, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}

	logging.LogAPIResponse(requestID, method, path, resp.StatusCode, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return NewParseError("failed to parse JSON response", err)
	}

	return nil
}

// spanPath strips the query string so span names stay low-cardinality
func spanPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return NewNetworkError("request cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}
