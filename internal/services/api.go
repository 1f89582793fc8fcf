package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the versioned Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// APIError is a failed call: a non-success status, or Status 0 when the request never completed.
type APIError struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Endpoint string `json:"endpoint"`
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("spotify API request to %s failed: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("spotify API error %d on %s: %s", e.Status, e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// APIResponse is the outcome of [APIService.Request]. Exactly one of success, Expired or Failure holds.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Expired    bool
	Failure    *APIError
}

// OK reports a 2xx answer.
func (r *APIResponse) OK() bool {
	return !r.Expired && r.Failure == nil
}

// Err returns [shared.ErrSessionExpired], the [*APIError] or nil.
func (r *APIResponse) Err() error {
	switch {
	case r.Expired:
		return shared.ErrSessionExpired
	case r.Failure != nil:
		return r.Failure
	default:
		return nil
	}
}

// Decode unmarshals a successful body into v.
func (r *APIResponse) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIOptions configures an [APIService].
type APIOptions struct {
	BaseURL           string
	HTTPClient        *http.Client
	Session           *models.Session
	RequestsPerSecond float64
	// OnSessionExpired runs after a 401 has cleared the session.
	OnSessionExpired func()
	Logger           *log.Logger
}

// APIService makes authorized requests against the Web API.
//
// It never returns a nil response: every failure is reported inside [APIResponse].
type APIService struct {
	baseURL    string
	httpClient *http.Client
	session    *models.Session
	limiter    *rate.Limiter
	onExpired  func()
	logger     *log.Logger
}

// NewAPIService creates an API service whose transport reads the bearer token from the session.
func NewAPIService(opts APIOptions) *APIService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Session == nil {
		opts.Session = models.NewSession()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &APIService{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Transport:     &oauth2.Transport{Source: opts.Session, Base: base.Transport},
			Timeout:       base.Timeout,
			CheckRedirect: base.CheckRedirect,
		},
		session:   opts.Session,
		limiter:   rate.NewLimiter(limit, 1),
		onExpired: opts.OnSessionExpired,
		logger:    opts.Logger,
	}
}

// Session returns the session the service authorizes with.
func (a *APIService) Session() *models.Session { return a.session }

// Request performs method on endpoint, relative to the base URL (a leading "/" is ignored), with body JSON encoded when non-nil.
//
// A 401 clears the session and fires the expiry hook; the response is then marked Expired.
func (a *APIService) Request(ctx context.Context, endpoint, method string, body any) *APIResponse {
	endpoint = strings.TrimPrefix(endpoint, "/")
	if method == "" {
		method = http.MethodGet
	}

	if !a.session.Authenticated() {
		return a.expire(endpoint)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return a.fail(endpoint, 0, fmt.Sprintf("failed to encode request body: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return a.fail(endpoint, 0, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+"/"+endpoint, reader)
	if err != nil {
		return a.fail(endpoint, 0, fmt.Sprintf("failed to create request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return a.fail(endpoint, 0, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return a.fail(endpoint, resp.StatusCode, fmt.Sprintf("failed to read response: %v", err))
	}

	a.logger.Debug("spotify request", "method", method, "endpoint", endpoint, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return a.expire(endpoint)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return a.fail(endpoint, resp.StatusCode, errorMessage(resp.StatusCode, data))
	}

	return &APIResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}
}

func (a *APIService) expire(endpoint string) *APIResponse {
	a.logger.Warn("session expired", "endpoint", endpoint)
	a.session.Clear()
	if a.onExpired != nil {
		a.onExpired()
	}
	return &APIResponse{StatusCode: http.StatusUnauthorized, Expired: true}
}

func (a *APIService) fail(endpoint string, status int, msg string) *APIResponse {
	a.logger.Error("spotify request failed", "endpoint", endpoint, "status", status, "message", msg)
	return &APIResponse{StatusCode: status, Failure: &APIError{Status: status, Message: msg, Endpoint: endpoint}}
}

// errorMessage prefers the provider's {"error":{"message":...}} body, then OAuth style error_description.
func errorMessage(status int, body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	if desc := gjson.GetBytes(body, "error_description"); desc.Exists() && desc.String() != "" {
		return desc.String()
	}
	if e := gjson.GetBytes(body, "error"); e.Type == gjson.String && e.String() != "" {
		return e.String()
	}
	return http.StatusText(status)
}
