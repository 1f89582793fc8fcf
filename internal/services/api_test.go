package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
	tu "github.com/desertthunder/statify/internal/testing"
	"golang.org/x/oauth2"
)

func authedSession() *models.Session {
	s := models.NewSession()
	s.SetToken(&oauth2.Token{AccessToken: "token-abc"})
	return s
}

func newTestAPI(t *testing.T, fake *tu.FakeSpotify, session *models.Session, onExpired func()) *APIService {
	t.Helper()
	return NewAPIService(APIOptions{
		BaseURL:          fake.BaseURL(),
		HTTPClient:       fake.Client(),
		Session:          session,
		OnSessionExpired: onExpired,
		Logger:           shared.NewLogger(io.Discard),
	})
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewAPIService(APIOptions{})

			if srv.baseURL != DefaultBaseURL {
				t.Errorf("expected default base url, got %s", srv.baseURL)
			}
			if srv.session == nil {
				t.Error("expected a session to be created")
			}
		})

		t.Run("Trailing Slash Is Trimmed", func(t *testing.T) {
			srv := NewAPIService(APIOptions{BaseURL: "http://example.com/v1/"})
			if srv.baseURL != "http://example.com/v1" {
				t.Errorf("unexpected base url %s", srv.baseURL)
			}
		})
	})

	t.Run("Request", func(t *testing.T) {
		t.Run("Joins Endpoint And Sends Bearer Token", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(http.MethodGet, "me/top/artists", http.StatusOK, `{"items":[]}`)
			srv := newTestAPI(t, fake, authedSession(), nil)

			for _, endpoint := range []string{"me/top/artists?limit=1", "/me/top/artists?limit=1"} {
				resp := srv.Request(t.Context(), endpoint, http.MethodGet, nil)
				if !resp.OK() {
					t.Fatalf("%s: expected success, got %v", endpoint, resp.Err())
				}
			}

			calls := fake.CallsTo(http.MethodGet, "me/top/artists")
			if len(calls) != 2 {
				t.Fatalf("expected both spellings to reach the same path, got %d calls", len(calls))
			}
			if got := calls[0].Header.Get("Authorization"); got != "Bearer token-abc" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if calls[0].Query.Get("limit") != "1" {
				t.Errorf("expected query to be preserved")
			}
		})

		t.Run("Encodes JSON Body", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.HandleFunc(http.MethodPost, "echo", func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}
				w.WriteHeader(http.StatusCreated)
				_, _ = io.Copy(w, r.Body)
			})
			srv := newTestAPI(t, fake, authedSession(), nil)

			resp := srv.Request(t.Context(), "echo", http.MethodPost, map[string]string{"name": "mix"})
			var got map[string]string
			if err := resp.Decode(&got); err != nil {
				t.Fatalf("expected decode to succeed, got %v", err)
			}
			if got["name"] != "mix" {
				t.Errorf("expected body round trip, got %v", got)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected 201, got %d", resp.StatusCode)
			}
		})

		t.Run("401 Clears Session And Fires Hook", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(http.MethodGet, "me", http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`)

			session := authedSession()
			session.SetUser(models.User{ID: "u1"})
			hooked := 0
			srv := newTestAPI(t, fake, session, func() { hooked++ })

			resp := srv.Request(t.Context(), "me", http.MethodGet, nil)
			if resp == nil {
				t.Fatal("response must never be nil")
			}
			if !resp.Expired {
				t.Error("expected expired response")
			}
			if !errors.Is(resp.Err(), shared.ErrSessionExpired) {
				t.Errorf("expected ErrSessionExpired, got %v", resp.Err())
			}
			if session.Authenticated() || session.UserID() != "" {
				t.Error("expected session to be cleared")
			}
			if hooked != 1 {
				t.Errorf("expected hook to fire once, got %d", hooked)
			}
		})

		t.Run("Unauthenticated Session Never Reaches The Network", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			hooked := false
			srv := newTestAPI(t, fake, models.NewSession(), func() { hooked = true })

			resp := srv.Request(t.Context(), "me", http.MethodGet, nil)
			if !resp.Expired || !hooked {
				t.Error("expected expired response and hook")
			}
			if len(fake.Calls()) != 0 {
				t.Errorf("expected no requests, got %d", len(fake.Calls()))
			}
		})

		t.Run("Non-Success Statuses Become APIError", func(t *testing.T) {
			tt := []struct {
				name    string
				status  int
				body    string
				message string
			}{
				{name: "not found", status: 404, body: `{"error":{"status":404,"message":"Service not found"}}`, message: "Service not found"},
				{name: "server error", status: 500, body: `oops`, message: "Internal Server Error"},
				{name: "rate limited", status: 429, body: `{"error":{"status":429,"message":"API rate limit exceeded"}}`, message: "API rate limit exceeded"},
				{name: "oauth shape", status: 400, body: `{"error":"invalid_request","error_description":"Bad seeds"}`, message: "Bad seeds"},
			}

			for _, tc := range tt {
				t.Run(tc.name, func(t *testing.T) {
					fake := tu.NewFakeSpotify(t)
					fake.Handle(http.MethodGet, "recommendations", tc.status, tc.body)
					session := authedSession()
					srv := newTestAPI(t, fake, session, nil)

					resp := srv.Request(t.Context(), "recommendations", http.MethodGet, nil)

					var apiErr *APIError
					if !errors.As(resp.Err(), &apiErr) {
						t.Fatalf("expected APIError, got %v", resp.Err())
					}
					if apiErr.Status != tc.status {
						t.Errorf("expected status %d, got %d", tc.status, apiErr.Status)
					}
					if apiErr.Message != tc.message {
						t.Errorf("expected message %q, got %q", tc.message, apiErr.Message)
					}
					if apiErr.Endpoint != "recommendations" {
						t.Errorf("expected endpoint recommendations, got %q", apiErr.Endpoint)
					}
					if !errors.Is(resp.Err(), shared.ErrAPIRequest) {
						t.Error("expected ErrAPIRequest in chain")
					}
					if !session.Authenticated() {
						t.Error("non-401 failures must keep the session")
					}
				})
			}
		})

		t.Run("Transport Failure Has Status Zero", func(t *testing.T) {
			srv := NewAPIService(APIOptions{
				BaseURL:    "http://example.com/v1",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))},
				Session:    authedSession(),
				Logger:     shared.NewLogger(io.Discard),
			})

			resp := srv.Request(t.Context(), "me", http.MethodGet, nil)
			if resp.Failure == nil || resp.Failure.Status != 0 {
				t.Fatalf("expected status 0 failure, got %+v", resp)
			}
			if !strings.Contains(resp.Failure.Message, "connection failed") {
				t.Errorf("expected transport message, got %q", resp.Failure.Message)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			srv := NewAPIService(APIOptions{
				BaseURL: "http://example.com/v1",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil)},
				Session: authedSession(),
				Logger:  shared.NewLogger(io.Discard),
			})

			resp := srv.Request(t.Context(), "me", http.MethodGet, nil)
			if resp.Failure == nil || !strings.Contains(resp.Failure.Message, "failed to read response") {
				t.Errorf("expected read failure, got %+v", resp.Failure)
			}
		})

		t.Run("Unencodable Body", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			srv := newTestAPI(t, fake, authedSession(), nil)

			resp := srv.Request(t.Context(), "echo", http.MethodPost, map[string]any{"bad": make(chan int)})
			if resp.Failure == nil {
				t.Fatal("expected failure for unencodable body")
			}
			if len(fake.Calls()) != 0 {
				t.Error("nothing should be sent")
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(http.MethodGet, "me", http.StatusOK, `{}`)
			srv := newTestAPI(t, fake, authedSession(), nil)

			ctx, cancel := context.WithCancel(t.Context())
			cancel()

			if resp := srv.Request(ctx, "me", http.MethodGet, nil); resp.OK() {
				t.Error("expected failure for canceled context")
			}
		})
	})

	t.Run("Decode", func(t *testing.T) {
		t.Run("Empty Body", func(t *testing.T) {
			resp := &APIResponse{StatusCode: http.StatusCreated}
			var v map[string]any
			if err := resp.Decode(&v); err != nil {
				t.Errorf("expected empty body to decode, got %v", err)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			resp := &APIResponse{StatusCode: http.StatusOK, Body: []byte("not json")}
			var v map[string]any
			if err := resp.Decode(&v); err == nil {
				t.Error("expected decode error")
			}
		})

		t.Run("APIError Is JSON Serializable", func(t *testing.T) {
			data, err := json.Marshal(&APIError{Status: 404, Message: "m", Endpoint: "me"})
			if err != nil || !strings.Contains(string(data), `"status":404`) {
				t.Errorf("unexpected encoding %s %v", data, err)
			}
		})
	})
}
