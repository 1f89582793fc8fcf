package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
)

type tokenServer struct {
	*httptest.Server
	calls atomic.Int32
	form  url.Values
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		_ = r.ParseForm()
		ts.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

type recordingNavigator struct {
	urls []string
	err  error
}

func (n *recordingNavigator) Navigate(_ context.Context, u string) error {
	n.urls = append(n.urls, u)
	return n.err
}

func newTestFlow(t *testing.T, tokenURL string, nav Navigator) (*Flow, *MemoryStore, *models.Session) {
	t.Helper()
	store := NewMemoryStore()
	session := models.NewSession()
	cfg := FlowConfigFromConfig(shared.DefaultConfig())
	cfg.ClientID = "client-123"
	cfg.TokenURL = tokenURL
	cfg.Store = store
	cfg.Session = session
	cfg.Navigator = nav
	cfg.Logger = shared.NewLogger(io.Discard)
	return NewFlow(cfg), store, session
}

func redirectURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestBeginLogin(t *testing.T) {
	t.Run("rejects placeholder client id", func(t *testing.T) {
		for _, id := range []string{"", shared.PlaceholderClientID} {
			nav := &recordingNavigator{}
			flow, store, _ := newTestFlow(t, "http://unused", nav)
			flow.cfg.ClientID = id

			_, err := flow.BeginLogin(t.Context())

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("client id %q: expected ConfigurationError, got %v", id, err)
			}
			if !errors.Is(err, shared.ErrConfiguration) {
				t.Errorf("expected ConfigurationError to unwrap to ErrConfiguration")
			}
			if len(nav.urls) != 0 {
				t.Error("navigator should not be called")
			}
			if _, err := store.Load(t.Context()); !errors.Is(err, shared.ErrMissingVerifier) {
				t.Error("nothing should be stored")
			}
		}
	})

	t.Run("stores verifier and navigates to authorization url", func(t *testing.T) {
		nav := &recordingNavigator{}
		flow, store, _ := newTestFlow(t, "http://unused", nav)

		authURL, err := flow.BeginLogin(t.Context())
		if err != nil {
			t.Fatalf("BeginLogin: %v", err)
		}
		if len(nav.urls) != 1 || nav.urls[0] != authURL {
			t.Fatalf("expected navigator to receive the url once, got %v", nav.urls)
		}
		if flow.State() != AwaitingRedirect {
			t.Errorf("expected awaiting_redirect, got %s", flow.State())
		}

		pending, err := store.Load(t.Context())
		if err != nil {
			t.Fatalf("expected pending verifier: %v", err)
		}
		if len(pending.Verifier) != DefaultVerifierLength {
			t.Errorf("expected %d character verifier, got %d", DefaultVerifierLength, len(pending.Verifier))
		}

		u := redirectURL(t, authURL)
		q := u.Query()
		checks := map[string]string{
			"client_id":             "client-123",
			"response_type":         "code",
			"redirect_uri":          "http://127.0.0.1:3000/callback",
			"scope":                 "user-top-read user-read-private playlist-modify-private playlist-modify-public",
			"code_challenge_method": "S256",
			"code_challenge":        DeriveChallenge(pending.Verifier),
			"state":                 pending.State,
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("param %s = %q, want %q", k, got, want)
			}
		}
		if u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
			t.Errorf("unexpected authorization endpoint %s", u.String())
		}
	})

	t.Run("a new login generates a new verifier", func(t *testing.T) {
		flow, store, _ := newTestFlow(t, "http://unused", nil)

		_, _ = flow.BeginLogin(t.Context())
		first, _ := store.Load(t.Context())
		_, _ = flow.BeginLogin(t.Context())
		second, _ := store.Load(t.Context())

		if first.Verifier == second.Verifier {
			t.Error("expected the second login to overwrite the verifier")
		}
	})

	t.Run("navigation failure", func(t *testing.T) {
		nav := &recordingNavigator{err: errors.New("no display")}
		flow, _, _ := newTestFlow(t, "http://unused", nav)

		authURL, err := flow.BeginLogin(t.Context())
		if !errors.Is(err, shared.ErrLoginFailed) {
			t.Fatalf("expected ErrLoginFailed, got %v", err)
		}
		if authURL == "" {
			t.Error("expected url to be returned for manual navigation")
		}
		if flow.State() != Failed {
			t.Errorf("expected failed, got %s", flow.State())
		}
	})
}

func TestCompleteLoginFromRedirect(t *testing.T) {
	t.Run("exchanges code for token", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK, `{"access_token":"abc","token_type":"Bearer","expires_in":3600}`)
		flow, store, session := newTestFlow(t, ts.URL, nil)

		_, _ = flow.BeginLogin(t.Context())
		pending, _ := store.Load(t.Context())

		u := redirectURL(t, "http://127.0.0.1:3000/callback?code=c1&state="+pending.State)
		c, err := flow.CompleteLoginFromRedirect(t.Context(), u)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if c.Outcome != OutcomeAuthenticated {
			t.Errorf("expected authenticated outcome")
		}
		if c.CleanURL != "http://127.0.0.1:3000/callback" {
			t.Errorf("expected query to be stripped, got %s", c.CleanURL)
		}
		if flow.State() != Authenticated {
			t.Errorf("expected authenticated, got %s", flow.State())
		}

		tok, err := session.Token()
		if err != nil || tok.AccessToken != "abc" {
			t.Errorf("expected session token abc, got %v %v", tok, err)
		}

		want := map[string]string{
			"grant_type":    "authorization_code",
			"code":          "c1",
			"redirect_uri":  "http://127.0.0.1:3000/callback",
			"client_id":     "client-123",
			"code_verifier": pending.Verifier,
		}
		for k, v := range want {
			if got := ts.form.Get(k); got != v {
				t.Errorf("form %s = %q, want %q", k, got, v)
			}
		}
		if ts.form.Has("client_secret") {
			t.Error("public client must not send a client secret")
		}

		if _, err := store.Load(t.Context()); !errors.Is(err, shared.ErrMissingVerifier) {
			t.Error("expected pending verifier to be cleared after exchange")
		}
	})

	t.Run("missing verifier fails without calling the token endpoint", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK, `{"access_token":"abc","token_type":"Bearer"}`)
		flow, _, session := newTestFlow(t, ts.URL, nil)

		_, err := flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback?code=c1"))
		if !errors.Is(err, shared.ErrMissingVerifier) {
			t.Fatalf("expected ErrMissingVerifier, got %v", err)
		}
		if n := ts.calls.Load(); n != 0 {
			t.Errorf("expected zero token calls, got %d", n)
		}
		if session.Authenticated() {
			t.Error("session should stay unauthenticated")
		}
		if flow.State() != Failed {
			t.Errorf("expected failed, got %s", flow.State())
		}
	})

	t.Run("token endpoint error carries description", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid authorization code"}`)
		flow, store, _ := newTestFlow(t, ts.URL, nil)

		_, _ = flow.BeginLogin(t.Context())
		pending, _ := store.Load(t.Context())

		_, err := flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback?code=bad&state="+pending.State))

		var exErr *TokenExchangeError
		if !errors.As(err, &exErr) {
			t.Fatalf("expected TokenExchangeError, got %v", err)
		}
		if exErr.Description != "Invalid authorization code" {
			t.Errorf("unexpected description %q", exErr.Description)
		}
		if exErr.Status != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", exErr.Status)
		}
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Error("expected ErrTokenExchange in chain")
		}
		if flow.State() != Failed {
			t.Errorf("expected failed, got %s", flow.State())
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK, `{"access_token":"abc"}`)
		flow, _, _ := newTestFlow(t, ts.URL, nil)
		_, _ = flow.BeginLogin(t.Context())

		_, err := flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback?code=c1&state=forged"))
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Fatalf("expected ErrStateMismatch, got %v", err)
		}
		if ts.calls.Load() != 0 {
			t.Error("token endpoint should not be called on state mismatch")
		}
	})

	t.Run("denied consent", func(t *testing.T) {
		flow, _, _ := newTestFlow(t, "http://unused", nil)
		_, _ = flow.BeginLogin(t.Context())

		_, err := flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback?error=access_denied"))

		var denied *AuthorizationDeniedError
		if !errors.As(err, &denied) || denied.Reason != "access_denied" {
			t.Fatalf("expected AuthorizationDeniedError, got %v", err)
		}
		if flow.State() != Failed {
			t.Errorf("expected failed, got %s", flow.State())
		}
	})

	t.Run("implicit grant fragment", func(t *testing.T) {
		flow, _, session := newTestFlow(t, "http://unused", nil)

		c, err := flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback#access_token=frag&token_type=Bearer&expires_in=3600"))
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if c.Outcome != OutcomeAuthenticated || !c.Implicit {
			t.Errorf("expected implicit authenticated outcome, got %+v", c)
		}
		if tok, _ := session.Token(); tok == nil || tok.AccessToken != "frag" {
			t.Errorf("expected fragment token in session")
		}
	})

	t.Run("ordinary load is a no-op", func(t *testing.T) {
		flow, _, session := newTestFlow(t, "http://unused", nil)

		c, err := flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback"))
		if err != nil || c.Outcome != OutcomeNone {
			t.Errorf("expected no-op, got %+v %v", c, err)
		}
		if session.Authenticated() || flow.State() != Idle {
			t.Error("no-op load must not change state")
		}
	})

	t.Run("failed login can be restarted", func(t *testing.T) {
		flow, _, _ := newTestFlow(t, "http://unused", nil)
		_, _ = flow.CompleteLoginFromRedirect(t.Context(), redirectURL(t, "http://127.0.0.1:3000/callback?code=c1"))
		if flow.State() != Failed {
			t.Fatalf("expected failed, got %s", flow.State())
		}

		if _, err := flow.BeginLogin(t.Context()); err != nil {
			t.Fatalf("BeginLogin after failure: %v", err)
		}
		if flow.State() != AwaitingRedirect {
			t.Errorf("expected awaiting_redirect, got %s", flow.State())
		}
	})
}

func TestLogout(t *testing.T) {
	flow, store, session := newTestFlow(t, "http://unused", nil)
	_, _ = flow.BeginLogin(t.Context())
	session.SetUser(models.User{ID: "u1"})

	if err := flow.Logout(t.Context()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if session.UserID() != "" {
		t.Error("expected session to be cleared")
	}
	if _, err := store.Load(t.Context()); !errors.Is(err, shared.ErrMissingVerifier) {
		t.Error("expected pending login to be cleared")
	}
	if flow.State() != Idle {
		t.Errorf("expected idle, got %s", flow.State())
	}
}
