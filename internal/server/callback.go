package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/statify/internal/auth"
	"github.com/desertthunder/statify/internal/shared"
)

// LoginCompleter is the part of [auth.Flow] the callback needs.
type LoginCompleter interface {
	CompleteLoginFromRedirect(ctx context.Context, u *url.URL) (auth.Completion, error)
	State() auth.State
}

// CallbackResult contains the outcome of the redirect back from the provider.
type CallbackResult struct {
	Completion auth.Completion
	err        error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler receives the provider redirect on /callback and completes the login.
//
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	flow        LoginCompleter
	resultChan  chan CallbackResult
	landed      chan struct{}
	once        sync.Once
	landOnce    sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler that completes logins through flow.
func NewCallbackHandler(flow LoginCompleter) *CallbackHandler {
	return &CallbackHandler{
		flow:       flow,
		resultChan: make(chan CallbackResult, 1),
		landed:     make(chan struct{}),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the redirect.
//
// A redirect carrying a code or an error is processed once; the browser is then sent to the clean URL with 303
// so reloading or navigating back cannot replay the code. A plain load renders a status page.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("code") && !q.Has("error") {
		h.renderStatus(w)
		return
	}

	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	completion, err := h.flow.CompleteLoginFromRedirect(r.Context(), r.URL)
	if err != nil {
		h.Send(CallbackResult{Completion: completion, err: err})
		renderPage(w, statusFor(err), page{
			Title:   "Authorization Failed",
			Heading: "✗ Authorization Failed",
			Message: err.Error(),
			Failed:  true,
		})
		return
	}

	h.Send(CallbackResult{Completion: completion})
	http.Redirect(w, r, completion.CleanURL, http.StatusSeeOther)
}

func (h *CallbackHandler) renderStatus(w http.ResponseWriter) {
	if h.flow.State() != auth.Authenticated {
		renderPage(w, http.StatusOK, page{
			Title:   "Waiting for Authorization",
			Heading: "Waiting for Spotify",
			Message: "Approve access in the Spotify window to continue.",
		})
		return
	}

	renderPage(w, http.StatusOK, page{
		Title:   "Authorization Successful",
		Heading: "✓ Authorization Successful",
		Message: "You can close this window and return to the terminal.",
	})
	h.landOnce.Do(func() { close(h.landed) })
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// Landed is closed once the browser has loaded the success page.
func (h *CallbackHandler) Landed() <-chan struct{} {
	return h.landed
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrAuthorizationDenied),
		errors.Is(err, shared.ErrStateMismatch),
		errors.Is(err, shared.ErrMissingVerifier):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTokenExchange):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type page struct {
	Title   string
	Heading string
	Message string
	Failed  bool
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{if .Failed}}#E22134{{else}}#1DB954{{end}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Heading}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, p)
}
