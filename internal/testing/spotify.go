package testing

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Call is one request received by [FakeSpotify].
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeSpotify is an httptest server standing in for the Web API (under /v1) and the token endpoint (/api/token).
//
// Routes are registered relative to the API root ("me", "me/top/artists"), the way the API service
// receives them. Unregistered routes answer 404 with the provider's error shape.
type FakeSpotify struct {
	*httptest.Server

	mu     sync.Mutex
	calls  []Call
	routes map[string]http.HandlerFunc
}

// NewFakeSpotify starts a fake that is closed when the test ends.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()
	f := &FakeSpotify{routes: make(map[string]http.HandlerFunc)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// BaseURL is the API root to configure clients with.
func (f *FakeSpotify) BaseURL() string {
	return f.URL + "/v1"
}

// TokenURL is the token endpoint to configure the auth flow with.
func (f *FakeSpotify) TokenURL() string {
	return f.URL + "/api/token"
}

// HandleFunc registers h for method and path.
func (f *FakeSpotify) HandleFunc(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+strings.TrimPrefix(path, "/")] = h
}

// Handle registers a canned JSON answer.
func (f *FakeSpotify) Handle(method, path string, status int, body string) {
	f.HandleFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// HandleToken answers the token endpoint with access token tok.
func (f *FakeSpotify) HandleToken(tok string) {
	f.Handle(http.MethodPost, "api/token", http.StatusOK,
		fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":3600}`, tok))
}

// Calls returns every request received so far.
func (f *FakeSpotify) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the requests received for method and path.
func (f *FakeSpotify) CallsTo(method, path string) []Call {
	path = strings.TrimPrefix(path, "/")
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeSpotify) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/")
	path = strings.TrimPrefix(path, "v1/")

	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"status":404,"message":"Service not found"}}`)
		return
	}

	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}
