package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/desertthunder/statify/internal/tasks"
	tu "github.com/desertthunder/statify/internal/testing"
	"golang.org/x/oauth2"
)

const (
	artistsBody = `{"items":[{"id":"a1","name":"Band","genres":["indie"]}]}`
	tracksBody  = `{"items":[
		{"id":"t1","name":"One","uri":"spotify:track:t1","artists":[{"name":"Band"}],"album":{"id":"al1","name":"First"}},
		{"id":"t2","name":"Two","uri":"spotify:track:t2","artists":[{"name":"Band"}],"album":{"id":"al1","name":"First"}}
	]}`
	recsBody = `{"tracks":[{"id":"r1","name":"Rec","uri":"spotify:track:r1","artists":[{"name":"Other"}],"external_urls":{"spotify":"https://open.spotify.com/track/r1"}}]}`
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drain runs cmd and feeds its messages back into m until a non-progress message is handled.
func drain(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	for i := 0; cmd != nil && i < 100; i++ {
		msg := cmd()
		_, cmd = m.Update(msg)
		if mm, ok := msg.(Msg); ok && mm.kind != MsgProgressUpdate {
			return cmd
		}
	}
	return cmd
}

func newFakeModel(t *testing.T, login LoginFunc) (*Model, *tu.FakeSpotify, *models.Session) {
	t.Helper()
	fake := tu.NewFakeSpotify(t)
	fake.Handle(http.MethodGet, "me", http.StatusOK, `{"id":"u1","display_name":"Alex"}`)
	fake.Handle(http.MethodGet, "me/top/artists", http.StatusOK, artistsBody)
	fake.Handle(http.MethodGet, "me/top/tracks", http.StatusOK, tracksBody)
	fake.Handle(http.MethodGet, "recommendations", http.StatusOK, recsBody)
	fake.Handle(http.MethodPost, "users/u1/playlists", http.StatusCreated, `{"id":"p1","name":"Statify Mix"}`)
	fake.Handle(http.MethodPost, "playlists/p1/tracks", http.StatusCreated, `{"snapshot_id":"s"}`)

	logger := shared.NewLogger(io.Discard)
	session := models.NewSession()
	session.SetToken(&oauth2.Token{AccessToken: "tok"})
	api := services.NewAPIService(services.APIOptions{
		BaseURL:    fake.BaseURL(),
		HTTPClient: fake.Client(),
		Session:    session,
		Logger:     logger,
	})
	engine := tasks.NewStatsEngine(services.NewSpotifyService(api), logger)

	m := NewModel(t.Context(), Options{Engine: engine, Login: login, Logger: logger})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, fake, session
}

func TestModel(t *testing.T) {
	t.Run("Init Loads Dashboard", func(t *testing.T) {
		m, _, _ := newFakeModel(t, nil)

		if m.view != LoadingView {
			t.Fatalf("expected loading view, got %d", m.view)
		}
		drain(t, m, m.Init())

		if m.view != DashboardView {
			t.Fatalf("expected dashboard view, got %d (err %v)", m.view, m.err)
		}
		if len(m.lists[paneArtists].Items()) != 1 || len(m.lists[paneTracks].Items()) != 2 || len(m.lists[paneAlbums].Items()) != 1 {
			t.Errorf("unexpected list sizes %d %d %d",
				len(m.lists[paneArtists].Items()), len(m.lists[paneTracks].Items()), len(m.lists[paneAlbums].Items()))
		}

		view := m.View()
		for _, want := range []string{"Alex", "Last 6 months", "Top Artists"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view", want)
			}
		}
	})

	t.Run("Time Range Cycles", func(t *testing.T) {
		m, fake, _ := newFakeModel(t, nil)
		drain(t, m, m.Init())

		_, cmd := m.Update(keyPress("t"))
		if cmd == nil {
			t.Fatal("expected reload command")
		}
		drain(t, m, cmd)

		if m.timeRange != models.LongTerm {
			t.Errorf("expected long_term, got %s", m.timeRange)
		}
		calls := fake.CallsTo(http.MethodGet, "me/top/artists")
		if got := calls[len(calls)-1].Query.Get("time_range"); got != "long_term" {
			t.Errorf("expected reload for long_term, got %s", got)
		}
	})

	t.Run("Tab Moves Focus", func(t *testing.T) {
		m, _, _ := newFakeModel(t, nil)
		drain(t, m, m.Init())

		for _, want := range []int{paneTracks, paneAlbums, paneArtists} {
			m.Update(keyPress("tab"))
			if m.focus != want {
				t.Errorf("expected focus %d, got %d", want, m.focus)
			}
		}
	})

	t.Run("Recommendations And Publish", func(t *testing.T) {
		m, fake, _ := newFakeModel(t, nil)
		drain(t, m, m.Init())

		_, cmd := m.Update(keyPress("r"))
		if m.view != RecommendationsView || !m.loadingRecs {
			t.Fatal("expected recommendations view to start loading")
		}
		if m.canPublish() {
			t.Error("publish must be disabled while loading")
		}
		drain(t, m, cmd)

		if len(m.recList.Items()) != 1 || m.recErr != nil {
			t.Fatalf("expected one recommendation, got %d (%v)", len(m.recList.Items()), m.recErr)
		}

		_, cmd = m.Update(keyPress("p"))
		if cmd == nil || !m.publishing {
			t.Fatal("expected publish to start")
		}
		if _, again := m.Update(keyPress("p")); again != nil {
			t.Error("publish must be disabled while in flight")
		}

		drain(t, m, cmd)
		if m.publishing {
			t.Error("expected publish to be re-enabled")
		}
		if m.published == nil || m.published.ID != "p1" {
			t.Errorf("expected published playlist, got %+v (%v)", m.published, m.publishErr)
		}
		if len(fake.CallsTo(http.MethodPost, "playlists/p1/tracks")) != 1 {
			t.Error("expected exactly one append call")
		}
		if !strings.Contains(m.View(), "Saved") {
			t.Error("expected saved confirmation in view")
		}

		m.Update(keyPress("esc"))
		if m.view != DashboardView {
			t.Errorf("expected esc to return to dashboard, got %d", m.view)
		}
	})

	t.Run("Publish Failure Re-Enables", func(t *testing.T) {
		m, _, _ := newFakeModel(t, nil)
		m.view = RecommendationsView
		m.recommendations = &models.RecommendationResult{Tracks: []models.Track{{URI: "spotify:track:x"}}}
		m.publishing = true

		m.Update(publishedMsg(nil, &services.APIError{Status: 500, Message: "boom"}))

		if m.publishing || !m.canPublish() {
			t.Error("expected publish to be re-enabled after failure")
		}
		if !strings.Contains(m.View(), "boom") {
			t.Error("expected failure in view")
		}
	})

	t.Run("Publish Without Profile Explains Failure", func(t *testing.T) {
		m, fake, session := newFakeModel(t, nil)
		fake.Handle(http.MethodGet, "me", http.StatusInternalServerError, `{"error":{"status":500,"message":"boom"}}`)
		drain(t, m, m.Init())

		if session.UserID() != "" {
			t.Fatalf("expected no user id after failed profile, got %q", session.UserID())
		}

		_, cmd := m.Update(keyPress("r"))
		drain(t, m, cmd)
		_, cmd = m.Update(keyPress("p"))
		if cmd == nil {
			t.Fatal("expected publish to start")
		}
		drain(t, m, cmd)

		if m.publishing {
			t.Error("expected publish to be re-enabled")
		}
		if m.published != nil || !errors.Is(m.publishErr, errNoPlaylistOwner) {
			t.Fatalf("expected missing owner error, got %+v (%v)", m.published, m.publishErr)
		}
		if n := len(fake.CallsTo(http.MethodPost, "users/u1/playlists")); n != 0 {
			t.Errorf("expected no playlist to be created, got %d calls", n)
		}

		view := m.View()
		for _, want := range []string{"user profile unavailable", "Spotify returned an error (500): boom"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view", want)
			}
		}
	})

	t.Run("Publish Reads Profile When Session Has No User", func(t *testing.T) {
		m, fake, _ := newFakeModel(t, nil)
		m.view = RecommendationsView
		m.recommendations = &models.RecommendationResult{Tracks: []models.Track{{URI: "spotify:track:x"}}}

		_, cmd := m.Update(keyPress("p"))
		drain(t, m, cmd)

		if m.published == nil || m.published.ID != "p1" {
			t.Fatalf("expected published playlist, got %+v (%v)", m.published, m.publishErr)
		}
		if len(fake.CallsTo(http.MethodGet, "me")) != 1 {
			t.Error("expected the profile to be read once before saving")
		}
	})

	t.Run("Publish With No Addable Tracks Explains Failure", func(t *testing.T) {
		m, _, session := newFakeModel(t, nil)
		session.SetUser(models.User{ID: "u1"})
		m.view = RecommendationsView
		m.recommendations = &models.RecommendationResult{Tracks: []models.Track{{ID: "x"}}}

		_, cmd := m.Update(keyPress("p"))
		drain(t, m, cmd)

		if !errors.Is(m.publishErr, errNothingToSave) {
			t.Fatalf("expected nothing to save error, got %v", m.publishErr)
		}
		if !strings.Contains(m.View(), "none of these tracks can be added") {
			t.Error("expected explanation in view")
		}
	})

	t.Run("Expiry Then Login", func(t *testing.T) {
		logins := 0
		loginFn := func(ctx context.Context) error {
			logins++
			return nil
		}
		m, _, _ := newFakeModel(t, loginFn)
		drain(t, m, m.Init())

		m.Update(recommendationsLoadedMsg(nil, shared.ErrSessionExpired))
		if m.view != ExpiredView {
			t.Fatalf("expected expired view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "session has expired") {
			t.Error("expected expiry message")
		}

		_, cmd := m.Update(keyPress("l"))
		if cmd == nil || !m.loggingIn {
			t.Fatal("expected login to start")
		}
		cmd = drain(t, m, cmd)
		if logins != 1 {
			t.Errorf("expected one login, got %d", logins)
		}
		if m.view != LoadingView {
			t.Errorf("expected reload after login, got %d", m.view)
		}

		drain(t, m, cmd)
		if m.view != DashboardView {
			t.Errorf("expected dashboard after reload, got %d", m.view)
		}
	})

	t.Run("Login Failure Stays Expired", func(t *testing.T) {
		m, _, _ := newFakeModel(t, func(ctx context.Context) error { return errors.New("denied") })
		m.view = ExpiredView

		_, cmd := m.Update(keyPress("l"))
		drain(t, m, cmd)

		if m.view != ExpiredView || m.loginErr == nil {
			t.Errorf("expected to stay expired with error, got view %d err %v", m.view, m.loginErr)
		}
		if !strings.Contains(m.View(), "denied") {
			t.Error("expected login error in view")
		}
	})

	t.Run("Without Login Func", func(t *testing.T) {
		m, _, _ := newFakeModel(t, nil)
		m.view = ExpiredView

		_, cmd := m.Update(keyPress("l"))
		drain(t, m, cmd)
		if !errors.Is(m.loginErr, shared.ErrLoginFailed) {
			t.Errorf("expected ErrLoginFailed, got %v", m.loginErr)
		}
	})

	t.Run("Dashboard Error Without Data", func(t *testing.T) {
		m := NewModel(t.Context(), Options{Engine: tasks.NewStatsEngine(nil, shared.NewLogger(io.Discard)), Logger: shared.NewLogger(io.Discard)})

		drain(t, m, m.Init())
		if !errors.Is(m.err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", m.err)
		}
		if !strings.Contains(m.View(), "Something went wrong") {
			t.Errorf("expected error in loading view, got %s", m.View())
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m, _, _ := newFakeModel(t, nil)
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
