package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/statify/internal/formatter"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/desertthunder/statify/internal/tasks"
)

var errLoginUnavailable = fmt.Errorf("%w: login is not available in this session", shared.ErrLoginFailed)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	DashboardView
	RecommendationsView
	ExpiredView
)

const (
	paneArtists = iota
	paneTracks
	paneAlbums
	paneCount
)

// Options configures a [Model].
type Options struct {
	Engine *tasks.StatsEngine
	Login  LoginFunc
	Range  models.TimeRange
	Logger *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.StatsEngine
	login  LoginFunc
	logger *log.Logger

	timeRange models.TimeRange
	dashboard *tasks.Dashboard
	lists     [paneCount]list.Model
	focus     int

	recommendations *models.RecommendationResult
	recErr          error
	recList         list.Model
	loadingRecs     bool

	publishing bool
	published  *models.PendingPlaylist
	publishErr error

	loggingIn bool
	loginErr  error

	progress tasks.ProgressUpdate
	err      error
	width    int
	height   int
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Range == "" {
		opts.Range = models.MediumTerm
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	m := &Model{
		ctx:       ctx,
		view:      LoadingView,
		engine:    opts.Engine,
		login:     opts.Login,
		logger:    opts.Logger,
		timeRange: opts.Range,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.lists[paneArtists] = newList("Top Artists", nil)
	m.lists[paneTracks] = newList("Top Tracks", nil)
	m.lists[paneAlbums] = newList("Top Albums", nil)
	m.recList = newList("Recommended for you", nil)
	return m
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the TUI by loading the dashboard.
func (m *Model) Init() tea.Cmd {
	return start(m.ctx, loadDashboard(m.engine, m.timeRange))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		res := msg.data.(progressResult)
		m.progress = res.update
		return m, res.job.wait()

	case MsgDashboardLoaded:
		res := msg.data.(dashboardResult)
		if m.expired(res.err) {
			return m, nil
		}
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.setDashboard(res.dashboard)
		if m.view == LoadingView {
			m.view = DashboardView
		}
		return m, nil

	case MsgRecommendationsLoaded:
		res := msg.data.(recommendationsResult)
		m.loadingRecs = false
		if m.expired(res.err) {
			return m, nil
		}
		m.recommendations = res.result
		m.recErr = res.err
		var cards []formatter.Card
		if res.result != nil {
			cards = formatter.RecommendationCards(res.result.Tracks)
		}
		m.recList.SetItems(cardItems(cards))
		return m, nil

	case MsgPublished:
		res := msg.data.(publishResult)
		m.publishing = false
		m.published = res.playlist
		m.publishErr = res.err
		if res.err != nil {
			m.logger.Error("publish failed", "error", res.err)
		}
		m.expired(res.err)
		return m, nil

	case MsgLoggedIn:
		m.loggingIn = false
		if err, _ := msg.data.(error); err != nil {
			m.loginErr = err
			return m, nil
		}
		m.loginErr = nil
		m.view = LoadingView
		return m, start(m.ctx, loadDashboard(m.engine, m.timeRange))
	}
	return m, nil
}

// expired switches to the login prompt when err is a session expiry.
func (m *Model) expired(err error) bool {
	if !errors.Is(err, shared.ErrSessionExpired) {
		return false
	}
	m.logger.Warn("session expired")
	m.view = ExpiredView
	m.publishing = false
	m.loadingRecs = false
	return true
}

func (m *Model) setDashboard(d *tasks.Dashboard) {
	m.dashboard = d
	m.timeRange = d.Range
	m.lists[paneArtists].SetItems(rowItems(formatter.ArtistRows(d.Artists)))
	m.lists[paneTracks].SetItems(rowItems(formatter.TrackRows(d.Tracks)))
	m.lists[paneAlbums].SetItems(rowItems(formatter.AlbumRows(d.Albums)))
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case DashboardView:
		return m.handleDashboardKeys(msg)
	case RecommendationsView:
		return m.handleRecommendationsKeys(msg)
	case ExpiredView:
		return m.handleExpiredKeys(msg)
	}
	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.timeRange):
		m.timeRange = m.timeRange.Next()
		return m, start(m.ctx, loadDashboard(m.engine, m.timeRange))
	case key.Matches(msg, m.keys.recommend):
		m.view = RecommendationsView
		if m.loadingRecs {
			return m, nil
		}
		m.loadingRecs = true
		m.recErr = nil
		m.published, m.publishErr = nil, nil
		return m, start(m.ctx, loadRecommendations(m.engine))
	case key.Matches(msg, m.keys.next):
		m.focus = (m.focus + 1) % paneCount
		return m, nil
	}

	var cmd tea.Cmd
	m.lists[m.focus], cmd = m.lists[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleRecommendationsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = DashboardView
		return m, nil
	case key.Matches(msg, m.keys.publish):
		if !m.canPublish() {
			return m, nil
		}
		m.publishing = true
		m.published, m.publishErr = nil, nil
		return m, start(m.ctx, publish(m.engine, m.recommendations.Tracks))
	}

	var cmd tea.Cmd
	m.recList, cmd = m.recList.Update(msg)
	return m, cmd
}

func (m *Model) handleExpiredKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.login) && !m.loggingIn {
		m.loggingIn = true
		m.loginErr = nil
		return m, start(m.ctx, login(m.login))
	}
	return m, nil
}

// canPublish reports whether the publish action is enabled.
func (m *Model) canPublish() bool {
	return !m.publishing && !m.loadingRecs && m.recommendations != nil && len(m.recommendations.Tracks) > 0
}

func (m *Model) resize() {
	paneWidth := max((m.width-4)/paneCount-2, 10)
	listHeight := max(m.height-10, 5)
	for i := range m.lists {
		m.lists[i].SetSize(paneWidth, listHeight)
	}
	m.recList.SetSize(max(m.width-4, 10), listHeight)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case DashboardView:
		return m.renderDashboard()
	case RecommendationsView:
		return m.renderRecommendations()
	case ExpiredView:
		return m.renderExpired()
	default:
		return ""
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("statify")
	if m.err != nil {
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render(formatter.EmptyState(m.err)), m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}
	msg := m.progress.Message
	if msg == "" {
		msg = "Loading your listening statistics..."
	}
	return fmt.Sprintf("%s\n%s", title, msg)
}

func (m *Model) header() string {
	name := "Unknown listener"
	if m.dashboard != nil && m.dashboard.User != nil {
		name = m.dashboard.User.DisplayName
		if name == "" {
			name = m.dashboard.User.ID
		}
	}
	return styles.title.Render(fmt.Sprintf("statify · %s · %s", name, m.timeRange.Label()))
}

func (m *Model) renderDashboard() string {
	errs := [paneCount]error{}
	if d := m.dashboard; d != nil {
		errs = [paneCount]error{d.ArtistsErr, d.TracksErr, d.AlbumsErr}
	}

	panes := make([]string, paneCount)
	for i := range m.lists {
		style := styles.pane
		if i == m.focus {
			style = styles.focused
		}
		body := m.lists[i].View()
		if len(m.lists[i].Items()) == 0 {
			body = fmt.Sprintf("%s\n\n%s", m.lists[i].Title, styles.warn.Render(formatter.EmptyState(errs[i])))
		}
		panes[i] = style.Render(body)
	}

	var status string
	if m.dashboard != nil && m.dashboard.ProfileErr != nil {
		status = styles.warn.Render(formatter.EmptyState(m.dashboard.ProfileErr)) + "\n"
	}
	if m.err != nil {
		status += styles.err.Render(formatter.EmptyState(m.err)) + "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.timeRange, m.keys.recommend, m.keys.next, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", m.header(), status, lipgloss.JoinHorizontal(lipgloss.Top, panes...), helpView)
}

// publishFailure explains a save that produced no playlist. A missing owner carries the profile error as its cause.
func publishFailure(err error) string {
	switch {
	case errors.Is(err, errNothingToSave):
		return "Cannot save playlist: none of these tracks can be added."
	case !errors.Is(err, errNoPlaylistOwner):
		return formatter.EmptyState(err)
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return "Cannot save playlist: user profile unavailable. " + formatter.EmptyState(apiErr)
	}
	return "Cannot save playlist: user profile unavailable."
}

func (m *Model) renderRecommendations() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Recommendations"))
	b.WriteString("\n")

	switch {
	case m.loadingRecs:
		msg := m.progress.Message
		if msg == "" {
			msg = "Finding tracks you might like..."
		}
		b.WriteString(msg)
	case m.recErr != nil:
		b.WriteString(styles.warn.Render(formatter.EmptyState(m.recErr)))
	default:
		if m.recommendations != nil && m.recommendations.Fallback {
			b.WriteString(styles.help.Render("Not enough listening history, showing popular tracks instead.") + "\n")
		}
		b.WriteString(m.recList.View())
	}

	b.WriteString("\n")
	switch {
	case m.publishing:
		b.WriteString(styles.help.Render("Saving playlist..."))
	case m.publishErr != nil && m.published != nil:
		b.WriteString(styles.warn.Render(fmt.Sprintf("Created %s but could not add tracks: %s", m.published.Name, formatter.EmptyState(m.publishErr))))
	case m.publishErr != nil:
		b.WriteString(styles.err.Render(publishFailure(m.publishErr)))
	case m.published != nil:
		b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Saved %s (%d tracks) %s", m.published.Name, m.published.TrackCount, m.published.URL)))
	}

	bindings := []key.Binding{m.keys.back, m.keys.quit}
	if m.canPublish() {
		bindings = append([]key.Binding{m.keys.publish}, bindings...)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderExpired() string {
	title := styles.err.Render("Your session has expired")
	body := "Log in again to keep browsing your statistics."
	switch {
	case m.loggingIn:
		body = "Waiting for you to approve access in the browser..."
	case m.loginErr != nil:
		body = styles.warn.Render(fmt.Sprintf("Login failed: %v", m.loginErr))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, helpView)
}
