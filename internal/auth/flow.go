package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
	"golang.org/x/oauth2"
)

// State is a point in the login lifecycle.
type State int

const (
	Idle State = iota
	AwaitingRedirect
	ExchangingCode
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingRedirect:
		return "awaiting_redirect"
	case ExchangingCode:
		return "exchanging_code"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Navigator sends the user agent to the authorization URL.
type Navigator interface {
	Navigate(ctx context.Context, authURL string) error
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, authURL string) error

func (f NavigatorFunc) Navigate(ctx context.Context, authURL string) error { return f(ctx, authURL) }

// Outcome classifies what a redirect load did.
type Outcome int

const (
	// OutcomeNone means the URL carried no code, token or error: an ordinary load.
	OutcomeNone Outcome = iota
	OutcomeAuthenticated
)

// Completion is the result of [Flow.CompleteLoginFromRedirect].
//
// CleanURL is the redirect URL with the authorization parameters removed. Callers replace the current address
// with it so the code cannot be replayed by navigating back.
type Completion struct {
	Outcome  Outcome
	CleanURL string
	Implicit bool
}

// FlowConfig wires a [Flow].
type FlowConfig struct {
	ClientID       string
	RedirectURI    string
	Scopes         []string
	AuthURL        string
	TokenURL       string
	VerifierLength int

	Store      VerifierStore
	Session    *models.Session
	Navigator  Navigator
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time
}

// FlowConfigFromConfig maps the application config onto a [FlowConfig]; dependencies are left for the caller.
func FlowConfigFromConfig(c *shared.Config) FlowConfig {
	return FlowConfig{
		ClientID:       c.Credentials.Spotify.ClientID,
		RedirectURI:    c.Credentials.Spotify.RedirectURI,
		Scopes:         c.Credentials.Spotify.Scopes,
		AuthURL:        c.API.AuthURL,
		TokenURL:       c.API.TokenURL,
		VerifierLength: c.Auth.VerifierLength,
	}
}

// Flow drives the authorization code + PKCE login.
//
// Only one login transaction exists at a time: [Flow.BeginLogin] overwrites any pending verifier.
type Flow struct {
	cfg    FlowConfig
	oauth  *oauth2.Config
	logger *log.Logger

	mu    sync.Mutex
	state State
}

// NewFlow creates a [Flow] in the [Idle] state.
func NewFlow(cfg FlowConfig) *Flow {
	if cfg.VerifierLength == 0 {
		cfg.VerifierLength = DefaultVerifierLength
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Session == nil {
		cfg.Session = models.NewSession()
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Flow{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logger: cfg.Logger,
		state:  Idle,
	}
}

// State returns the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns the session the flow authenticates.
func (f *Flow) Session() *models.Session { return f.cfg.Session }

func (f *Flow) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != s {
		f.logger.Debug("auth state", "from", f.state, "to", s)
	}
	f.state = s
}

// AuthorizationURL builds the provider URL for a verifier and state.
func (f *Flow) AuthorizationURL(verifier, state string) string {
	return f.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", DeriveChallenge(verifier)),
	)
}

// BeginLogin starts a login transaction and hands the authorization URL to the [Navigator].
//
// A missing or placeholder client id fails with [*ConfigurationError] before anything is stored.
// Other preparation failures wrap [shared.ErrLoginFailed].
func (f *Flow) BeginLogin(ctx context.Context) (string, error) {
	if f.cfg.ClientID == "" || f.cfg.ClientID == shared.PlaceholderClientID {
		return "", &ConfigurationError{ClientID: f.cfg.ClientID}
	}

	verifier, err := GenerateVerifier(f.cfg.VerifierLength)
	if err != nil {
		f.setState(Failed)
		return "", fmt.Errorf("%w: could not generate a code verifier: %w", shared.ErrLoginFailed, err)
	}

	state, err := shared.GenerateState()
	if err != nil {
		f.setState(Failed)
		return "", fmt.Errorf("%w: %w", shared.ErrLoginFailed, err)
	}

	pending := PendingAuth{Verifier: verifier, State: state, CreatedAt: f.cfg.Now()}
	if err := f.cfg.Store.Save(ctx, pending); err != nil {
		f.setState(Failed)
		return "", fmt.Errorf("%w: could not store the code verifier: %w", shared.ErrLoginFailed, err)
	}

	authURL := f.AuthorizationURL(verifier, state)
	f.setState(AwaitingRedirect)

	if f.cfg.Navigator != nil {
		if err := f.cfg.Navigator.Navigate(ctx, authURL); err != nil {
			f.setState(Failed)
			return authURL, fmt.Errorf("%w: could not open the authorization page: %w", shared.ErrLoginFailed, err)
		}
	}

	f.logger.Info("login started", "redirect_uri", f.cfg.RedirectURI)
	return authURL, nil
}

// CompleteLoginFromRedirect inspects a redirect back from the provider.
//
// A code is exchanged for a token, an error parameter fails the login and an access_token fragment
// (the legacy implicit grant) is accepted as is. Anything else is an ordinary load and returns [OutcomeNone].
func (f *Flow) CompleteLoginFromRedirect(ctx context.Context, u *url.URL) (Completion, error) {
	q := u.Query()
	clean := cleanURL(u)

	if reason := q.Get("error"); reason != "" {
		f.setState(Failed)
		return Completion{CleanURL: clean}, &AuthorizationDeniedError{Reason: reason, Description: q.Get("error_description")}
	}

	if code := q.Get("code"); code != "" {
		f.setState(ExchangingCode)

		pending, err := f.cfg.Store.Load(ctx)
		if err != nil {
			f.setState(Failed)
			return Completion{CleanURL: clean}, fmt.Errorf("cannot complete login: %w", err)
		}

		if pending.State != "" && q.Get("state") != pending.State {
			f.setState(Failed)
			return Completion{CleanURL: clean}, shared.ErrStateMismatch
		}

		token, err := f.ExchangeCodeForToken(ctx, code, pending.Verifier)
		if err != nil {
			f.setState(Failed)
			return Completion{CleanURL: clean}, err
		}

		if err := f.cfg.Store.Clear(ctx); err != nil {
			f.logger.Warn("failed to clear pending verifier", "error", err)
		}

		f.cfg.Session.SetToken(token)
		f.setState(Authenticated)
		f.logger.Info("login complete")
		return Completion{Outcome: OutcomeAuthenticated, CleanURL: clean}, nil
	}

	if u.Fragment != "" {
		frag, err := url.ParseQuery(u.Fragment)
		if err == nil && frag.Get("access_token") != "" {
			token := &oauth2.Token{AccessToken: frag.Get("access_token"), TokenType: frag.Get("token_type")}
			f.cfg.Session.SetToken(token)
			f.setState(Authenticated)
			f.logger.Info("login complete", "grant", "implicit")
			return Completion{Outcome: OutcomeAuthenticated, CleanURL: clean, Implicit: true}, nil
		}
	}

	return Completion{Outcome: OutcomeNone, CleanURL: clean}, nil
}

// ExchangeCodeForToken trades an authorization code and its verifier for an access token.
//
// The request is a form POST carrying client_id and code_verifier in place of a client secret.
// Non-success answers become [*TokenExchangeError] with the endpoint's error_description.
func (f *Flow) ExchangeCodeForToken(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	if verifier == "" {
		return nil, shared.ErrMissingVerifier
	}
	if f.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.cfg.HTTPClient)
	}

	token, err := f.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			status := 0
			if rErr.Response != nil {
				status = rErr.Response.StatusCode
			}
			return nil, &TokenExchangeError{Status: status, Code: rErr.ErrorCode, Description: rErr.ErrorDescription}
		}
		return nil, &TokenExchangeError{Description: err.Error()}
	}
	return token, nil
}

// Logout clears the session and any pending login.
func (f *Flow) Logout(ctx context.Context) error {
	f.cfg.Session.Clear()
	f.setState(Idle)
	if err := f.cfg.Store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear pending login: %w", err)
	}
	return nil
}

func cleanURL(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}
