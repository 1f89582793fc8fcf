package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/statify/internal/auth"
	"github.com/desertthunder/statify/internal/repositories"
	"github.com/desertthunder/statify/internal/server"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 2 * time.Minute

// newFlow builds a login flow over the runner's session.
func (r *Runner) newFlow(store auth.VerifierStore, navigator auth.Navigator) *auth.Flow {
	cfg := auth.FlowConfigFromConfig(r.config)
	cfg.Store = store
	cfg.Session = r.session
	cfg.Navigator = navigator
	cfg.HTTPClient = r.httpClient
	cfg.Logger = shared.WithLogger(r.logger, "component", "auth")
	return auth.NewFlow(cfg)
}

// pendingStore opens the SQLite-backed verifier store used when a login spans two processes.
func (r *Runner) pendingStore() (*repositories.PendingAuthRepository, *sql.DB, error) {
	db, err := repositories.Open(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open pending login store: %w", err)
	}
	return repositories.NewPendingAuthRepository(db, r.config.Auth.PendingTTL), db, nil
}

// interactiveStore returns the configured store for single-process logins.
func (r *Runner) interactiveStore() (auth.VerifierStore, func(), error) {
	if r.config.Auth.Store != "sqlite" {
		return auth.NewMemoryStore(), func() {}, nil
	}
	store, db, err := r.pendingStore()
	if err != nil {
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

// login runs the whole round-trip in this process: bind the callback listener, send the browser to the provider
// and wait for the redirect.
func (r *Runner) login(ctx context.Context) error {
	store, closeStore, err := r.interactiveStore()
	if err != nil {
		return err
	}
	defer closeStore()

	navigator := auth.NavigatorFunc(func(ctx context.Context, authURL string) error {
		r.writePlain("Opening your browser to log in to Spotify...\n")
		return r.navigator.Navigate(ctx, authURL)
	})
	flow := r.newFlow(store, navigator)

	srv, err := server.Listen(r.config.Server.Addr(), server.NewCallbackHandler(flow), r.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrLoginFailed, err)
	}

	authURL, err := flow.BeginLogin(ctx)
	if err != nil {
		if authURL == "" {
			srv.Shutdown()
			return err
		}
		r.logger.Warn("could not open browser", "error", err, "url", authURL)
		r.writePlain("Open this URL in your browser to continue:\n%s\n", authURL)
	}

	timeout := r.config.Auth.Timeout
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}

	r.logger.Info("waiting for authorization", "addr", srv.Addr(), "timeout", timeout)
	if _, err := srv.Wait(ctx, timeout); err != nil {
		return err
	}
	return nil
}

// completeRedirect finishes a login started by "auth begin" from the URL the browser landed on.
func (r *Runner) completeRedirect(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: redirect url: %v", shared.ErrInvalidArgument, err)
	}

	store, db, err := r.pendingStore()
	if err != nil {
		return err
	}
	defer db.Close()

	completion, err := r.newFlow(store, nil).CompleteLoginFromRedirect(ctx, u)
	if err != nil {
		return err
	}
	if completion.Outcome == auth.OutcomeNone {
		return fmt.Errorf("%w: redirect url carries no authorization code", shared.ErrInvalidArgument)
	}
	return nil
}

// authenticate makes sure the session holds a token before a data command runs.
//
// With --redirect-url the split login is completed; otherwise the interactive login runs.
func (r *Runner) authenticate(ctx context.Context, cmd *cli.Command) error {
	if r.session.Authenticated() {
		return nil
	}
	if raw := cmd.String("redirect-url"); raw != "" {
		return r.completeRedirect(ctx, raw)
	}
	return r.login(ctx)
}

// AuthLogin logs in through the local callback server and prints the profile.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.login(ctx); err != nil {
		return err
	}
	return r.printProfile(ctx)
}

// AuthBegin starts a split login: the verifier is persisted and the authorization URL printed.
//
// Finish it with "auth complete --url" or any data command's --redirect-url.
func (r *Runner) AuthBegin(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.pendingStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var navigator auth.Navigator
	if !cmd.Bool("no-browser") {
		navigator = r.navigator
	}

	authURL, err := r.newFlow(store, navigator).BeginLogin(ctx)
	if err != nil {
		if authURL == "" {
			return err
		}
		r.logger.Warn("could not open browser", "error", err)
	}

	r.writePlainHeader("Spotify Login")
	r.writePlain("Open this URL in your browser:\n%s\n", authURL)
	r.writePlainln("After approving, copy the address you are redirected to and run:")
	r.writePlain("  statify auth complete --url '<redirect url>'\n")
	return nil
}

// AuthComplete finishes a split login and prints the profile.
func (r *Runner) AuthComplete(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.String("url")
	if raw == "" {
		return fmt.Errorf("%w: --url", shared.ErrMissingArgument)
	}
	if err := r.completeRedirect(ctx, raw); err != nil {
		return err
	}
	return r.printProfile(ctx)
}

// AuthLogout discards the session and any pending login.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.pendingStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.newFlow(store, nil).Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

func (r *Runner) printProfile(ctx context.Context) error {
	user, err := r.spotify.Profile(ctx)
	if err != nil {
		return err
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	r.writePlain("✓ Logged in as %s\n", name)
	return nil
}
