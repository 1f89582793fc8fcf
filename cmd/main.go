package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/statify/internal/auth"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "statify",
		Usage:    "Spotify listening statistics, recommendations and playlists",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   r.before,
		Commands: r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		var cfgErr *auth.ConfigurationError
		switch {
		case errors.Is(err, shared.ErrSessionExpired):
			logger.Fatal("your Spotify session has expired, run 'statify auth login' to log in again")
		case errors.As(err, &cfgErr):
			logger.Fatal(cfgErr)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
