package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/desertthunder/statify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive statistics dashboard.
//
// Without a session the dashboard opens on the expired view, where "l" runs the login.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	tr, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}

	if raw := cmd.String("redirect-url"); raw != "" {
		if err := r.completeRedirect(ctx, raw); err != nil {
			return err
		}
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)
	r.output = io.Discard

	if err := ui.Run(ctx, ui.Options{
		Engine: r.engine,
		Login:  r.login,
		Range:  tr,
		Logger: fileLogger,
	}); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
