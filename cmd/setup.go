package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/statify/internal/repositories"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example config to --config.
//
// An existing file is left alone unless --force is given.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: config file already exists at %s (use --force to overwrite)", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Register an app at https://developer.spotify.com/dashboard\n")
	r.writePlain("2. Add %s to its redirect URIs\n", r.config.Credentials.Spotify.RedirectURI)
	r.writePlain("3. Set credentials.spotify.client_id in %s (or SPOTIFY_CLIENT_ID)\n", path)
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := repositories.Open(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}
