// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/tasks"
	"github.com/urfave/cli/v3"
)

func rangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short, medium or long (short_term, medium_term, long_term)",
		Value:   "medium_term",
	}
}

func redirectURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "redirect-url",
		Usage: "Finish a login started with 'auth begin' using the address the browser was redirected to",
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("STATIFY_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "client-id",
			Usage:   "Spotify client id (overrides the config file)",
			Sources: cli.EnvVars("SPOTIFY_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and local database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in to Spotify with authorization code + PKCE",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in through the browser and a local callback server",
				Action: r.AuthLogin,
			},
			{
				Name:  "begin",
				Usage: "Start a login that is finished later with 'auth complete'",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-browser", Usage: "Print the authorization URL without opening it"},
				},
				Action: r.AuthBegin,
			},
			{
				Name:  "complete",
				Usage: "Finish a login from the redirect address",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Address the browser was redirected to",
						Required: true,
					},
				},
				Action: r.AuthComplete,
			},
			{
				Name:   "logout",
				Usage:  "Discard the session and any pending login",
				Action: r.AuthLogout,
			},
		},
	}
}

func topCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			rangeFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of items (1-50)",
				Value:   services.DefaultTopLimit,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: txt, csv, markdown or json",
				Value:   "txt",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
			redirectURLFlag(),
		}
	}

	return &cli.Command{
		Name:  "top",
		Usage: "Show your top artists, tracks and albums",
		Commands: []*cli.Command{
			{Name: "artists", Usage: "Top artists", Flags: flags(), Action: r.TopArtists},
			{Name: "tracks", Usage: "Top tracks", Flags: flags(), Action: r.TopTracks},
			{Name: "albums", Usage: "Albums derived from your top tracks", Flags: flags(), Action: r.TopAlbums},
		},
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Show your profile with top artists, tracks and albums",
		Flags: []cli.Flag{
			rangeFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
			redirectURLFlag(),
		},
		Action: r.Dashboard,
	}
}

func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Recommend tracks seeded by your long-term favorites",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
			&cli.BoolFlag{Name: "publish", Usage: "Save the recommendations as a playlist"},
			redirectURLFlag(),
		},
		Action: r.Recommend,
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "publish",
				Usage: "Save tracks as a '" + tasks.PlaylistPrefix + " <date>' playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Tracks to save: recommendations or top-tracks",
						Value:   "recommendations",
					},
					rangeFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of top tracks (1-50)",
						Value:   services.MaxItemsPerRequest,
					},
					redirectURLFlag(),
				},
				Action: r.PlaylistPublish,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive dashboard",
		Flags: []cli.Flag{
			rangeFlag(),
			redirectURLFlag(),
		},
		Action: r.TUI,
	}
}
