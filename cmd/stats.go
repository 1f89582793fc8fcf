package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/statify/internal/formatter"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// dashboardJSON is the --json shape of a dashboard; widget errors become their messages.
type dashboardJSON struct {
	Range   models.TimeRange   `json:"range"`
	User    *models.User       `json:"user,omitempty"`
	Artists []models.Artist    `json:"artists"`
	Tracks  []models.Track     `json:"tracks"`
	Albums  []models.AlbumRank `json:"albums"`
	Errors  map[string]string  `json:"errors,omitempty"`
}

func newDashboardJSON(d *tasks.Dashboard) dashboardJSON {
	out := dashboardJSON{Range: d.Range, User: d.User, Artists: d.Artists, Tracks: d.Tracks, Albums: d.Albums}
	for name, err := range map[string]error{
		"profile": d.ProfileErr, "artists": d.ArtistsErr, "tracks": d.TracksErr, "albums": d.AlbumsErr,
	} {
		if err == nil {
			continue
		}
		if out.Errors == nil {
			out.Errors = make(map[string]string)
		}
		out.Errors[name] = err.Error()
	}
	return out
}

// topQuery reads the flags shared by the top subcommands.
func topQuery(cmd *cli.Command) (models.TimeRange, int, error) {
	r, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return "", 0, err
	}
	return r, int(cmd.Int("limit")), nil
}

// exportRows prints rows in the requested format, or writes them to --output.
func (r *Runner) exportRows(cmd *cli.Command, title string, rows []formatter.Row) error {
	format := cmd.String("format")

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, format, title, rows); err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "format", format, "rows", len(rows))
		return r.writePlain("✓ Wrote %d rows to %s\n", len(rows), path)
	}

	data, err := formatter.Export(format, title, rows)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// TopArtists prints the user's top artists.
func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	tr, limit, err := topQuery(cmd)
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd); err != nil {
		return err
	}

	artists, err := r.engine.TopArtists(ctx, tr, limit)
	if err != nil {
		return err
	}
	return r.exportRows(cmd, fmt.Sprintf("Top Artists (%s)", tr.Label()), formatter.ArtistRows(artists))
}

// TopTracks prints the user's top tracks.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	tr, limit, err := topQuery(cmd)
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd); err != nil {
		return err
	}

	tracks, err := r.engine.TopTracks(ctx, tr, limit)
	if err != nil {
		return err
	}
	return r.exportRows(cmd, fmt.Sprintf("Top Tracks (%s)", tr.Label()), formatter.TrackRows(tracks))
}

// TopAlbums prints albums derived from the user's top tracks.
func (r *Runner) TopAlbums(ctx context.Context, cmd *cli.Command) error {
	tr, limit, err := topQuery(cmd)
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd); err != nil {
		return err
	}

	albums, err := r.engine.TopAlbums(ctx, tr, limit)
	if err != nil {
		return err
	}
	return r.exportRows(cmd, fmt.Sprintf("Top Albums (%s)", tr.Label()), formatter.AlbumRows(albums))
}

// Dashboard prints the profile and the three top lists.
//
// Widgets fail independently: a failed list shows its empty state while the others render.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	tr, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd); err != nil {
		return err
	}

	progress, stop := r.progress()
	d, err := r.engine.Dashboard(ctx, tr, progress)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(newDashboardJSON(d), true)
	}

	name := "unknown user"
	if d.User != nil {
		name = d.User.DisplayName
		if name == "" {
			name = d.User.ID
		}
	}

	r.writePlainHeader(fmt.Sprintf("%s · %s", name, tr.Label()))
	if d.ProfileErr != nil {
		r.writePlain("%s\n", formatter.EmptyState(d.ProfileErr))
	}
	r.writeSection("Top Artists", formatter.ArtistRows(d.Artists), d.ArtistsErr)
	r.writeSection("Top Tracks", formatter.TrackRows(d.Tracks), d.TracksErr)
	r.writeSection("Top Albums", formatter.AlbumRows(d.Albums), d.AlbumsErr)
	return nil
}

func (r *Runner) writeSection(title string, rows []formatter.Row, err error) {
	r.writePlainln("%s", title)
	if err != nil || len(rows) == 0 {
		r.writePlain("  %s\n", formatter.EmptyState(err))
		return
	}
	for _, row := range rows {
		if row.Subtitle != "" {
			r.writePlain("  %d. %s - %s\n", row.Rank, row.Title, row.Subtitle)
		} else {
			r.writePlain("  %d. %s\n", row.Rank, row.Title)
		}
	}
}
