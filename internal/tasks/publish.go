package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
)

// PlaylistPrefix starts the name of every published playlist.
const PlaylistPrefix = "Statify Mix"

const playlistDescription = "Generated by statify from your listening statistics."

// PlaylistName names a playlist published at t, e.g. "Statify Mix 2025-03-01".
func PlaylistName(t time.Time) string {
	return fmt.Sprintf("%s %s", PlaylistPrefix, t.Format(time.DateOnly))
}

// Publish creates a dated playlist for owner and appends every track in order with a single call.
//
// An empty owner falls back to the session identity. With no tracks or no owner, Publish does nothing
// and returns (nil, nil). When appending fails the created playlist is returned alongside the error.
func (e *StatsEngine) Publish(ctx context.Context, owner string, tracks []models.Track, progress chan<- ProgressUpdate) (*models.PendingPlaylist, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if owner == "" {
		if s := e.stats.Session(); s != nil {
			owner = s.UserID()
		}
	}

	uris := models.TrackURIs(tracks)
	if owner == "" || len(uris) == 0 {
		e.logger.Debug("nothing to publish", "owner", owner, "tracks", len(uris))
		return nil, nil
	}
	if len(uris) > services.MaxTracksPerAdd {
		e.logger.Warn("truncating playlist", "tracks", len(uris), "max", services.MaxTracksPerAdd)
		uris = uris[:services.MaxTracksPerAdd]
	}

	name := PlaylistName(e.now())
	e.sendProgress(progress, createPlaylistUpdate(name))

	pl, err := e.stats.CreatePlaylist(ctx, owner, name, playlistDescription)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, addTracksUpdate(pl, len(uris)))
	if err := e.stats.AddTracks(ctx, pl.ID, uris); err != nil {
		return pl, err
	}

	pl.TrackCount = len(uris)
	e.logger.Info("playlist published", "id", pl.ID, "name", pl.Name, "tracks", pl.TrackCount)
	return pl, nil
}
