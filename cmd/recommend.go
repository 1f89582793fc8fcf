package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/statify/internal/formatter"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/desertthunder/statify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Recommend selects seeds from long-term favorites and prints the recommended tracks.
//
// With --publish the result is saved as a dated playlist.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	if err := r.authenticate(ctx, cmd); err != nil {
		return err
	}

	progress, stop := r.progress()
	res, err := r.engine.Recommendations(ctx, progress)
	stop()
	if err != nil {
		return err
	}

	var pl *models.PendingPlaylist
	if cmd.Bool("publish") {
		if pl, err = r.publish(ctx, res.Tracks); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			*models.RecommendationResult
			Playlist *models.PendingPlaylist `json:"playlist,omitempty"`
		}{res, pl}, true)
	}

	title := "Recommended for you"
	if res.Fallback {
		title = fmt.Sprintf("Popular in %s", tasks.FallbackGenre)
	}
	r.writePlainHeader(title)
	for _, row := range formatter.CardRows(formatter.RecommendationCards(res.Tracks)) {
		r.writePlain("%2d. %s - %s\n", row.Rank, row.Title, row.Subtitle)
		if row.Link != "" {
			r.writePlain("    %s\n", row.Link)
		}
	}

	if pl != nil {
		r.writePublished(pl)
	}
	return nil
}

// PlaylistPublish saves recommendations or top tracks as a dated playlist.
func (r *Runner) PlaylistPublish(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")
	tr, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}
	if source != "recommendations" && source != "top-tracks" {
		return fmt.Errorf("%w: --source must be recommendations or top-tracks, got %q", shared.ErrInvalidFlag, source)
	}
	if err := r.authenticate(ctx, cmd); err != nil {
		return err
	}

	var tracks []models.Track
	switch source {
	case "recommendations":
		progress, stop := r.progress()
		res, err := r.engine.Recommendations(ctx, progress)
		stop()
		if err != nil {
			return err
		}
		tracks = res.Tracks
	case "top-tracks":
		if tracks, err = r.engine.TopTracks(ctx, tr, int(cmd.Int("limit"))); err != nil {
			return err
		}
	}

	pl, err := r.publish(ctx, tracks)
	if err != nil {
		return err
	}
	if pl == nil {
		return r.writePlain("%s\n", formatter.EmptyState(nil))
	}

	r.writePublished(pl)
	return nil
}

// publish resolves the owner from the profile and creates the playlist.
func (r *Runner) publish(ctx context.Context, tracks []models.Track) (*models.PendingPlaylist, error) {
	user, err := r.spotify.Profile(ctx)
	if err != nil {
		return nil, err
	}

	progress, stop := r.progress()
	defer stop()

	pl, err := r.engine.Publish(ctx, user.ID, tracks, progress)
	if err != nil {
		if pl != nil {
			return nil, fmt.Errorf("playlist %s was created but tracks could not be added: %w", pl.ID, err)
		}
		return nil, err
	}
	return pl, nil
}

func (r *Runner) writePublished(pl *models.PendingPlaylist) {
	r.writePlainln("✓ Saved %q with %d tracks", pl.Name, pl.TrackCount)
	if pl.URL != "" {
		r.writePlain("%s\n", pl.URL)
	}
}
