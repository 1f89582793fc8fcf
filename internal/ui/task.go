package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/tasks"
)

// LoginFunc re-runs the authorization round-trip and leaves the session authenticated on success.
type LoginFunc func(ctx context.Context) error

func loadDashboard(engine *tasks.StatsEngine, r models.TimeRange) Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) Msg {
		d, err := engine.Dashboard(ctx, r, progress)
		return dashboardLoadedMsg(d, err)
	}
}

func loadRecommendations(engine *tasks.StatsEngine) Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) Msg {
		res, err := engine.Recommendations(ctx, progress)
		return recommendationsLoadedMsg(res, err)
	}
}

var (
	errNoPlaylistOwner = errors.New("cannot save playlist: user profile unavailable")
	errNothingToSave   = errors.New("cannot save playlist: none of these tracks can be added")
)

// playlistOwner returns the session's user id, reading the profile again when the dashboard could not.
func playlistOwner(ctx context.Context, engine *tasks.StatsEngine) (string, error) {
	stats := engine.Service()
	if stats == nil {
		return "", nil
	}
	if s := stats.Session(); s != nil && s.UserID() != "" {
		return s.UserID(), nil
	}

	user, err := stats.Profile(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errNoPlaylistOwner, err)
	}
	if user == nil || user.ID == "" {
		return "", errNoPlaylistOwner
	}
	return user.ID, nil
}

func publish(engine *tasks.StatsEngine, tracks []models.Track) Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) Msg {
		owner, err := playlistOwner(ctx, engine)
		if err != nil {
			return publishedMsg(nil, err)
		}

		pl, err := engine.Publish(ctx, owner, tracks, progress)
		if pl == nil && err == nil {
			err = errNothingToSave
		}
		return publishedMsg(pl, err)
	}
}

func login(fn LoginFunc) Task {
	return func(ctx context.Context, _ chan<- tasks.ProgressUpdate) Msg {
		if fn == nil {
			return loggedInMsg(errLoginUnavailable)
		}
		return loggedInMsg(fn(ctx))
	}
}
