package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	// SeedTimeRange is the window personal seeds are drawn from.
	SeedTimeRange = models.LongTerm
	// RecommendationLimit is the number of tracks requested per query.
	RecommendationLimit = 20
	// FallbackGenre seeds the single retry when personal seeds produce nothing.
	FallbackGenre = "pop"
)

// EmptyResultError reports that neither personal nor fallback seeds produced any tracks.
//
// It carries the diagnostics of the last failing or empty request.
type EmptyResultError struct {
	Status   int
	Message  string
	Endpoint string
}

func (e *EmptyResultError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("no recommendations available: %s", e.Message)
	}
	return fmt.Sprintf("no recommendations available: %s (%d on %s)", e.Message, e.Status, e.Endpoint)
}

func (e *EmptyResultError) Unwrap() error { return shared.ErrEmptyResult }

// diagnose records the most recent reason a step produced nothing.
func diagnose(err error, endpoint string) *EmptyResultError {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return &EmptyResultError{Status: apiErr.Status, Message: apiErr.Message, Endpoint: apiErr.Endpoint}
	}
	if err != nil {
		return &EmptyResultError{Message: err.Error(), Endpoint: endpoint}
	}
	return &EmptyResultError{Status: http.StatusOK, Message: "no tracks returned", Endpoint: endpoint}
}

// PersonalSeeds requests the user's single top artist and single top track concurrently.
//
// A failed or empty read leaves its seed kind empty; only session expiry is returned as an error.
// The second return value describes the last failure, if any.
func (e *StatsEngine) PersonalSeeds(ctx context.Context) (models.SeedSet, *EmptyResultError, error) {
	var (
		seeds            models.SeedSet
		artists          []models.Artist
		tracks           []models.Track
		artistErr, trErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		artists, artistErr = e.stats.TopArtists(gctx, SeedTimeRange, 1)
		return fatal(artistErr)
	})
	g.Go(func() error {
		tracks, trErr = e.stats.TopTracks(gctx, SeedTimeRange, 1)
		return fatal(trErr)
	})
	if err := g.Wait(); err != nil {
		return seeds, nil, err
	}

	var diag *EmptyResultError
	if artistErr != nil {
		diag = diagnose(artistErr, "me/top/artists")
	} else if len(artists) > 0 && artists[0].ID != "" {
		seeds.Artists = []string{artists[0].ID}
	}
	if trErr != nil {
		diag = diagnose(trErr, "me/top/tracks")
	} else if len(tracks) > 0 && tracks[0].ID != "" {
		seeds.Tracks = []string{tracks[0].ID}
	}
	return seeds, diag, nil
}

// Recommendations selects seeds from the user's long-term favorites and queries similar tracks.
//
// When personal seeds are unavailable or produce no tracks, it retries exactly once with [FallbackGenre].
// If that is also empty the error is an [*EmptyResultError]. On success the session's current
// recommendation set is replaced.
func (e *StatsEngine) Recommendations(ctx context.Context, progress chan<- ProgressUpdate) (*models.RecommendationResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	seeds, diag, err := e.PersonalSeeds(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, seedsUpdate(seeds))
	if diag != nil {
		e.logger.Warn("seed lookup failed", "status", diag.Status, "message", diag.Message, "endpoint", diag.Endpoint)
	}

	if !seeds.Empty() {
		e.sendProgress(progress, recommendationsUpdate(seeds))
		tracks, err := e.stats.Recommendations(ctx, seeds, RecommendationLimit)
		switch {
		case errors.Is(err, shared.ErrSessionExpired):
			return nil, err
		case err == nil && len(tracks) > 0:
			return e.remember(&models.RecommendationResult{Tracks: tracks, Seeds: seeds}), nil
		default:
			diag = diagnose(err, "recommendations")
			e.logger.Warn("personal recommendations empty", "seeds", seeds.Len(), "error", err)
		}
	}

	fallback := models.SeedSet{Genres: []string{FallbackGenre}}
	e.sendProgress(progress, fallbackUpdate(FallbackGenre))

	tracks, err := e.stats.Recommendations(ctx, fallback, RecommendationLimit)
	switch {
	case errors.Is(err, shared.ErrSessionExpired):
		return nil, err
	case err == nil && len(tracks) > 0:
		return e.remember(&models.RecommendationResult{Tracks: tracks, Seeds: fallback, Fallback: true}), nil
	default:
		diag = diagnose(err, "recommendations")
	}

	e.logger.Error("no recommendations", "status", diag.Status, "message", diag.Message, "endpoint", diag.Endpoint)
	return nil, diag
}

func (e *StatsEngine) remember(res *models.RecommendationResult) *models.RecommendationResult {
	if s := e.stats.Session(); s != nil {
		s.SetRecommendations(res.Tracks)
	}
	return res
}
