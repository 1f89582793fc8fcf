package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	// DashboardArtists is the number of artists on the dashboard.
	DashboardArtists = 5
	// DashboardTracks is the number of tracks shown on the dashboard.
	DashboardTracks = 5
	// DashboardAlbums is the number of derived albums on the dashboard.
	DashboardAlbums = 5
	// AlbumSourceTracks is how many top tracks albums are derived from.
	AlbumSourceTracks = services.MaxItemsPerRequest
)

// Dashboard is the overview for one time range.
//
// Each widget carries its own error so a failing endpoint leaves the others intact.
type Dashboard struct {
	Range      models.TimeRange
	User       *models.User
	ProfileErr error
	Artists    []models.Artist
	ArtistsErr error
	Tracks     []models.Track
	TracksErr  error
	Albums     []models.AlbumRank
	AlbumsErr  error
}

// StatsEngine defines the read and publish operations behind the dashboard, recommendations and playlist views.
type StatsEngine struct {
	stats  services.StatsService
	logger *log.Logger
	now    func() time.Time
}

// NewStatsEngine creates a new StatsEngine over stats.
func NewStatsEngine(stats services.StatsService, logger *log.Logger) *StatsEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &StatsEngine{stats: stats, logger: logger, now: time.Now}
}

// Service returns the provider the engine reads from.
func (e *StatsEngine) Service() services.StatsService {
	return e.stats
}

// sendProgress sends a progress update through the channel without blocking.
func (e *StatsEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *StatsEngine) ready() error {
	if e.stats == nil {
		return fmt.Errorf("%w: statistics service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// Dashboard fetches the profile, top artists and top tracks concurrently and derives top albums.
//
// Only [shared.ErrSessionExpired] fails the call as a whole.
func (e *StatsEngine) Dashboard(ctx context.Context, r models.TimeRange, progress chan<- ProgressUpdate) (*Dashboard, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if r == "" {
		r = models.MediumTerm
	}

	d := &Dashboard{Range: r}
	var allTracks []models.Track

	e.sendProgress(progress, dashboardUpdate(r))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.User, d.ProfileErr = e.stats.Profile(gctx)
		return fatal(d.ProfileErr)
	})
	g.Go(func() error {
		d.Artists, d.ArtistsErr = e.stats.TopArtists(gctx, r, DashboardArtists)
		return fatal(d.ArtistsErr)
	})
	g.Go(func() error {
		allTracks, d.TracksErr = e.stats.TopTracks(gctx, r, AlbumSourceTracks)
		return fatal(d.TracksErr)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.TracksErr != nil {
		d.AlbumsErr = d.TracksErr
	} else {
		d.Tracks = allTracks[:min(DashboardTracks, len(allTracks))]
		d.Albums = DeriveTopAlbums(allTracks, DashboardAlbums)
		e.sendProgress(progress, albumsUpdate(len(d.Albums)))
	}

	for _, w := range []struct {
		name string
		err  error
	}{{"profile", d.ProfileErr}, {"artists", d.ArtistsErr}, {"tracks", d.TracksErr}} {
		if w.err != nil {
			e.logger.Warn("dashboard widget failed", "widget", w.name, "error", w.err)
		}
	}
	return d, nil
}

// TopArtists returns the user's top artists for r.
func (e *StatsEngine) TopArtists(ctx context.Context, r models.TimeRange, limit int) ([]models.Artist, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.stats.TopArtists(ctx, r, limit)
}

// TopTracks returns the user's top tracks for r.
func (e *StatsEngine) TopTracks(ctx context.Context, r models.TimeRange, limit int) ([]models.Track, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.stats.TopTracks(ctx, r, limit)
}

// TopAlbums derives up to limit albums from the user's top tracks for r.
func (e *StatsEngine) TopAlbums(ctx context.Context, r models.TimeRange, limit int) ([]models.AlbumRank, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	tracks, err := e.stats.TopTracks(ctx, r, AlbumSourceTracks)
	if err != nil {
		return nil, err
	}
	return DeriveTopAlbums(tracks, limit), nil
}

// fatal keeps only errors that should cancel sibling requests.
func fatal(err error) error {
	if errors.Is(err, shared.ErrSessionExpired) {
		return err
	}
	return nil
}
