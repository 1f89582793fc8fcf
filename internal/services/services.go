// package services defines the StatsService interface for reading listening statistics and writing playlists
package services

import (
	"context"

	"github.com/desertthunder/statify/internal/models"
)

var _ StatsService = (*SpotifyService)(nil)

// StatsService is the provider surface the aggregation tasks depend on.
type StatsService interface {
	// Profile retrieves the current user and records the session identity.
	Profile(ctx context.Context) (*models.User, error)

	// TopArtists retrieves the user's top artists for a time range (limit 1-50).
	TopArtists(ctx context.Context, r models.TimeRange, limit int) ([]models.Artist, error)

	// TopTracks retrieves the user's top tracks for a time range (limit 1-50).
	TopTracks(ctx context.Context, r models.TimeRange, limit int) ([]models.Track, error)

	// Recommendations queries tracks for a non-empty seed set of at most five seeds.
	Recommendations(ctx context.Context, seeds models.SeedSet, limit int) ([]models.Track, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string) (*models.PendingPlaylist, error)

	// AddTracks appends track URIs to a playlist in one call.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Session returns the authenticated session the service reads and clears.
	Session() *models.Session

	// Name returns the name of the service
	Name() string
}
