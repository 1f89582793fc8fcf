package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/statify/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchArtists
	FetchTracks
	DeriveAlbums
	SelectSeeds
	FetchRecommendations
	FallbackRecommendations
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchArtists:
		return "fetch_artists"
	case FetchTracks:
		return "fetch_tracks"
	case DeriveAlbums:
		return "derive_albums"
	case SelectSeeds:
		return "select_seeds"
	case FetchRecommendations:
		return "fetch_recommendations"
	case FallbackRecommendations:
		return "fallback_recommendations"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func dashboardUpdate(r models.TimeRange) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Fetching profile, top artists and top tracks (%s)...", r.Label()),
	}
}

func albumsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeriveAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Derived %d albums from top tracks", count),
	}
}

func seedsUpdate(seeds models.SeedSet) ProgressUpdate {
	if seeds.Empty() {
		return ProgressUpdate{
			Phase:   SelectSeeds,
			Step:    1,
			Total:   1,
			Message: "No personal seeds available",
		}
	}
	parts := make([]string, 0, 2)
	if len(seeds.Artists) > 0 {
		parts = append(parts, "artist "+strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Tracks) > 0 {
		parts = append(parts, "track "+strings.Join(seeds.Tracks, ","))
	}
	return ProgressUpdate{
		Phase:   SelectSeeds,
		Step:    1,
		Total:   1,
		Message: "Seeding from " + strings.Join(parts, " and "),
		Data:    seeds,
	}
}

func recommendationsUpdate(seeds models.SeedSet) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Fetching recommendations from %d seeds...", seeds.Len()),
	}
}

func fallbackUpdate(genre string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FallbackRecommendations,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("No personal recommendations, falling back to genre %q...", genre),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Creating playlist %s...", name),
	}
}

func addTracksUpdate(pl *models.PendingPlaylist, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Adding %d tracks to %s (ID: %s)...", count, pl.Name, pl.ID),
		Data:    pl,
	}
}
