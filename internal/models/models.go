package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/statify/internal/shared"
)

// MaxSeeds is the provider's limit on seeds per recommendation query.
const MaxSeeds = 5

// TimeRange buckets listening history into recent, medium and long windows.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists every [TimeRange] in display order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// ParseTimeRange accepts the provider's enum names as well as short aliases (short, medium, long).
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "short_term":
		return ShortTerm, nil
	case "medium", "medium_term", "":
		return MediumTerm, nil
	case "long", "long_term":
		return LongTerm, nil
	default:
		return "", fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, s)
	}
}

// Next cycles short → medium → long → short.
func (r TimeRange) Next() TimeRange {
	switch r {
	case ShortTerm:
		return MediumTerm
	case MediumTerm:
		return LongTerm
	default:
		return ShortTerm
	}
}

// Label returns a human readable name.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Last 4 weeks"
	case MediumTerm:
		return "Last 6 months"
	case LongTerm:
		return "All time"
	default:
		return string(r)
	}
}

// Image is one size tier of an artwork. Providers order images largest first.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ArtistRef is the abbreviated artist embedded in tracks and albums.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist is a full artist object as returned by the top artists endpoint.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Images []Image  `json:"images"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// Album groups tracks; identity is the ID, never the value.
type Album struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
	Images  []Image     `json:"images"`
}

// Key returns the album identity used for de-duplication.
//
// Local files have no album id, so name and artists stand in.
func (a Album) Key() string {
	if a.ID != "" {
		return a.ID
	}
	return "local:" + strings.ToLower(a.Name) + "|" + strings.ToLower(ArtistNames(a.Artists))
}

// Track is a playable item.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	Album       Album       `json:"album"`
	ExternalURL string      `json:"external_url"`
	URI         string      `json:"uri"`
}

// ArtistNames joins artist names the way the provider's own UI does.
func ArtistNames(artists []ArtistRef) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// User is the current user's profile.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Images      []Image `json:"images"`
}

// SeedSet parameterizes a recommendation query.
type SeedSet struct {
	Artists []string `json:"artists,omitempty"`
	Tracks  []string `json:"tracks,omitempty"`
	Genres  []string `json:"genres,omitempty"`
}

// Len returns the total number of seeds.
func (s SeedSet) Len() int {
	return len(s.Artists) + len(s.Tracks) + len(s.Genres)
}

// Empty reports whether the set has no seeds at all.
func (s SeedSet) Empty() bool { return s.Len() == 0 }

// Validate enforces the provider's 0–5 seed constraint.
func (s SeedSet) Validate() error {
	if s.Len() > MaxSeeds {
		return fmt.Errorf("%w: %d seeds, max %d", shared.ErrTooManySeeds, s.Len(), MaxSeeds)
	}
	return nil
}

// RecommendationResult is an ordered, possibly empty, list of tracks plus the seeds that produced it.
type RecommendationResult struct {
	Tracks   []Track `json:"tracks"`
	Seeds    SeedSet `json:"seeds"`
	Fallback bool    `json:"fallback"`
}

// AlbumRank is one entry of the derived top albums view.
type AlbumRank struct {
	Album       Album `json:"album"`
	Occurrences int   `json:"occurrences"`
}

// PendingPlaylist is a playlist created once and appended to exactly once.
type PendingPlaylist struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	TrackCount  int    `json:"track_count"`
}

// TrackURIs returns the URIs of tracks in order, skipping tracks without one.
func TrackURIs(tracks []Track) []string {
	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.URI != "" {
			uris = append(uris, t.URI)
		}
	}
	return uris
}
