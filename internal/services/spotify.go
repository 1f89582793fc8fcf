// Spotify Web API endpoints used by the listening statistics views.
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/shared"
)

// MaxItemsPerRequest is the page size ceiling of the top items endpoints.
const MaxItemsPerRequest = 50

// DefaultTopLimit is used when a top items request asks for no items.
const DefaultTopLimit = 20

// MaxTracksPerAdd is the provider's limit on URIs per add-items call.
const MaxTracksPerAdd = 100

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Images  []SpotifyImage  `json:"images"`
	URI     string          `json:"uri"`
}

type owner struct {
	ID string `json:"id"`
}

// SpotifyPlaylist represents a created playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Owner        owner        `json:"owner"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type topArtistsPage struct {
	Items []SpotifyArtist `json:"items"`
}

type topTracksPage struct {
	Items []SpotifyTrack `json:"items"`
}

type recommendationsResponse struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

// SpotifyService maps Web API endpoints onto domain records.
//
// Errors are [*APIError] or [shared.ErrSessionExpired].
type SpotifyService struct {
	api *APIService
}

// NewSpotifyService creates a service over api.
func NewSpotifyService(api *APIService) *SpotifyService {
	return &SpotifyService{api: api}
}

// Name returns the name of the service.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Session returns the session requests are authorized with.
func (s *SpotifyService) Session() *models.Session {
	return s.api.Session()
}

// Profile retrieves the current user and records it as the session identity.
func (s *SpotifyService) Profile(ctx context.Context) (*models.User, error) {
	var user SpotifyUser
	if err := s.api.Request(ctx, "me", http.MethodGet, nil).Decode(&user); err != nil {
		return nil, err
	}

	u := models.User{ID: user.ID, DisplayName: user.DisplayName, Images: mapImages(user.Images)}
	s.api.Session().SetUser(u)
	return &u, nil
}

// TopArtists retrieves the user's most listened artists for the time range.
func (s *SpotifyService) TopArtists(ctx context.Context, r models.TimeRange, limit int) ([]models.Artist, error) {
	var page topArtistsPage
	if err := s.api.Request(ctx, topEndpoint("artists", r, limit), http.MethodGet, nil).Decode(&page); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(page.Items))
	for _, a := range page.Items {
		artists = append(artists, mapArtist(a))
	}
	return artists, nil
}

// TopTracks retrieves the user's most listened tracks for the time range.
func (s *SpotifyService) TopTracks(ctx context.Context, r models.TimeRange, limit int) ([]models.Track, error) {
	var page topTracksPage
	if err := s.api.Request(ctx, topEndpoint("tracks", r, limit), http.MethodGet, nil).Decode(&page); err != nil {
		return nil, err
	}
	return mapTracks(page.Items), nil
}

// Recommendations queries tracks similar to the seeds. An empty seed set is rejected before any request is made.
func (s *SpotifyService) Recommendations(ctx context.Context, seeds models.SeedSet, limit int) ([]models.Track, error) {
	if seeds.Empty() {
		return nil, fmt.Errorf("%w: recommendations need at least one seed", shared.ErrInvalidArgument)
	}
	if err := seeds.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(clampLimit(limit, 20, 100)))
	if len(seeds.Artists) > 0 {
		q.Set("seed_artists", strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Tracks) > 0 {
		q.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	}
	if len(seeds.Genres) > 0 {
		q.Set("seed_genres", strings.Join(seeds.Genres, ","))
	}

	var resp recommendationsResponse
	if err := s.api.Request(ctx, "recommendations?"+q.Encode(), http.MethodGet, nil).Decode(&resp); err != nil {
		return nil, err
	}
	return mapTracks(resp.Tracks), nil
}

// CreatePlaylist creates an empty playlist owned by userID with the provider's default visibility.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string) (*models.PendingPlaylist, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	body := map[string]string{"name": name, "description": description}
	endpoint := fmt.Sprintf("users/%s/playlists", url.PathEscape(userID))

	var p SpotifyPlaylist
	if err := s.api.Request(ctx, endpoint, http.MethodPost, body).Decode(&p); err != nil {
		return nil, err
	}

	return &models.PendingPlaylist{
		ID:          p.ID,
		OwnerUserID: userID,
		Name:        p.Name,
		URL:         p.ExternalURLs.Spotify,
	}, nil
}

// AddTracks appends uris, in order, to the playlist in a single request.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(uris) > MaxTracksPerAdd {
		return fmt.Errorf("%w: %d tracks exceeds %d per request", shared.ErrInvalidArgument, len(uris), MaxTracksPerAdd)
	}

	endpoint := fmt.Sprintf("playlists/%s/tracks", url.PathEscape(playlistID))
	return s.api.Request(ctx, endpoint, http.MethodPost, map[string][]string{"uris": uris}).Err()
}

func topEndpoint(kind string, r models.TimeRange, limit int) string {
	if r == "" {
		r = models.MediumTerm
	}
	q := url.Values{}
	q.Set("time_range", string(r))
	q.Set("limit", strconv.Itoa(clampLimit(limit, DefaultTopLimit, MaxItemsPerRequest)))
	return "me/top/" + kind + "?" + q.Encode()
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func mapImages(images []SpotifyImage) []models.Image {
	out := make([]models.Image, 0, len(images))
	for _, i := range images {
		out = append(out, models.Image{URL: i.URL, Height: i.Height, Width: i.Width})
	}
	return out
}

func mapArtistRefs(artists []SpotifyArtist) []models.ArtistRef {
	out := make([]models.ArtistRef, 0, len(artists))
	for _, a := range artists {
		out = append(out, models.ArtistRef{ID: a.ID, Name: a.Name})
	}
	return out
}

func mapArtist(a SpotifyArtist) models.Artist {
	return models.Artist{ID: a.ID, Name: a.Name, Images: mapImages(a.Images), Genres: a.Genres, URI: a.URI}
}

func mapTracks(items []SpotifyTrack) []models.Track {
	tracks := make([]models.Track, 0, len(items))
	for _, t := range items {
		tracks = append(tracks, models.Track{
			ID:      t.ID,
			Name:    t.Name,
			Artists: mapArtistRefs(t.Artists),
			Album: models.Album{
				ID:      t.Album.ID,
				Name:    t.Album.Name,
				Artists: mapArtistRefs(t.Album.Artists),
				Images:  mapImages(t.Album.Images),
			},
			ExternalURL: t.ExternalURLs.Spotify,
			URI:         t.URI,
		})
	}
	return tracks
}
