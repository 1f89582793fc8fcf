// Package services talks to the Spotify Web API.
//
// # API Service
//
// [APIService] is the single entry point for requests. It joins endpoints under the versioned base URL, paces calls
// with a token bucket and authorizes through an [oauth2.Transport] whose token source is the injected
// [models.Session].
//
// Request never returns an error value. Outcomes are reported in [APIResponse]:
//   - 2xx : Body holds the payload, Decode unmarshals it
//   - 401 : the session is cleared, the expiry hook fires and Expired is set
//   - anything else : Failure holds an [APIError] with the provider's message
//
// # Spotify Service
//
// [SpotifyService] implements [StatsService] on top of [APIService] and maps the provider's JSON onto
// the records in the models package:
//   - [SpotifyUser] → [models.User]
//   - [SpotifyArtist] → [models.Artist]
//   - [SpotifyTrack] → [models.Track] (album and artist refs included)
//   - [SpotifyPlaylist] → [models.PendingPlaylist]
//
// # Error Handling
//
// Typed endpoints return:
//   - [shared.ErrSessionExpired] : the token was rejected, log in again
//   - [*APIError] : wraps [shared.ErrAPIRequest]
//   - [shared.ErrInvalidArgument] : rejected before any request was sent
package services
