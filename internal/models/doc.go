// Package models defines the domain records shared by the auth flow, the API client and the aggregation tasks.
//
// The records mirror the provider's objects after mapping:
//   - [Track], [Album], [Artist], [ArtistRef], [Image] : listening data
//   - [User] : the profile used to derive the session identity
//   - [SeedSet], [RecommendationResult] : recommendation inputs and outputs
//   - [AlbumRank] : the derived top albums view
//   - [PendingPlaylist] : a playlist created by the publisher
//
// [Session] is the explicit, injected replacement for global mutable state: it holds the bearer token, the user identity and
// the current recommendation set, and implements [golang.org/x/oauth2.TokenSource] so HTTP transports can read the token
// from it directly.
package models
