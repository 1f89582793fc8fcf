// Package tasks derives listening statistics views and publishes playlists with real-time progress reporting.
//
// # Core Operations
//
// [StatsEngine] works over a [services.StatsService]:
//
//  1. [StatsEngine.Dashboard] : Profile, top artists and top tracks fetched concurrently
//     - Each widget carries its own error
//     - Top albums are derived from the top 50 tracks with [DeriveTopAlbums]
//
//  2. [StatsEngine.Recommendations] : Seed selection with a single fallback
//     - One long-term top artist and one top track as seeds
//     - Exactly one retry seeded by [FallbackGenre] when the first query is empty or fails
//     - [*EmptyResultError] when both come back empty
//
//  3. [StatsEngine.Publish] : Dated playlist creation followed by one append call
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Session Expiry
//
// A 401 from any request surfaces as [shared.ErrSessionExpired] and aborts the operation;
// every other failure is reported per widget or as diagnostics.
package tasks
