// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides the listening statistics views:
//  1. [DashboardView] : Profile header with top artists, tracks and albums for one time range (t cycles the range)
//  2. [RecommendationsView] : Recommended tracks (r), with p saving them as a playlist
//  3. [ExpiredView] : Shown after a 401, l re-runs the login round-trip
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine calls run as [Task] values off the update loop; their progress updates and results flow back as messages.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
