package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDashboardLoaded MsgKind = iota
	MsgRecommendationsLoaded
	MsgPublished
	MsgLoggedIn
	MsgProgressUpdate
)

type dashboardResult struct {
	dashboard *tasks.Dashboard
	err       error
}

type recommendationsResult struct {
	result *models.RecommendationResult
	err    error
}

type publishResult struct {
	playlist *models.PendingPlaylist
	err      error
}

type progressResult struct {
	update tasks.ProgressUpdate
	job    *job
}

// dashboardLoadedMsg is the constructor for [MsgDashboardLoaded]
func dashboardLoadedMsg(d *tasks.Dashboard, err error) Msg {
	return Msg{kind: MsgDashboardLoaded, data: dashboardResult{d, err}}
}

// recommendationsLoadedMsg is the constructor for [MsgRecommendationsLoaded]
func recommendationsLoadedMsg(res *models.RecommendationResult, err error) Msg {
	return Msg{kind: MsgRecommendationsLoaded, data: recommendationsResult{res, err}}
}

// publishedMsg is the constructor for [MsgPublished]
func publishedMsg(pl *models.PendingPlaylist, err error) Msg {
	return Msg{kind: MsgPublished, data: publishResult{pl, err}}
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: err}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate, j *job) Msg {
	return Msg{kind: MsgProgressUpdate, data: progressResult{update, j}}
}

// Task is one engine call run off the update loop. Its returned message is delivered to [Model.Update].
type Task func(ctx context.Context, progress chan<- tasks.ProgressUpdate) Msg

// job connects a running [Task] to the update loop.
type job struct {
	progress chan tasks.ProgressUpdate
	done     chan Msg
}

// start runs t in the background and returns the command that waits for its first message.
func start(ctx context.Context, t Task) tea.Cmd {
	j := &job{progress: make(chan tasks.ProgressUpdate, 16), done: make(chan Msg, 1)}
	go func() {
		j.done <- t(ctx, j.progress)
	}()
	return j.wait()
}

// wait delivers the next progress update or the final message, whichever comes first.
func (j *job) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-j.done:
			return msg
		case update := <-j.progress:
			return progressUpdateMsg(update, j)
		}
	}
}
