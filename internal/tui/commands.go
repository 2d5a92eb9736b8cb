package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/huddle/internal/app"
	"github.com/mmcdole/huddle/internal/radio"
)

// Command factories for async operations

const (
	actionTimeout  = 30 * time.Second
	hydrateTimeout = 60 * time.Second
)

// HydrateCmd refreshes every collection
func HydrateCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
		defer cancel()

		return HydratedMsg{Err: a.Hydrate(ctx)}
	}
}

// ActionCmd runs a mutation and reports status on success
func ActionCmd(label string, status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			return ErrMsg{Err: err, Context: label}
		}
		return ActionDoneMsg{Status: status}
	}
}

// SearchUsersCmd looks users up
func SearchUsersCmd(a *app.App, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		results, err := a.Friends.Search(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching users"}
		}
		return SearchResultsMsg{Query: query, Results: results}
	}
}

// LoadTracksCmd loads the tracks of a playlist
func LoadTracksCmd(a *app.App, playlistID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		tracks, err := a.Playlists.Tracks(ctx, playlistID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading tracks"}
		}
		return TracksLoadedMsg{PlaylistID: playlistID, Tracks: tracks}
	}
}

// LoadCommunityPostsCmd loads the posts of a community
func LoadCommunityPostsCmd(a *app.App, communityID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		posts, err := a.Communities.Posts(ctx, communityID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading community posts"}
		}
		return CommunityPostsMsg{CommunityID: communityID, Posts: posts}
	}
}

// SelectStationCmd selects a station; the call returns once the player answered
func SelectStationCmd(a *app.App, stationID int64) tea.Cmd {
	return func() tea.Msg {
		return radioResult(a.SelectStation(context.Background(), stationID))
	}
}

// ToggleRadioCmd stops or resumes playback
func ToggleRadioCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return radioResult(a.Radio.Toggle(context.Background()))
	}
}

// radioResult maps a controller outcome to a message. A start overtaken by
// a newer selection is not a failure.
func radioResult(err error) tea.Msg {
	if err != nil && !errors.Is(err, radio.ErrSuperseded) {
		return ErrMsg{Err: err, Context: "radio"}
	}
	return RadioMsg{}
}

// LogoutCmd ends the session
func LogoutCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return LoggedOutMsg{Err: a.Logout()}
	}
}

// TickCmd schedules the next spinner frame
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
