package tui

import "github.com/mmcdole/huddle/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// HydratedMsg signals that every collection finished refreshing
type HydratedMsg struct {
	Err error
}

// ActionDoneMsg signals a mutation finished
type ActionDoneMsg struct {
	Status string
}

// SearchResultsMsg signals that user search results are ready
type SearchResultsMsg struct {
	Query   string
	Results []domain.UserCard
}

// TracksLoadedMsg signals that a playlist's tracks are ready
type TracksLoadedMsg struct {
	PlaylistID int64
	Tracks     []domain.Track
}

// CommunityPostsMsg signals that a community's posts are ready
type CommunityPostsMsg struct {
	CommunityID int64
	Posts       []domain.Post
}

// RadioMsg signals the radio controller settled after a start or stop
type RadioMsg struct{}

// LoggedOutMsg signals the session ended
type LoggedOutMsg struct {
	Err error
}

// TickMsg drives the spinner
type TickMsg struct{}
