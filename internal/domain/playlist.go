package domain

import (
	"context"
	"fmt"
	"time"
)

// Playlist is a user's music playlist
type Playlist struct {
	ID          int64
	Name        string
	Description string
	CoverURL    string
	IsPublic    bool
	CreatedAt   time.Time
	TrackCount  int
}

// Track is an entry in a playlist
type Track struct {
	ID       int64
	Title    string
	Artist   string
	URL      string
	Duration time.Duration
	Position int
}

// FormattedDuration returns the duration as m:ss
func (t Track) FormattedDuration() string {
	total := int(t.Duration.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// PlaylistClient talks to the playlist resources of the posts endpoint
type PlaylistClient interface {
	GetPlaylists(ctx context.Context, userID int64) ([]Playlist, error)
	GetTracks(ctx context.Context, playlistID int64) ([]Track, error)
	CreatePlaylist(ctx context.Context, actorID int64, name, description string, public bool) error
	AddTrack(ctx context.Context, playlistID int64, track Track) error
}
