package api

import (
	"context"
	"net/url"

	"github.com/mmcdole/huddle/internal/domain"
)

type playlistRequest struct {
	Action      string `json:"action"`
	UserID      int64  `json:"user_id,omitempty"`
	PlaylistID  int64  `json:"playlist_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public,omitempty"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	URL         string `json:"url,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

func (c *Client) GetPlaylists(ctx context.Context, userID int64) ([]domain.Playlist, error) {
	query := url.Values{}
	query.Set("type", "playlists")
	query.Set("user_id", idParam(userID))

	resp := newList[PlaylistDTO]("playlists")
	if err := c.get(ctx, "get playlists", c.endpoints.Posts, query, resp); err != nil {
		return nil, err
	}
	return MapPlaylists(resp.Items), nil
}

func (c *Client) GetTracks(ctx context.Context, playlistID int64) ([]domain.Track, error) {
	query := url.Values{}
	query.Set("type", "playlists")
	query.Set("playlist_id", idParam(playlistID))

	resp := newList[TrackDTO]("tracks")
	if err := c.get(ctx, "get tracks", c.endpoints.Posts, query, resp); err != nil {
		return nil, err
	}
	return MapTracks(resp.Items), nil
}

func (c *Client) CreatePlaylist(ctx context.Context, actorID int64, name, description string, public bool) error {
	return c.post(ctx, "create playlist", c.endpoints.Posts, playlistRequest{
		Action:      "create_playlist",
		UserID:      actorID,
		Name:        name,
		Description: description,
		IsPublic:    public,
	}, nil)
}

func (c *Client) AddTrack(ctx context.Context, playlistID int64, track domain.Track) error {
	return c.post(ctx, "add track", c.endpoints.Posts, playlistRequest{
		Action:     "add_track",
		PlaylistID: playlistID,
		Title:      track.Title,
		Artist:     track.Artist,
		URL:        track.URL,
		Duration:   int(track.Duration.Seconds()),
	}, nil)
}
