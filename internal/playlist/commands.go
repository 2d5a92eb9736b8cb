package playlist

import (
	"context"
	"strings"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/validate"
)

// Refresh pulls the session's playlists
func (s *Service) Refresh(ctx context.Context) error {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return err
	}
	_, err = cache.Refresh(ctx, &s.playlists, func(ctx context.Context) ([]domain.Playlist, error) {
		return s.client.GetPlaylists(ctx, actorID)
	})
	if err != nil {
		s.logger.Error("failed to fetch playlists", "error", err)
		return err
	}
	s.logger.Debug("fetched playlists", "count", s.playlists.Len())
	return nil
}

// Tracks returns a playlist's tracks, fetching them on a cache miss
func (s *Service) Tracks(ctx context.Context, playlistID int64) ([]domain.Track, error) {
	if _, err := cache.ActorID(s.identity); err != nil {
		return nil, err
	}
	if tracks, ok := s.cachedTracks(playlistID); ok {
		return tracks, nil
	}

	stamp := s.tracksStamp(playlistID)
	tracks, err := s.client.GetTracks(ctx, playlistID)
	if err != nil {
		s.logger.Error("failed to fetch playlist tracks", "error", err, "playlist_id", playlistID)
		return nil, err
	}
	if !s.saveTracks(stamp, playlistID, tracks) {
		s.logger.Debug("discarded stale playlist tracks", "playlist_id", playlistID)
	}
	s.logger.Debug("fetched playlist tracks", "count", len(tracks), "playlist_id", playlistID)
	return tracks, nil
}

// Create makes a new playlist owned by the session
func (s *Service) Create(ctx context.Context, name, description string, public bool) error {
	name = strings.TrimSpace(name)
	if err := validate.NotBlank("name", name); err != nil {
		return err
	}

	err := cache.Dispatch(ctx, s.identity, "create playlist",
		func(ctx context.Context, actorID int64) error {
			return s.client.CreatePlaylist(ctx, actorID, name, strings.TrimSpace(description), public)
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to create playlist", "error", err, "name", name)
		return err
	}
	s.logger.Info("created playlist", "name", name)
	return nil
}

// AddTrack appends a track to a playlist. The playlist's cached tracks are
// dropped and the playlist list is refreshed for the new track count.
func (s *Service) AddTrack(ctx context.Context, playlistID int64, track domain.Track) error {
	track.Title = strings.TrimSpace(track.Title)
	track.URL = strings.TrimSpace(track.URL)
	if err := validate.NotBlank("title", track.Title); err != nil {
		return err
	}
	if err := validate.NotBlank("url", track.URL); err != nil {
		return err
	}
	if _, ok := s.Playlist(playlistID); !ok {
		return domain.ErrNotFound
	}
	if !s.adding.Acquire(playlistID) {
		return domain.ErrActionInFlight
	}
	defer s.adding.Release(playlistID)

	err := cache.Dispatch(ctx, s.identity, "add track",
		func(ctx context.Context, _ int64) error {
			if err := s.client.AddTrack(ctx, playlistID, track); err != nil {
				return err
			}
			s.InvalidateTracks(playlistID)
			return nil
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to add track", "error", err, "playlist_id", playlistID)
		return err
	}
	s.logger.Info("added track to playlist", "playlist_id", playlistID, "title", track.Title)
	return nil
}

// Containing reports which cached playlists hold a track with url. Only
// playlists whose tracks are already cached are consulted.
func (s *Service) Containing(url string) map[int64]bool {
	membership := make(map[int64]bool)
	for _, p := range s.playlists.Snapshot() {
		tracks, ok := s.cachedTracks(p.ID)
		if !ok {
			continue
		}
		for _, t := range tracks {
			if t.URL == url {
				membership[p.ID] = true
				break
			}
		}
	}
	return membership
}
