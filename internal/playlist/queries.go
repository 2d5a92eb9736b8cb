package playlist

import (
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/search"
)

// Playlists returns the cached playlists
func (s *Service) Playlists() []domain.Playlist {
	return s.playlists.Snapshot()
}

// Playlist returns one cached playlist
func (s *Service) Playlist(id int64) (domain.Playlist, bool) {
	return s.playlists.Find(func(p domain.Playlist) bool { return p.ID == id })
}

// Filter fuzzy-matches playlists by name
func (s *Service) Filter(query string) []domain.Playlist {
	return search.FilterBy(query, s.playlists.Snapshot(), func(p domain.Playlist) string { return p.Name })
}

// Loaded reports whether playlists have been fetched this session
func (s *Service) Loaded() bool {
	return s.playlists.Loaded()
}
