// Package playlist caches the session's music playlists and the tracks of
// playlists that have been opened.
package playlist

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// Service owns the Playlists cache. Track lists are cached per playlist
// and dropped whenever the playlist changes.
type Service struct {
	client   domain.PlaylistClient
	identity domain.Identity
	logger   *slog.Logger

	playlists cache.Collection[domain.Playlist]
	adding    cache.KeySet[int64]

	mu          sync.RWMutex
	tracks      map[int64][]domain.Track
	generations map[int64]uint64
	epoch       uint64
}

// tracksStamp identifies the cache state a track fetch started from
type tracksStamp struct {
	epoch      uint64
	generation uint64
}

// NewService creates a new playlist service.
func NewService(client domain.PlaylistClient, identity domain.Identity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:      client,
		identity:    identity,
		logger:      logger,
		tracks:      make(map[int64][]domain.Track),
		generations: make(map[int64]uint64),
	}
}

// Reset drops playlists and every cached track list
func (s *Service) Reset() {
	s.playlists.Reset()
	s.mu.Lock()
	s.tracks = make(map[int64][]domain.Track)
	s.epoch++
	s.mu.Unlock()
}

// InvalidateTracks drops the cached tracks of one playlist. A fetch for
// that playlist already in flight is not saved.
func (s *Service) InvalidateTracks(playlistID int64) {
	s.mu.Lock()
	delete(s.tracks, playlistID)
	s.generations[playlistID]++
	s.mu.Unlock()
}

func (s *Service) cachedTracks(playlistID int64) ([]domain.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tracks, ok := s.tracks[playlistID]
	if !ok {
		return nil, false
	}
	return append([]domain.Track(nil), tracks...), true
}

func (s *Service) saveTracks(stamp tracksStamp, playlistID int64, tracks []domain.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != stamp.epoch || s.generations[playlistID] != stamp.generation {
		return false
	}
	s.tracks[playlistID] = append([]domain.Track(nil), tracks...)
	return true
}

func (s *Service) tracksStamp(playlistID int64) tracksStamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tracksStamp{epoch: s.epoch, generation: s.generations[playlistID]}
}

var _ domain.Resetter = (*Service)(nil)
