// Package friend caches the friend graph of the session, incoming friend
// requests and the transient user search results.
package friend

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// Service owns the Friends cache, the friend request cache and the
// search result list. Search hits are never merged into friends.
type Service struct {
	client   domain.FriendClient
	identity domain.Identity
	logger   *slog.Logger

	friends  cache.Collection[domain.Friend]
	requests cache.Collection[domain.FriendRequest]
	editing  cache.KeySet[int64]

	searchMu    sync.RWMutex
	searchSeq   uint64
	searchQuery string
	results     []domain.UserCard
}

// NewService creates a new friend service
func NewService(client domain.FriendClient, identity domain.Identity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, identity: identity, logger: logger}
}

// Reset empties friends, requests and search results
func (s *Service) Reset() {
	s.friends.Reset()
	s.requests.Reset()
	s.ClearSearch()
}

var _ domain.Resetter = (*Service)(nil)
