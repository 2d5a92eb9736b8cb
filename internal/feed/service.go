// Package feed caches the posts feed and dispatches post mutations.
package feed

import (
	"log/slog"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// Likes is the persisted liked-post guard owned by the session
type Likes interface {
	Has(postID int64) bool
	Claim(postID int64) bool
	Release(postID int64)
}

// Service owns the Posts cache
type Service struct {
	client   domain.PostClient
	identity domain.Identity
	likes    Likes
	logger   *slog.Logger

	posts  cache.Collection[domain.Post]
	liking cache.KeySet[int64]
}

// NewService creates a new feed service
func NewService(client domain.PostClient, identity domain.Identity, likes Likes, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, identity: identity, likes: likes, logger: logger}
}

// Reset empties the cache
func (s *Service) Reset() {
	s.posts.Reset()
}

var _ domain.Resetter = (*Service)(nil)
