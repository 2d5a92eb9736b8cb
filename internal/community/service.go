// Package community caches communities and dispatches membership changes.
package community

import (
	"log/slog"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// Action is the membership action offered for a community
type Action int

const (
	ActionJoin Action = iota
	ActionLeave
	ActionPending // a toggle for this community is in flight
)

func (a Action) String() string {
	switch a {
	case ActionJoin:
		return "Join"
	case ActionLeave:
		return "Leave"
	default:
		return "…"
	}
}

// Service owns the Communities cache
type Service struct {
	client   domain.CommunityClient
	identity domain.Identity
	logger   *slog.Logger

	communities cache.Collection[domain.Community]
	toggling    cache.KeySet[int64]
}

// NewService creates a new community service
func NewService(client domain.CommunityClient, identity domain.Identity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, identity: identity, logger: logger}
}

// Reset empties the cache
func (s *Service) Reset() {
	s.communities.Reset()
}

var _ domain.Resetter = (*Service)(nil)
