package community

import (
	"context"
	"strings"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/validate"
)

// Refresh pulls every community with membership computed for the session
func (s *Service) Refresh(ctx context.Context) error {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return err
	}
	_, err = cache.Refresh(ctx, &s.communities, func(ctx context.Context) ([]domain.Community, error) {
		return s.client.GetCommunities(ctx, actorID)
	})
	if err != nil {
		s.logger.Error("failed to refresh communities", "error", err)
		return err
	}
	s.logger.Debug("refreshed communities", "count", s.communities.Len())
	return nil
}

// Join joins a community. The cached membership flag only changes through
// the refresh that follows a successful request.
func (s *Service) Join(ctx context.Context, communityID int64) error {
	return s.setMembership(ctx, communityID, true)
}

// Leave leaves a community
func (s *Service) Leave(ctx context.Context, communityID int64) error {
	return s.setMembership(ctx, communityID, false)
}

// Toggle joins or leaves depending on the cached membership flag
func (s *Service) Toggle(ctx context.Context, communityID int64) error {
	c, ok := s.Community(communityID)
	if !ok {
		return domain.ErrNotFound
	}
	return s.setMembership(ctx, communityID, !c.IsMember)
}

func (s *Service) setMembership(ctx context.Context, communityID int64, join bool) error {
	if _, err := cache.ActorID(s.identity); err != nil {
		return err
	}
	if !s.toggling.Acquire(communityID) {
		return domain.ErrActionInFlight
	}
	defer s.toggling.Release(communityID)

	op, send := "leave community", s.client.LeaveCommunity
	if join {
		op, send = "join community", s.client.JoinCommunity
	}

	err := cache.Dispatch(ctx, s.identity, op,
		func(ctx context.Context, actorID int64) error {
			return send(ctx, actorID, communityID)
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("membership change failed", "op", op, "community_id", communityID, "error", err)
		return err
	}
	s.logger.Info("membership changed", "op", op, "community_id", communityID)
	return nil
}

// Create creates a community owned by the session
func (s *Service) Create(ctx context.Context, name, description string) error {
	if err := validate.NotBlank("name", name); err != nil {
		return err
	}
	err := cache.Dispatch(ctx, s.identity, "create community",
		func(ctx context.Context, actorID int64) error {
			return s.client.CreateCommunity(ctx, actorID, strings.TrimSpace(name), strings.TrimSpace(description))
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to create community", "error", err)
	}
	return err
}

// Posts fetches a community's posts. The result is transient and not cached.
func (s *Service) Posts(ctx context.Context, communityID int64) ([]domain.Post, error) {
	if _, err := cache.ActorID(s.identity); err != nil {
		return nil, err
	}
	posts, err := s.client.GetCommunityPosts(ctx, communityID)
	if err != nil {
		s.logger.Error("failed to fetch community posts", "community_id", communityID, "error", err)
		return nil, err
	}
	return posts, nil
}
