package feed

import (
	"context"
	"errors"
	"strings"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/validate"
)

// Refresh pulls the whole feed and replaces the cache
func (s *Service) Refresh(ctx context.Context) error {
	if _, err := cache.ActorID(s.identity); err != nil {
		return err
	}
	installed, err := cache.Refresh(ctx, &s.posts, func(ctx context.Context) ([]domain.Post, error) {
		return s.client.GetPosts(ctx, 0)
	})
	if err != nil {
		s.logger.Error("failed to refresh posts", "error", err)
		return err
	}
	s.logger.Debug("refreshed posts", "count", s.posts.Len(), "installed", installed)
	return nil
}

// Create publishes a post. Content must not be blank.
func (s *Service) Create(ctx context.Context, content, imageURL string) error {
	if err := validate.NotBlank("content", content); err != nil {
		return err
	}
	err := cache.Dispatch(ctx, s.identity, "create post",
		func(ctx context.Context, actorID int64) error {
			return s.client.CreatePost(ctx, actorID, strings.TrimSpace(content), strings.TrimSpace(imageURL))
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to create post", "error", err)
		return err
	}
	s.logger.Info("created post")
	return nil
}

// Like likes a post once. A post already in the liked set is rejected
// without a request; a failed request removes it again so it can be retried.
func (s *Service) Like(ctx context.Context, postID int64) error {
	if _, err := cache.ActorID(s.identity); err != nil {
		return err
	}
	if !s.liking.Acquire(postID) {
		return domain.ErrActionInFlight
	}
	defer s.liking.Release(postID)

	if !s.likes.Claim(postID) {
		return domain.ErrAlreadyLiked
	}

	err := cache.Dispatch(ctx, s.identity, "like post",
		func(ctx context.Context, actorID int64) error {
			return s.client.LikePost(ctx, actorID, postID)
		},
		s.Refresh)

	var rerr *cache.RefreshError
	if err != nil && !errors.As(err, &rerr) {
		s.likes.Release(postID)
		s.logger.Error("failed to like post", "post_id", postID, "error", err)
		return err
	}
	s.logger.Info("liked post", "post_id", postID)
	return err
}

// Comment adds a comment to a post
func (s *Service) Comment(ctx context.Context, postID int64, content string) error {
	if err := validate.NotBlank("comment", content); err != nil {
		return err
	}
	err := cache.Dispatch(ctx, s.identity, "comment post",
		func(ctx context.Context, actorID int64) error {
			return s.client.CommentPost(ctx, actorID, postID, strings.TrimSpace(content))
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to comment", "post_id", postID, "error", err)
	}
	return err
}
