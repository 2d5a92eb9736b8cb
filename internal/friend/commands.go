package friend

import (
	"context"
	"errors"
	"strings"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/search"
	"github.com/mmcdole/huddle/internal/validate"
)

// Refresh pulls the session's friends
func (s *Service) Refresh(ctx context.Context) error {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return err
	}
	_, err = cache.Refresh(ctx, &s.friends, func(ctx context.Context) ([]domain.Friend, error) {
		return s.client.GetFriends(ctx, actorID)
	})
	if err != nil {
		s.logger.Error("failed to refresh friends", "error", err)
		return err
	}
	s.logger.Debug("refreshed friends", "count", s.friends.Len())
	return nil
}

// RefreshRequests pulls pending requests addressed to the session
func (s *Service) RefreshRequests(ctx context.Context) error {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return err
	}
	_, err = cache.Refresh(ctx, &s.requests, func(ctx context.Context) ([]domain.FriendRequest, error) {
		return s.client.GetFriendRequests(ctx, actorID)
	})
	if err != nil {
		s.logger.Error("failed to refresh friend requests", "error", err)
		return err
	}
	return nil
}

// Add creates a friendship edge with userID
func (s *Service) Add(ctx context.Context, userID int64) error {
	return s.edit(ctx, "add friend", userID, s.client.AddFriend, s.Refresh)
}

// Remove deletes the friendship edge with userID
func (s *Service) Remove(ctx context.Context, userID int64) error {
	return s.edit(ctx, "remove friend", userID, s.client.RemoveFriend, s.Refresh)
}

// Accept accepts a pending request from fromID. Both friends and requests
// are refreshed afterwards.
func (s *Service) Accept(ctx context.Context, fromID int64) error {
	return s.edit(ctx, "accept friend request", fromID, s.client.AcceptFriendRequest, s.refreshAll)
}

// Reject declines a pending request from fromID
func (s *Service) Reject(ctx context.Context, fromID int64) error {
	return s.edit(ctx, "reject friend request", fromID, s.client.RejectFriendRequest, s.RefreshRequests)
}

func (s *Service) refreshAll(ctx context.Context) error {
	return errors.Join(s.Refresh(ctx), s.RefreshRequests(ctx))
}

func (s *Service) edit(ctx context.Context, op string, userID int64,
	send func(ctx context.Context, actorID, userID int64) error,
	refresh func(ctx context.Context) error,
) error {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return err
	}
	if userID == actorID {
		return &domain.ValidationError{Field: "friend", Reason: "cannot befriend yourself"}
	}
	if !s.editing.Acquire(userID) {
		return domain.ErrActionInFlight
	}
	defer s.editing.Release(userID)

	err = cache.Dispatch(ctx, s.identity, op,
		func(ctx context.Context, actorID int64) error {
			return send(ctx, actorID, userID)
		},
		refresh)
	if err != nil {
		s.logger.Error("friend action failed", "op", op, "user_id", userID, "error", err)
		return err
	}
	s.logger.Info("friend action", "op", op, "user_id", userID)
	return nil
}

// Search looks users up by name, username or phone. Queries shorter than
// the minimum length clear the results without a request. Results are
// ranked locally and held apart from the Friends cache; only the most
// recent query's response is kept.
func (s *Service) Search(ctx context.Context, query string) ([]domain.UserCard, error) {
	query = strings.TrimSpace(query)

	s.searchMu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.searchQuery = query
	s.results = nil
	s.searchMu.Unlock()

	if !validate.SearchQuery(query) {
		return []domain.UserCard{}, nil
	}

	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return nil, err
	}

	users, err := s.client.SearchUsers(ctx, query)
	if err != nil {
		s.logger.Error("user search failed", "error", err)
		return nil, err
	}

	hits := make([]domain.UserCard, 0, len(users))
	for _, u := range users {
		if u.ID != actorID {
			hits = append(hits, u)
		}
	}
	hits = search.RankBy(query, hits, func(u domain.UserCard) []string {
		return []string{u.DisplayName, u.Username, u.Phone}
	})

	s.searchMu.Lock()
	if s.searchSeq == seq {
		s.results = hits
	}
	s.searchMu.Unlock()

	s.logger.Debug("user search", "results", len(hits))
	return append([]domain.UserCard(nil), hits...), nil
}

// ClearSearch drops the search results
func (s *Service) ClearSearch() {
	s.searchMu.Lock()
	s.searchSeq++
	s.searchQuery = ""
	s.results = nil
	s.searchMu.Unlock()
}
