package notify

import (
	"context"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// markAllKey guards MarkAllRead in the marking set; notification ids are positive
const markAllKey int64 = 0

// Refresh pulls the notification list
func (s *Service) Refresh(ctx context.Context) error {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return err
	}
	_, err = cache.Refresh(ctx, &s.notifications, func(ctx context.Context) ([]domain.Notification, error) {
		return s.client.GetNotifications(ctx, actorID)
	})
	if err != nil {
		s.logger.Error("failed to refresh notifications", "error", err)
		return err
	}
	s.logger.Debug("refreshed notifications", "count", s.notifications.Len(), "unread", s.UnreadCount())
	return nil
}

// MarkAllRead marks every notification read. Reads see the list as read
// from the moment the call starts; if the request fails the pending mark
// is dropped and the cached flags show through again. The server view
// replaces the list once the refresh lands.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if !s.marking.Acquire(markAllKey) {
		return domain.ErrActionInFlight
	}
	defer s.marking.Release(markAllKey)

	err := cache.Dispatch(ctx, s.identity, "mark notifications read",
		func(ctx context.Context, actorID int64) error {
			epoch := s.notifications.Epoch()
			if err := s.client.MarkAllRead(ctx, actorID); err != nil {
				return err
			}
			s.setRead(epoch, func(domain.Notification) bool { return true })
			return nil
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to mark notifications read", "error", err)
		return err
	}
	return nil
}

// MarkRead marks a single notification read
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if _, err := cache.ActorID(s.identity); err != nil {
		return err
	}
	if _, ok := s.Notification(id); !ok {
		return domain.ErrNotFound
	}
	if !s.marking.Acquire(id) {
		return domain.ErrActionInFlight
	}
	defer s.marking.Release(id)

	err := cache.Dispatch(ctx, s.identity, "mark notification read",
		func(ctx context.Context, actorID int64) error {
			epoch := s.notifications.Epoch()
			if err := s.client.MarkRead(ctx, actorID, id); err != nil {
				return err
			}
			s.setRead(epoch, func(n domain.Notification) bool { return n.ID == id })
			return nil
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to mark notification read", "id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) setRead(epoch uint64, match func(domain.Notification) bool) {
	if !s.notifications.Loaded() {
		return
	}
	items := s.notifications.Snapshot()
	for i := range items {
		if match(items[i]) {
			items[i].IsRead = true
		}
	}
	s.notifications.ReplaceIf(epoch, items)
}
