// Package notify holds the pulled notification list and its unread count.
package notify

import (
	"log/slog"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// Service caches notifications for the live session. The unread count
// is always derived from the cached list.
type Service struct {
	client   domain.NotificationClient
	identity domain.Identity
	logger   *slog.Logger

	notifications cache.Collection[domain.Notification]
	marking       cache.KeySet[int64]
}

// NewService creates a new notification service
func NewService(client domain.NotificationClient, identity domain.Identity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, identity: identity, logger: logger}
}

// Reset drops all cached notifications
func (s *Service) Reset() {
	s.notifications.Reset()
}

var _ domain.Resetter = (*Service)(nil)
