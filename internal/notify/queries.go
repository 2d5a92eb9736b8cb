package notify

import "github.com/mmcdole/huddle/internal/domain"

// Notifications returns the cached notifications with pending marks applied
func (s *Service) Notifications() []domain.Notification {
	items := s.notifications.Snapshot()
	for i := range items {
		if s.pendingRead(items[i].ID) {
			items[i].IsRead = true
		}
	}
	return items
}

// Notification returns one cached notification
func (s *Service) Notification(id int64) (domain.Notification, bool) {
	n, ok := s.notifications.Find(func(n domain.Notification) bool { return n.ID == id })
	if ok && s.pendingRead(id) {
		n.IsRead = true
	}
	return n, ok
}

// UnreadCount returns the number of unread notifications. It is derived
// on every call so it tracks refreshes and pending marks.
func (s *Service) UnreadCount() int {
	return domain.CountUnread(s.Notifications())
}

// Loaded reports whether notifications have been fetched this session
func (s *Service) Loaded() bool {
	return s.notifications.Loaded()
}

func (s *Service) pendingRead(id int64) bool {
	return s.marking.Has(markAllKey) || s.marking.Has(id)
}
