package friend

import (
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/search"
)

// Friends returns the cached friends
func (s *Service) Friends() []domain.Friend {
	return s.friends.Snapshot()
}

// Friend returns one cached friend
func (s *Service) Friend(id int64) (domain.Friend, bool) {
	return s.friends.Find(func(f domain.Friend) bool { return f.ID == id })
}

// IsFriend reports whether an edge to id exists in the cache. It is
// computed on every call and never stored per user.
func (s *Service) IsFriend(id int64) bool {
	_, ok := s.Friend(id)
	return ok
}

// Busy reports whether a friend action for id is in flight
func (s *Service) Busy(id int64) bool {
	return s.editing.Has(id)
}

// Requests returns the cached incoming requests
func (s *Service) Requests() []domain.FriendRequest {
	return s.requests.Snapshot()
}

// SearchResults returns the current search hits
func (s *Service) SearchResults() []domain.UserCard {
	s.searchMu.RLock()
	defer s.searchMu.RUnlock()
	return append([]domain.UserCard(nil), s.results...)
}

// SearchQuery returns the query the current results belong to
func (s *Service) SearchQuery() string {
	s.searchMu.RLock()
	defer s.searchMu.RUnlock()
	return s.searchQuery
}

// SearchResult returns one search hit
func (s *Service) SearchResult(id int64) (domain.UserCard, bool) {
	s.searchMu.RLock()
	defer s.searchMu.RUnlock()
	for _, u := range s.results {
		if u.ID == id {
			return u, true
		}
	}
	return domain.UserCard{}, false
}

// Filter fuzzy-matches cached friends by display name or handle
func (s *Service) Filter(query string) []domain.Friend {
	return search.FilterBy(query, s.friends.Snapshot(), func(f domain.Friend) string {
		return f.DisplayName + " " + f.Handle()
	})
}
