package community

import (
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/search"
)

// Communities returns the cached communities
func (s *Service) Communities() []domain.Community {
	return s.communities.Snapshot()
}

// Community returns one cached community
func (s *Service) Community(id int64) (domain.Community, bool) {
	return s.communities.Find(func(c domain.Community) bool { return c.ID == id })
}

// IsMember reports the cached membership flag
func (s *Service) IsMember(id int64) bool {
	c, ok := s.Community(id)
	return ok && c.IsMember
}

// Action returns the action to offer for a community: the negation of the
// cached membership, or pending while a toggle is in flight
func (s *Service) Action(id int64) Action {
	if s.toggling.Has(id) {
		return ActionPending
	}
	if s.IsMember(id) {
		return ActionLeave
	}
	return ActionJoin
}

// Joined returns the communities the session belongs to
func (s *Service) Joined() []domain.Community {
	var out []domain.Community
	for _, c := range s.communities.Snapshot() {
		if c.IsMember {
			out = append(out, c)
		}
	}
	return out
}

// Filter fuzzy-matches cached communities by name
func (s *Service) Filter(query string) []domain.Community {
	return search.FilterBy(query, s.communities.Snapshot(), func(c domain.Community) string { return c.Name })
}
