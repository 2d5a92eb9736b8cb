package feed

import "github.com/mmcdole/huddle/internal/domain"

// Posts returns the cached feed
func (s *Service) Posts() []domain.Post {
	return s.posts.Snapshot()
}

// ByAuthor returns the cached posts written by authorID
func (s *Service) ByAuthor(authorID int64) []domain.Post {
	var out []domain.Post
	for _, p := range s.posts.Snapshot() {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out
}

// Post returns one cached post
func (s *Service) Post(id int64) (domain.Post, bool) {
	return s.posts.Find(func(p domain.Post) bool { return p.ID == id })
}

// HasLiked reports whether the post was liked from this client
func (s *Service) HasLiked(postID int64) bool {
	return s.likes.Has(postID)
}

// Liking reports whether a like for postID is in flight
func (s *Service) Liking(postID int64) bool {
	return s.liking.Has(postID)
}

// Loaded reports whether the feed has been fetched since the last reset
func (s *Service) Loaded() bool {
	return s.posts.Loaded()
}
