package domain

// Store is durable client storage. It holds exactly the persisted session
// blob and the persisted liked-post id list.
type Store interface {
	LoadSession() (*Session, bool)
	SaveSession(s *Session) error
	ClearSession() error

	LoadLikedPosts() ([]int64, bool)
	SaveLikedPosts(ids []int64) error
	ClearLikedPosts() error

	Close() error
}
