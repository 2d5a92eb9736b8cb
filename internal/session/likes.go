package session

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/huddle/internal/domain"
)

// LikedPosts is the persisted set of post ids liked from this client
type LikedPosts struct {
	storage domain.Store
	logger  *slog.Logger

	mu  sync.Mutex
	ids map[int64]struct{}
}

func newLikedPosts(storage domain.Store, logger *slog.Logger) *LikedPosts {
	return &LikedPosts{storage: storage, logger: logger, ids: make(map[int64]struct{})}
}

func (l *LikedPosts) load() {
	ids, _ := l.storage.LoadLikedPosts()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
}

// Has reports whether id was already liked
func (l *LikedPosts) Has(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}

// Claim adds id and persists the set. It returns false when id was
// already present, in which case nothing changes.
func (l *LikedPosts) Claim(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	l.persistLocked()
	return true
}

// Release removes id after a failed like so it can be retried
func (l *LikedPosts) Release(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; !ok {
		return
	}
	delete(l.ids, id)
	l.persistLocked()
}

// IDs returns the liked ids in ascending order
func (l *LikedPosts) IDs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sortedLocked()
}

func (l *LikedPosts) clear() error {
	l.mu.Lock()
	l.ids = make(map[int64]struct{})
	l.mu.Unlock()
	return l.storage.ClearLikedPosts()
}

func (l *LikedPosts) sortedLocked() []int64 {
	ids := make([]int64, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (l *LikedPosts) persistLocked() {
	if err := l.storage.SaveLikedPosts(l.sortedLocked()); err != nil {
		l.logger.Error("failed to persist liked posts", "error", err)
	}
}
