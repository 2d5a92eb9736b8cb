package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/huddle/internal/domain"
)

type fakeIdentity struct{ sess *domain.Session }

func (f fakeIdentity) Current() (*domain.Session, bool) {
	return f.sess, f.sess != nil
}

type fakeDirectory struct {
	results map[int64]domain.UserCard
	friends map[int64]domain.Friend
}

func (d fakeDirectory) SearchResult(id int64) (domain.UserCard, bool) {
	u, ok := d.results[id]
	return u, ok
}

func (d fakeDirectory) Friend(id int64) (domain.Friend, bool) {
	f, ok := d.friends[id]
	return f, ok
}

func (d fakeDirectory) IsFriend(id int64) bool {
	_, ok := d.friends[id]
	return ok
}

func TestResolve(t *testing.T) {
	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	self := &domain.Session{ID: 1, FullName: "Me", Username: "me", Email: "me@example.com"}
	stranger := domain.UserCard{ID: 2, DisplayName: "Stranger", Email: "s@example.com", EmailVisible: true, BirthDate: birth}
	friend := domain.UserCard{ID: 3, DisplayName: "Friend", Email: "f@example.com", EmailVisible: true, BirthDate: birth}
	shy := domain.UserCard{ID: 4, DisplayName: "Shy", Email: "shy@example.com", BirthDate: birth}

	dir := fakeDirectory{
		results: map[int64]domain.UserCard{2: stranger, 3: friend},
		friends: map[int64]domain.Friend{3: friend, 4: shy},
	}
	r := NewResolver(fakeIdentity{sess: self}, dir)

	t.Run("self by default", func(t *testing.T) {
		p, err := r.Resolve()
		require.NoError(t, err)
		assert.True(t, p.Self)
		assert.Equal(t, "Me", p.User.DisplayName)
		assert.True(t, p.ShowsEmail())
		assert.Equal(t, int64(1), r.FeedAuthorID())
	})

	t.Run("search hit that is not a friend hides private fields", func(t *testing.T) {
		r.View(2)
		p, err := r.Resolve()
		require.NoError(t, err)
		assert.False(t, p.Self)
		assert.False(t, p.IsFriend)
		assert.False(t, p.ShowsEmail())
		assert.False(t, p.ShowsBirthDate())
		assert.Equal(t, int64(2), r.FeedAuthorID())
	})

	t.Run("friend shows private fields", func(t *testing.T) {
		r.View(3)
		p, err := r.Resolve()
		require.NoError(t, err)
		assert.True(t, p.IsFriend)
		assert.True(t, p.ShowsEmail())
		assert.True(t, p.ShowsBirthDate())
	})

	t.Run("friend with hidden email", func(t *testing.T) {
		p, err := r.ResolveID(4)
		require.NoError(t, err)
		assert.False(t, p.ShowsEmail())
		assert.True(t, p.ShowsBirthDate())
	})

	t.Run("unknown id", func(t *testing.T) {
		r.View(99)
		_, err := r.Resolve()
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("back reverts the feed filter", func(t *testing.T) {
		r.View(3)
		r.Back()
		assert.Zero(t, r.Viewing())
		assert.Equal(t, int64(1), r.FeedAuthorID())
	})

	t.Run("viewing yourself is self", func(t *testing.T) {
		r.View(1)
		assert.Zero(t, r.Viewing())
	})
}

func TestResolveWithoutSession(t *testing.T) {
	r := NewResolver(fakeIdentity{}, fakeDirectory{})
	_, err := r.Resolve()
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Zero(t, r.FeedAuthorID())
}
