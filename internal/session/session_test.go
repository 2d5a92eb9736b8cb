package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/store"
)

type fakeAuth struct {
	calls atomic.Int32
	fn    func(ctx context.Context, mode domain.AuthMode, creds domain.Credentials) (*domain.Session, error)
}

func (f *fakeAuth) Authenticate(ctx context.Context, mode domain.AuthMode, creds domain.Credentials) (*domain.Session, error) {
	f.calls.Add(1)
	return f.fn(ctx, mode, creds)
}

func okAuth(id int64) *fakeAuth {
	return &fakeAuth{fn: func(_ context.Context, _ domain.AuthMode, creds domain.Credentials) (*domain.Session, error) {
		return &domain.Session{ID: id, Username: creds.Username, Phone: creds.Phone, AuthToken: "tok"}, nil
	}}
}

type countingResetter struct{ n atomic.Int32 }

func (c *countingResetter) Reset() { c.n.Add(1) }

func memStore(t *testing.T) *store.ClientStore {
	t.Helper()
	s, err := store.NewClientStore("", "")
	require.NoError(t, err)
	return s
}

var fixedNow = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

func login(t *testing.T, s *Store) *domain.Session {
	t.Helper()
	sess, err := s.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	return sess
}

func TestAuthenticate(t *testing.T) {
	t.Run("login persists session", func(t *testing.T) {
		storage := memStore(t)
		s := NewStore(okAuth(42), storage, nil)

		sess := login(t, s)
		assert.Equal(t, int64(42), sess.ID)
		assert.Equal(t, Authenticated, s.State())

		persisted, ok := storage.LoadSession()
		require.True(t, ok)
		assert.Equal(t, int64(42), persisted.ID)
	})

	t.Run("weak registration password makes no request", func(t *testing.T) {
		auth := okAuth(1)
		s := NewStore(auth, memStore(t), nil, WithClock(fixedNow))

		_, err := s.Authenticate(context.Background(), domain.ModeRegister, domain.Credentials{
			Username: "alice", Password: "abcdefg1", AgeConfirmed: true,
		})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, int32(0), auth.calls.Load())
		assert.Equal(t, Anonymous, s.State())

		_, err = s.Authenticate(context.Background(), domain.ModeRegister, domain.Credentials{
			Username: "alice", Password: "Abcdef12", AgeConfirmed: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), auth.calls.Load())
	})

	t.Run("empty login makes no request", func(t *testing.T) {
		auth := okAuth(1)
		s := NewStore(auth, memStore(t), nil)
		_, err := s.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Password: "x"})
		assert.Error(t, err)
		assert.Zero(t, auth.calls.Load())
	})

	t.Run("rejected login keeps prior state", func(t *testing.T) {
		auth := &fakeAuth{fn: func(context.Context, domain.AuthMode, domain.Credentials) (*domain.Session, error) {
			return nil, &domain.AuthError{Reason: "Invalid credentials"}
		}}
		s := NewStore(auth, memStore(t), nil)

		_, err := s.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
		var aerr *domain.AuthError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, Anonymous, s.State())
		_, ok := s.Current()
		assert.False(t, ok)
	})

	t.Run("concurrent attempt is rejected", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		auth := &fakeAuth{fn: func(context.Context, domain.AuthMode, domain.Credentials) (*domain.Session, error) {
			close(started)
			<-release
			return &domain.Session{ID: 1}, nil
		}}
		s := NewStore(auth, memStore(t), nil)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
			assert.NoError(t, err)
		}()

		<-started
		assert.Equal(t, Authenticating, s.State())
		_, err := s.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
		assert.ErrorIs(t, err, domain.ErrAuthInProgress)

		close(release)
		wg.Wait()
		assert.Equal(t, Authenticated, s.State())
		assert.Equal(t, int32(1), auth.calls.Load())
	})

	t.Run("logout during request discards the result", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		auth := &fakeAuth{fn: func(context.Context, domain.AuthMode, domain.Credentials) (*domain.Session, error) {
			close(started)
			<-release
			return &domain.Session{ID: 1}, nil
		}}
		storage := memStore(t)
		s := NewStore(auth, storage, nil)

		errc := make(chan error, 1)
		go func() {
			_, err := s.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
			errc <- err
		}()

		<-started
		require.NoError(t, s.Logout())
		close(release)

		assert.Error(t, <-errc)
		assert.Equal(t, Anonymous, s.State())
		_, ok := storage.LoadSession()
		assert.False(t, ok)
	})

	t.Run("switching accounts resets caches", func(t *testing.T) {
		next := int64(1)
		auth := &fakeAuth{fn: func(context.Context, domain.AuthMode, domain.Credentials) (*domain.Session, error) {
			return &domain.Session{ID: next}, nil
		}}
		s := NewStore(auth, memStore(t), nil)
		r := &countingResetter{}
		s.OnLogout(r)

		login(t, s)
		require.True(t, s.Likes().Claim(5))
		login(t, s)
		assert.Zero(t, r.n.Load(), "same account keeps caches")

		next = 2
		login(t, s)
		assert.Equal(t, int32(1), r.n.Load())
		assert.False(t, s.Likes().Has(5))
	})
}

func TestRestore(t *testing.T) {
	t.Run("nothing persisted", func(t *testing.T) {
		s := NewStore(okAuth(1), memStore(t), nil)
		_, ok := s.Restore()
		assert.False(t, ok)
		assert.Equal(t, Anonymous, s.State())
	})

	t.Run("persisted session and likes", func(t *testing.T) {
		storage := memStore(t)
		require.NoError(t, storage.SaveSession(&domain.Session{ID: 9, Username: "bob"}))
		require.NoError(t, storage.SaveLikedPosts([]int64{4, 2}))

		s := NewStore(okAuth(1), storage, nil)
		sess, ok := s.Restore()
		require.True(t, ok)
		assert.Equal(t, int64(9), sess.ID)
		assert.Equal(t, Authenticated, s.State())
		assert.Equal(t, []int64{2, 4}, s.Likes().IDs())
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears everything", func(t *testing.T) {
		storage := memStore(t)
		s := NewStore(okAuth(42), storage, nil)
		r1, r2 := &countingResetter{}, &countingResetter{}
		s.OnLogout(r1, r2)

		login(t, s)
		require.True(t, s.Likes().Claim(3))

		require.NoError(t, s.Logout())

		_, ok := s.Current()
		assert.False(t, ok)
		assert.Equal(t, Anonymous, s.State())
		_, ok = storage.LoadSession()
		assert.False(t, ok)
		_, ok = storage.LoadLikedPosts()
		assert.False(t, ok)
		assert.Empty(t, s.Likes().IDs())
		assert.Equal(t, int32(1), r1.n.Load())
		assert.Equal(t, int32(1), r2.n.Load())
	})

	t.Run("idempotent", func(t *testing.T) {
		s := NewStore(okAuth(1), memStore(t), nil)
		assert.NoError(t, s.Logout())
		assert.NoError(t, s.Logout())
		assert.Equal(t, Anonymous, s.State())
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		s := NewStore(okAuth(1), memStore(t), nil)
		city := "Paris"
		_, err := s.UpdateProfile(ProfilePatch{City: &city})
		assert.ErrorIs(t, err, domain.ErrNoSession)
	})

	t.Run("merges and persists", func(t *testing.T) {
		storage := memStore(t)
		s := NewStore(okAuth(1), storage, nil, WithClock(fixedNow))
		login(t, s)

		city := " Paris "
		visible := true
		birth := time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC)
		sess, err := s.UpdateProfile(ProfilePatch{City: &city, EmailVisible: &visible, BirthDate: &birth})
		require.NoError(t, err)
		assert.Equal(t, "Paris", sess.City)
		assert.True(t, sess.EmailVisible)
		assert.Equal(t, "tok", sess.AuthToken, "untouched fields survive")

		persisted, ok := storage.LoadSession()
		require.True(t, ok)
		assert.Equal(t, "Paris", persisted.City)
		assert.True(t, persisted.BirthDate.Equal(birth))
	})

	t.Run("invalid birth date leaves session unchanged", func(t *testing.T) {
		s := NewStore(okAuth(1), memStore(t), nil, WithClock(fixedNow))
		login(t, s)
		birth := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := s.UpdateProfile(ProfilePatch{BirthDate: &birth})
		assert.Error(t, err)
		cur, _ := s.Current()
		assert.True(t, cur.BirthDate.IsZero())
	})
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewStore(okAuth(1), memStore(t), nil)
	login(t, s)

	cur, _ := s.Current()
	cur.Username = "mallory"
	again, _ := s.Current()
	assert.Equal(t, "alice", again.Username)
}

func TestIsPrivileged(t *testing.T) {
	t.Run("server flag", func(t *testing.T) {
		auth := &fakeAuth{fn: func(context.Context, domain.AuthMode, domain.Credentials) (*domain.Session, error) {
			return &domain.Session{ID: 1, IsAdmin: true}, nil
		}}
		s := NewStore(auth, memStore(t), nil)
		assert.False(t, s.IsPrivileged())
		login(t, s)
		assert.True(t, s.IsPrivileged())
	})

	t.Run("configured identity", func(t *testing.T) {
		s := NewStore(okAuth(1), memStore(t), nil, WithAdminIdentities([]string{"ALICE"}))
		login(t, s)
		assert.True(t, s.IsPrivileged())
		require.NoError(t, s.Logout())
		assert.False(t, s.IsPrivileged())
	})

	t.Run("ordinary user", func(t *testing.T) {
		s := NewStore(okAuth(1), memStore(t), nil, WithAdminIdentities([]string{"root"}))
		login(t, s)
		assert.False(t, s.IsPrivileged())
	})
}

func TestLikedPosts(t *testing.T) {
	storage := memStore(t)
	s := NewStore(okAuth(1), storage, nil)
	likes := s.Likes()

	assert.True(t, likes.Claim(10))
	assert.False(t, likes.Claim(10))
	assert.True(t, likes.Has(10))

	ids, ok := storage.LoadLikedPosts()
	require.True(t, ok)
	assert.Equal(t, []int64{10}, ids)

	likes.Release(10)
	assert.False(t, likes.Has(10))
	ids, _ = storage.LoadLikedPosts()
	assert.Empty(t, ids)
}
