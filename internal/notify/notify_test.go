package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/huddle/internal/domain"
)

type fakeIdentity struct{ id int64 }

func (f fakeIdentity) Current() (*domain.Session, bool) {
	if f.id == 0 {
		return nil, false
	}
	return &domain.Session{ID: f.id}, true
}

type fakeClient struct {
	mu       sync.Mutex
	items    []domain.Notification
	calls    []string
	markErr  error
	getErr   error
	inFlight func() // runs inside MarkAllRead before it answers
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: []domain.Notification{
		{ID: 1, Message: "Alice liked your post"},
		{ID: 2, Message: "Bob sent a friend request"},
		{ID: 3, Message: "Welcome", IsRead: true},
	}}
}

func (f *fakeClient) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeClient) GetNotifications(context.Context, int64) ([]domain.Notification, error) {
	f.record("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]domain.Notification(nil), f.items...), nil
}

func (f *fakeClient) MarkAllRead(context.Context, int64) error {
	f.record("mark_all")
	if f.inFlight != nil {
		f.inFlight()
	}
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].IsRead = true
	}
	return nil
}

func (f *fakeClient) MarkRead(_ context.Context, _, id int64) error {
	f.record("mark")
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeClient) GetAdminRequests(context.Context, int64) ([]domain.AdminRequest, error) {
	return nil, nil
}

func (f *fakeClient) ResolveAdminRequest(context.Context, int64, int64, domain.Decision) error {
	return nil
}

func TestRefreshCountsUnread(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, fakeIdentity{id: 1}, nil)

	assert.False(t, svc.Loaded())
	require.NoError(t, svc.Refresh(context.Background()))
	assert.True(t, svc.Loaded())
	assert.Len(t, svc.Notifications(), 3)
	assert.Equal(t, 2, svc.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()

	t.Run("count is zero while the request is in flight", func(t *testing.T) {
		client := newFakeClient()
		svc := NewService(client, fakeIdentity{id: 1}, nil)
		require.NoError(t, svc.Refresh(ctx))

		var during int
		client.inFlight = func() { during = svc.UnreadCount() }

		require.NoError(t, svc.MarkAllRead(ctx))
		assert.Equal(t, 0, during)
		assert.Equal(t, 0, svc.UnreadCount())
		assert.Equal(t, []string{"get", "mark_all", "get"}, client.calls)
	})

	t.Run("failed request restores count", func(t *testing.T) {
		client := newFakeClient()
		client.markErr = &domain.NetworkError{Op: "mark notifications read", StatusCode: 500}
		svc := NewService(client, fakeIdentity{id: 1}, nil)
		require.NoError(t, svc.Refresh(ctx))

		var during int
		client.inFlight = func() { during = svc.UnreadCount() }

		err := svc.MarkAllRead(ctx)
		var netErr *domain.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, 0, during)
		assert.Equal(t, 2, svc.UnreadCount())
	})

	t.Run("refresh failure keeps the accepted mark", func(t *testing.T) {
		client := newFakeClient()
		svc := NewService(client, fakeIdentity{id: 1}, nil)
		require.NoError(t, svc.Refresh(ctx))

		client.inFlight = func() {
			client.mu.Lock()
			client.getErr = errors.New("offline")
			client.mu.Unlock()
		}

		require.Error(t, svc.MarkAllRead(ctx))
		assert.Equal(t, 0, svc.UnreadCount())
	})

	t.Run("reentrant call is rejected", func(t *testing.T) {
		client := newFakeClient()
		svc := NewService(client, fakeIdentity{id: 1}, nil)

		var nested error
		client.inFlight = func() { nested = svc.MarkAllRead(ctx) }

		require.NoError(t, svc.MarkAllRead(ctx))
		assert.ErrorIs(t, nested, domain.ErrActionInFlight)
	})

	t.Run("anonymous", func(t *testing.T) {
		client := newFakeClient()
		svc := NewService(client, fakeIdentity{}, nil)

		assert.ErrorIs(t, svc.MarkAllRead(ctx), domain.ErrNoSession)
		assert.ErrorIs(t, svc.Refresh(ctx), domain.ErrNoSession)
		assert.Empty(t, client.calls)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	svc := NewService(client, fakeIdentity{id: 1}, nil)
	require.NoError(t, svc.Refresh(ctx))

	assert.ErrorIs(t, svc.MarkRead(ctx, 42), domain.ErrNotFound)

	require.NoError(t, svc.MarkRead(ctx, 1))
	n, ok := svc.Notification(1)
	require.True(t, ok)
	assert.True(t, n.IsRead)
	assert.Equal(t, 1, svc.UnreadCount())
}

func TestReset(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, fakeIdentity{id: 1}, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	svc.Reset()
	assert.Empty(t, svc.Notifications())
	assert.Equal(t, 0, svc.UnreadCount())
	assert.False(t, svc.Loaded())
}
