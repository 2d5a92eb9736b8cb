package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/huddle/internal/config"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/prefs"
	"github.com/mmcdole/huddle/internal/store"
)

// backend serves the five endpoints with canned data
type backend struct {
	requests        atomic.Int32
	isAdmin         bool
	failCommunities bool
	adminCalls      atomic.Int32
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.requests.Add(1)
			next.ServeHTTP(w, req)
		})
	})

	r.Post("/auth", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 1, "username": "alice", "full_name": "Alice", "is_admin": b.isAdmin, "auth_token": "tok",
		})
	})
	r.Get("/posts", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("type") == "playlists" {
			writeJSON(w, http.StatusOK, map[string]any{"playlists": []map[string]any{{"id": 1, "name": "Run"}}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": []map[string]any{
			{"id": 10, "user_id": 1, "content": "mine"},
			{"id": 11, "user_id": 2, "content": "theirs"},
		}})
	})
	r.Get("/communities", func(w http.ResponseWriter, _ *http.Request) {
		if b.failCommunities {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "db down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"communities": []map[string]any{{"id": 1, "name": "Go"}}})
	})
	r.Get("/friends", func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.URL.Query().Get("action") == "search":
			writeJSON(w, http.StatusOK, map[string]any{"users": []map[string]any{{"id": 3, "username": "carol"}}})
		case req.URL.Query().Get("type") == "pending":
			writeJSON(w, http.StatusOK, map[string]any{"requests": []map[string]any{}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"friends": []map[string]any{{"id": 2, "username": "bob"}}})
		}
	})
	r.Get("/notifications", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"notifications": []map[string]any{
			{"id": 1, "message": "hi", "is_read": false},
		}})
	})
	r.Post("/notifications", func(w http.ResponseWriter, _ *http.Request) {
		b.adminCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"requests": []map[string]any{{"id": 5, "status": "pending"}}})
	})
	return r
}

type nopStream struct{}

func (nopStream) SetVolume(int) error { return nil }
func (nopStream) Close() error        { return nil }

type nopTransport struct{}

func (nopTransport) Open(context.Context, string, int) (domain.AudioStream, error) {
	return nopStream{}, nil
}

type harness struct {
	app     *App
	backend *backend
	storage *store.ClientStore
	prefs   string
}

func newHarness(t *testing.T, b *backend, storage *store.ClientStore) *harness {
	t.Helper()
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)

	if storage == nil {
		var err error
		storage, err = store.NewClientStore("", "")
		require.NoError(t, err)
	}

	cfg := config.DefaultConfig()
	cfg.Storage.Dir = ""
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Endpoints = config.EndpointsConfig{
		Auth:          srv.URL + "/auth",
		Posts:         srv.URL + "/posts",
		Communities:   srv.URL + "/communities",
		Friends:       srv.URL + "/friends",
		Notifications: srv.URL + "/notifications",
	}

	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	a, err := New(cfg, nil,
		WithStore(storage),
		WithTransport(nopTransport{}),
		WithPrefsPath(prefsPath),
		WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	return &harness{app: a, backend: b, storage: storage, prefs: prefsPath}
}

var creds = domain.Credentials{Username: "alice", Password: "Abcdef12"}

func TestLoginHydratesThenLogoutEmpties(t *testing.T) {
	h := newHarness(t, &backend{}, nil)
	ctx := context.Background()

	sess, err := h.app.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.ID)

	assert.Len(t, h.app.Feed.Posts(), 2)
	assert.Len(t, h.app.Communities.Communities(), 1)
	assert.Len(t, h.app.Friends.Friends(), 1)
	assert.Equal(t, 1, h.app.Notifications.UnreadCount())
	assert.Len(t, h.app.Playlists.Playlists(), 1)
	assert.Zero(t, h.backend.adminCalls.Load(), "admin queue is not fetched for regular users")

	posts := h.app.ProfilePosts()
	require.Len(t, posts, 1)
	assert.Equal(t, "mine", posts[0].Content)

	h.app.Profile.View(2)
	posts = h.app.ProfilePosts()
	require.Len(t, posts, 1)
	assert.Equal(t, "theirs", posts[0].Content)

	require.NoError(t, h.app.Logout())
	_, ok := h.app.Session.Current()
	assert.False(t, ok)
	assert.Empty(t, h.app.Feed.Posts())
	assert.Empty(t, h.app.Communities.Communities())
	assert.Empty(t, h.app.Friends.Friends())
	assert.Empty(t, h.app.Notifications.Notifications())
	assert.Empty(t, h.app.Playlists.Playlists())
	assert.Zero(t, h.app.Profile.Viewing())
}

func TestHydrateJoinsIndependentFailures(t *testing.T) {
	h := newHarness(t, &backend{failCommunities: true}, nil)

	_, err := h.app.Login(context.Background(), creds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "communities")

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)

	_, ok := h.app.Session.Current()
	assert.True(t, ok, "session survives a partial hydrate")
	assert.Len(t, h.app.Feed.Posts(), 2)
	assert.Empty(t, h.app.Communities.Communities())
}

func TestAdminQueueHydratedForPrivilegedSession(t *testing.T) {
	h := newHarness(t, &backend{isAdmin: true}, nil)

	_, err := h.app.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.backend.adminCalls.Load())
	assert.True(t, h.app.Admin.Visible())
	assert.Len(t, h.app.Admin.Requests(), 1)
}

func TestRegisterValidationSendsNothing(t *testing.T) {
	h := newHarness(t, &backend{}, nil)

	_, err := h.app.Register(context.Background(), domain.Credentials{
		Username: "alice", Password: "abcdefg1", AgeConfirmed: true,
	})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, h.backend.requests.Load())
}

func TestStartRestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	storage, err := store.NewClientStore("", "")
	require.NoError(t, err)

	first := newHarness(t, &backend{}, storage)
	restored, err := first.app.Start(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Zero(t, first.backend.requests.Load())

	_, err = first.app.Login(ctx, creds)
	require.NoError(t, err)

	second := newHarness(t, &backend{}, storage)
	restored, err = second.app.Start(ctx)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Len(t, second.app.Feed.Posts(), 2)
}

func TestHydrateWithoutSession(t *testing.T) {
	h := newHarness(t, &backend{}, nil)
	assert.ErrorIs(t, h.app.Hydrate(context.Background()), domain.ErrNoSession)
}

func TestRadioPrefsPersist(t *testing.T) {
	h := newHarness(t, &backend{}, nil)

	v, err := h.app.SetVolume(120)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	require.NoError(t, h.app.SelectStation(context.Background(), 2))
	assert.True(t, h.app.Radio.Snapshot().IsPlaying())

	saved := prefs.Load(h.prefs)
	assert.Equal(t, 100, saved.Volume)
	assert.Equal(t, int64(2), saved.LastStation)

	require.NoError(t, h.app.Logout())
	assert.True(t, h.app.Radio.Snapshot().IsPlaying(), "radio is not tied to the session")
}

func TestConcurrentHydrate(t *testing.T) {
	h := newHarness(t, &backend{}, nil)
	ctx := context.Background()
	_, err := h.app.Login(ctx, creds)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.app.Hydrate(ctx))
		}()
	}
	wg.Wait()
	assert.Len(t, h.app.Feed.Posts(), 2)
}
