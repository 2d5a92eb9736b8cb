package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/huddle/internal/config"
	"github.com/mmcdole/huddle/internal/domain"
)

// newTestClient serves the five endpoints from one chi router
func newTestClient(t *testing.T, routes func(r chi.Router)) (*Client, *httptest.Server) {
	t.Helper()
	r := chi.NewRouter()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client := NewClient(config.EndpointsConfig{
		Auth:          srv.URL + "/auth",
		Posts:         srv.URL + "/posts",
		Communities:   srv.URL + "/communities",
		Friends:       srv.URL + "/friends",
		Notifications: srv.URL + "/notifications",
	}, 5*time.Second, nil)
	return client, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

type staticIdentity struct {
	sess *domain.Session
}

func (s staticIdentity) Current() (*domain.Session, bool) {
	if s.sess == nil {
		return nil, false
	}
	cp := *s.sess
	return &cp, true
}

func TestAuthenticate(t *testing.T) {
	t.Run("login success", func(t *testing.T) {
		var got map[string]any
		client, _ := newTestClient(t, func(r chi.Router) {
			r.Post("/auth", func(w http.ResponseWriter, r *http.Request) {
				got = decodeBody(t, r)
				assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
				writeJSON(w, http.StatusOK, map[string]any{
					"id":         "42",
					"username":   "alice",
					"email":      "alice@example.com",
					"full_name":  "Alice Liddell",
					"is_admin":   false,
					"created_at": "2024-05-01T10:00:00.123456",
					"auth_token": "tok",
				})
			})
		})

		sess, err := client.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{
			Username: "alice",
			Password: "Abcdef12",
			Email:    "ignored@example.com",
		})
		require.NoError(t, err)

		assert.Equal(t, "login", got["action"])
		assert.Equal(t, "alice", got["username"])
		assert.Equal(t, "Abcdef12", got["password"])
		assert.NotContains(t, got, "email", "login does not send registration fields")

		assert.Equal(t, int64(42), sess.ID)
		assert.Equal(t, "Alice Liddell", sess.DisplayName())
		assert.Equal(t, "tok", sess.AuthToken)
		assert.Equal(t, 2024, sess.CreatedAt.Year())
	})

	t.Run("register sends profile fields", func(t *testing.T) {
		var got map[string]any
		client, _ := newTestClient(t, func(r chi.Router) {
			r.Post("/auth", func(w http.ResponseWriter, r *http.Request) {
				got = decodeBody(t, r)
				writeJSON(w, http.StatusCreated, map[string]any{"id": 7, "phone": "+79991234567"})
			})
		})

		sess, err := client.Authenticate(context.Background(), domain.ModeRegister, domain.Credentials{
			Phone:        "+79991234567",
			Password:     "Abcdef12",
			FullName:     "Bob",
			BirthDate:    time.Date(2000, 3, 4, 0, 0, 0, 0, time.UTC),
			AgeConfirmed: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "register", got["action"])
		assert.Equal(t, "2000-03-04", got["birth_date"])
		assert.Equal(t, "Bob", got["full_name"])
		assert.Equal(t, "+79991234567", sess.Handle())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		client, _ := newTestClient(t, func(r chi.Router) {
			r.Post("/auth", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			})
		})

		_, err := client.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
		var aerr *domain.AuthError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, "Invalid credentials", aerr.Reason)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		client, srv := newTestClient(t, func(r chi.Router) {})
		srv.Close()

		_, err := client.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
		var aerr *domain.AuthError
		require.True(t, errors.As(err, &aerr))
		var nerr *domain.NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Zero(t, nerr.StatusCode)
	})

	t.Run("response without id", func(t *testing.T) {
		client, _ := newTestClient(t, func(r chi.Router) {
			r.Post("/auth", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"username": "ghost"})
			})
		})

		_, err := client.Authenticate(context.Background(), domain.ModeLogin, domain.Credentials{Username: "a", Password: "b"})
		var aerr *domain.AuthError
		assert.True(t, errors.As(err, &aerr))
	})
}

func TestGetPosts(t *testing.T) {
	client, _ := newTestClient(t, func(r chi.Router) {
		r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			assert.Equal(t, "9", r.URL.Query().Get("user_id"))
			writeJSON(w, http.StatusOK, map[string]any{
				"posts": []map[string]any{
					{
						"id": 1, "content": "hello", "likes_count": 3, "comments_count": 1,
						"created_at": "2024-05-01T10:00:00",
						"author":     map[string]any{"id": 9, "username": "carol", "full_name": "Carol"},
					},
					{"id": 0, "content": "dropped"},
					{"id": "2", "user_id": 9, "content": "no author", "likes_count": -1},
				},
			})
		})
	})

	posts, err := client.GetPosts(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, int64(1), posts[0].ID)
	assert.Equal(t, int64(9), posts[0].AuthorID)
	assert.Equal(t, "Carol", posts[0].AuthorDisplayName)
	assert.Equal(t, "carol", posts[0].AuthorUsername)
	assert.Equal(t, 3, posts[0].LikeCount)

	assert.Equal(t, int64(2), posts[1].ID)
	assert.Equal(t, int64(9), posts[1].AuthorID)
	assert.Equal(t, 0, posts[1].LikeCount, "negative counts are clamped")
}

func TestGetFriendsAcceptsBareArray(t *testing.T) {
	client, _ := newTestClient(t, func(r chi.Router) {
		r.Get("/friends", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("type") == "pending" {
				writeJSON(w, http.StatusOK, []map[string]any{
					{"id": 5, "user_id": 11, "username": "dave", "created_at": "2024-05-01T10:00:00"},
				})
				return
			}
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 3, "username": "erin", "full_name": "Erin", "bio": "hi"},
			})
		})
	})

	friends, err := client.GetFriends(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Erin", friends[0].DisplayName)

	requests, err := client.GetFriendRequests(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, int64(11), requests[0].From.ID)
	assert.Equal(t, "dave", requests[0].From.DisplayName)
}

func TestSearchUsers(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(r chi.Router) {
		r.Get("/friends", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "search", r.URL.Query().Get("action"))
			assert.Equal(t, "ali ce", r.URL.Query().Get("query"))
			writeJSON(w, http.StatusOK, map[string]any{"users": []map[string]any{{"id": 4, "phone": "+15551234567"}}})
		})
	})

	users, err := client.SearchUsers(context.Background(), "ali ce")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "+15551234567", users[0].DisplayName)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMutationsSendActorAndAction(t *testing.T) {
	bodies := make(chan map[string]any, 8)
	client, _ := newTestClient(t, func(r chi.Router) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			bodies <- decodeBody(t, r)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		}
		r.Post("/posts", handler)
		r.Post("/communities", handler)
		r.Post("/friends", handler)
		r.Post("/notifications", handler)
	})
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		expect map[string]any
	}{
		{"like", func() error { return client.LikePost(ctx, 1, 10) }, map[string]any{"action": "like", "user_id": 1.0, "post_id": 10.0}},
		{"join", func() error { return client.JoinCommunity(ctx, 1, 20) }, map[string]any{"action": "join", "community_id": 20.0}},
		{"leave", func() error { return client.LeaveCommunity(ctx, 1, 20) }, map[string]any{"action": "leave", "user_id": 1.0}},
		{"add friend", func() error { return client.AddFriend(ctx, 1, 30) }, map[string]any{"action": "add", "friend_id": 30.0}},
		{"remove friend", func() error { return client.RemoveFriend(ctx, 1, 30) }, map[string]any{"action": "remove", "friend_id": 30.0}},
		{"mark all read", func() error { return client.MarkAllRead(ctx, 1) }, map[string]any{"action": "mark_read", "user_id": 1.0}},
		{"resolve", func() error { return client.ResolveAdminRequest(ctx, 1, 40, domain.DecisionReject) }, map[string]any{"action": "resolve_admin_request", "request_id": 40.0, "decision": "reject"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			body := <-bodies
			for k, v := range tt.expect {
				assert.Equal(t, v, body[k], k)
			}
		})
	}

	t.Run("mark all read omits notification id", func(t *testing.T) {
		require.NoError(t, client.MarkAllRead(ctx, 1))
		assert.NotContains(t, <-bodies, "notification_id")
	})
}

func TestNetworkErrors(t *testing.T) {
	client, _ := newTestClient(t, func(r chi.Router) {
		r.Post("/communities", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Already a member"})
		})
		r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>not json</html>"))
		})
		r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	})

	t.Run("status and message", func(t *testing.T) {
		err := client.JoinCommunity(context.Background(), 1, 2)
		var nerr *domain.NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Equal(t, http.StatusBadRequest, nerr.StatusCode)
		assert.Equal(t, "Already a member", nerr.Message)
		assert.Equal(t, "join community: status 400: Already a member", err.Error())
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := client.GetNotifications(context.Background(), 1)
		var nerr *domain.NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Zero(t, nerr.StatusCode)
	})

	t.Run("unauthorized", func(t *testing.T) {
		_, err := client.GetPosts(context.Background(), 0)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestIdentityHeaders(t *testing.T) {
	headers := make(chan http.Header, 2)
	client, _ := newTestClient(t, func(r chi.Router) {
		r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			writeJSON(w, http.StatusOK, map[string]any{"notifications": []any{}, "unread_count": 0})
		})
	})

	_, err := client.GetNotifications(context.Background(), 1)
	require.NoError(t, err)
	h := <-headers
	assert.Empty(t, h.Get("X-User-Id"), "anonymous requests carry no identity")
	assert.Equal(t, client.ClientID(), h.Get("X-Client-Id"))

	client.SetIdentity(staticIdentity{sess: &domain.Session{ID: 77, AuthToken: "secret"}})
	_, err = client.GetNotifications(context.Background(), 77)
	require.NoError(t, err)
	h = <-headers
	assert.Equal(t, "77", h.Get("X-User-Id"))
	assert.Equal(t, "secret", h.Get("X-Auth-Token"))
}

func TestAdminRequestsAndPlaylists(t *testing.T) {
	client, _ := newTestClient(t, func(r chi.Router) {
		r.Post("/notifications", func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			assert.Equal(t, "get_admin_requests", body["action"])
			writeJSON(w, http.StatusOK, map[string]any{"requests": []map[string]any{
				{"id": 1, "user_id": 2, "username": "frank", "message": "please", "status": "APPROVED"},
				{"id": 2, "user_id": 3, "status": "weird"},
			}})
		})
		r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "playlists", q.Get("type"))
			if q.Get("playlist_id") != "" {
				writeJSON(w, http.StatusOK, map[string]any{"tracks": []map[string]any{
					{"id": 1, "title": "Song", "artist": "Band", "duration": 185, "position": 1},
				}})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"playlists": []map[string]any{
				{"id": 8, "name": "Mix", "is_public": true, "track_count": 12},
			}})
		})
	})

	requests, err := client.GetAdminRequests(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, domain.AdminRequestApproved, requests[0].Status)
	assert.Equal(t, domain.AdminRequestPending, requests[1].Status)

	playlists, err := client.GetPlaylists(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, 12, playlists[0].TrackCount)

	tracks, err := client.GetTracks(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "3:05", tracks[0].FormattedDuration())
}
