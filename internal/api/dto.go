package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID accepts an identifier encoded as a JSON number or numeric string
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n)
	return nil
}

// Time accepts the timestamp layouts the endpoints emit; null and empty
// strings decode to the zero time
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// list decodes either a bare JSON array or an object holding the array
// under key
type list[T any] struct {
	key   string
	Items []T
}

func newList[T any](key string) *list[T] {
	return &list[T]{key: key}
}

func (l *list[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	raw, ok := envelope[l.key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		l.Items = nil
		return nil
	}
	return json.Unmarshal(raw, &l.Items)
}

// SessionDTO is the auth endpoint's success body
type SessionDTO struct {
	ID           ID     `json:"id"`
	Username     string `json:"username"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	IsAdmin      bool   `json:"is_admin"`
	City         string `json:"city"`
	BirthDate    Time   `json:"birth_date"`
	AvatarURL    string `json:"avatar_url"`
	Bio          string `json:"bio"`
	EmailVisible bool   `json:"email_visible"`
	CreatedAt    Time   `json:"created_at"`
	AuthToken    string `json:"auth_token"`
}

// UserDTO is a user as embedded in friends, search, post authors and requests
type UserDTO struct {
	ID           ID     `json:"id"`
	UserID       ID     `json:"user_id"`
	Username     string `json:"username"`
	Phone        string `json:"phone"`
	FullName     string `json:"full_name"`
	City         string `json:"city"`
	Email        string `json:"email"`
	BirthDate    Time   `json:"birth_date"`
	AvatarURL    string `json:"avatar_url"`
	Bio          string `json:"bio"`
	EmailVisible bool   `json:"email_visible"`
}

// PostDTO is an element of {posts: [...]}
type PostDTO struct {
	ID            ID       `json:"id"`
	UserID        ID       `json:"user_id"`
	Content       string   `json:"content"`
	ImageURL      string   `json:"image_url"`
	LikesCount    int      `json:"likes_count"`
	CommentsCount int      `json:"comments_count"`
	CreatedAt     Time     `json:"created_at"`
	Author        *UserDTO `json:"author"`
}

// CommunityDTO is an element of {communities: [...]}
type CommunityDTO struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	AvatarURL    string `json:"avatar_url"`
	Color        string `json:"color"`
	MembersCount int    `json:"members_count"`
	IsMember     bool   `json:"is_member"`
}

// FriendRequestDTO is an element of the pending requests list
type FriendRequestDTO struct {
	ID        ID     `json:"id"`
	UserID    ID     `json:"user_id"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt Time   `json:"created_at"`
}

// NotificationDTO is an element of {notifications: [...]}
type NotificationDTO struct {
	ID          ID       `json:"id"`
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Message     string   `json:"message"`
	IsRead      bool     `json:"is_read"`
	CreatedAt   Time     `json:"created_at"`
	RelatedUser *UserDTO `json:"related_user"`
}

// AdminRequestDTO is an element of {requests: [...]}
type AdminRequestDTO struct {
	ID        ID     `json:"id"`
	UserID    ID     `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt Time   `json:"created_at"`
}

// PlaylistDTO is an element of {playlists: [...]}
type PlaylistDTO struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	IsPublic    bool   `json:"is_public"`
	CreatedAt   Time   `json:"created_at"`
	TrackCount  int    `json:"track_count"`
}

// TrackDTO is an element of {tracks: [...]}; duration is in seconds
type TrackDTO struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	URL      string `json:"url"`
	Duration int    `json:"duration"`
	Position int    `json:"position"`
}
