package domain

import (
	"strings"
	"time"
)

// Session is the locally held identity of the authenticated user.
// Exactly one Session is live at a time; it is created by a successful
// login or registration and destroyed on logout.
type Session struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	City         string    `json:"city,omitempty"`
	BirthDate    time.Time `json:"birth_date,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	EmailVisible bool      `json:"email_visible"`
	AuthToken    string    `json:"auth_token,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Handle returns the login identifier shown for the session (username or phone)
func (s Session) Handle() string {
	if s.Username != "" {
		return s.Username
	}
	return s.Phone
}

// DisplayName returns the full name, falling back to the handle
func (s Session) DisplayName() string {
	if strings.TrimSpace(s.FullName) != "" {
		return s.FullName
	}
	return s.Handle()
}

// Card returns the session as a UserCard so it can be rendered like any other profile
func (s Session) Card() UserCard {
	return UserCard{
		ID:           s.ID,
		DisplayName:  s.DisplayName(),
		Username:     s.Username,
		Phone:        s.Phone,
		City:         s.City,
		Email:        s.Email,
		BirthDate:    s.BirthDate,
		AvatarURL:    s.AvatarURL,
		Bio:          s.Bio,
		EmailVisible: s.EmailVisible,
	}
}

// UserCard is the public view of another user. It is used for friends,
// search hits and friend requests.
type UserCard struct {
	ID           int64
	DisplayName  string
	Username     string
	Phone        string
	City         string
	Email        string
	BirthDate    time.Time
	AvatarURL    string
	Bio          string
	EmailVisible bool
}

// Handle returns the username or phone
func (u UserCard) Handle() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Phone
}

// Friend is a user joined to the session by a friendship edge
type Friend = UserCard

// FriendRequest is a pending incoming friendship request
type FriendRequest struct {
	ID        int64
	From      UserCard
	CreatedAt time.Time
}

// Post is an entry in the feed. Posts are never deleted by the client.
type Post struct {
	ID                int64
	AuthorID          int64
	AuthorDisplayName string
	AuthorUsername    string
	Content           string
	ImageURL          string
	CreatedAt         time.Time
	LikeCount         int
	CommentCount      int
}

// Community is a group the session may join. IsMember is a per-viewer flag
// computed by the server for the current session.
type Community struct {
	ID          int64
	Name        string
	Description string
	AvatarURL   string
	Color       string
	MemberCount int
	IsMember    bool
}

// Notification is a pulled (not streamed) notice for the session
type Notification struct {
	ID          int64
	Type        string
	Message     string
	CreatedAt   time.Time
	IsRead      bool
	RelatedUser *UserCard
}

// CountUnread returns the number of unread notifications
func CountUnread(notifications []Notification) int {
	n := 0
	for _, item := range notifications {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// AdminRequestStatus is the review state of an admin request
type AdminRequestStatus string

const (
	AdminRequestPending  AdminRequestStatus = "pending"
	AdminRequestApproved AdminRequestStatus = "approved"
	AdminRequestRejected AdminRequestStatus = "rejected"
)

// AdminRequest is a moderation item visible only to privileged sessions
type AdminRequest struct {
	ID        int64
	UserID    int64
	Username  string
	Message   string
	Status    AdminRequestStatus
	CreatedAt time.Time
}

// Decision is the outcome chosen when resolving an admin request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid reports whether d is a known decision
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}
