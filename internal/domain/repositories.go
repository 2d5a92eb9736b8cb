package domain

import (
	"context"
	"time"
)

// AuthMode selects between logging in and registering
type AuthMode string

const (
	ModeLogin    AuthMode = "login"
	ModeRegister AuthMode = "register"
)

// Credentials carries everything the auth endpoint accepts. Login uses the
// identifier (Username or Phone) and Password; registration uses the rest.
type Credentials struct {
	Username     string
	Phone        string
	Email        string
	Password     string
	FullName     string
	BirthDate    time.Time
	AgeConfirmed bool
}

// Identifier returns the login handle: the phone when set, the username otherwise
func (c Credentials) Identifier() string {
	if c.Phone != "" {
		return c.Phone
	}
	return c.Username
}

// AuthClient talks to the auth endpoint
type AuthClient interface {
	Authenticate(ctx context.Context, mode AuthMode, creds Credentials) (*Session, error)
}

// PostClient talks to the posts endpoint
type PostClient interface {
	// GetPosts returns the feed; authorID 0 means all authors
	GetPosts(ctx context.Context, authorID int64) ([]Post, error)
	CreatePost(ctx context.Context, actorID int64, content, imageURL string) error
	LikePost(ctx context.Context, actorID, postID int64) error
	CommentPost(ctx context.Context, actorID, postID int64, content string) error
}

// CommunityClient talks to the communities endpoint
type CommunityClient interface {
	GetCommunities(ctx context.Context, viewerID int64) ([]Community, error)
	GetCommunityPosts(ctx context.Context, communityID int64) ([]Post, error)
	JoinCommunity(ctx context.Context, actorID, communityID int64) error
	LeaveCommunity(ctx context.Context, actorID, communityID int64) error
	CreateCommunity(ctx context.Context, actorID int64, name, description string) error
}

// FriendClient talks to the friends endpoint
type FriendClient interface {
	GetFriends(ctx context.Context, userID int64) ([]Friend, error)
	SearchUsers(ctx context.Context, query string) ([]UserCard, error)
	AddFriend(ctx context.Context, actorID, friendID int64) error
	RemoveFriend(ctx context.Context, actorID, friendID int64) error
	GetFriendRequests(ctx context.Context, userID int64) ([]FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, actorID, fromID int64) error
	RejectFriendRequest(ctx context.Context, actorID, fromID int64) error
}

// NotificationClient talks to the notifications endpoint, which also
// serves the privileged admin request queue
type NotificationClient interface {
	GetNotifications(ctx context.Context, userID int64) ([]Notification, error)
	MarkAllRead(ctx context.Context, userID int64) error
	MarkRead(ctx context.Context, userID, notificationID int64) error
	GetAdminRequests(ctx context.Context, actorID int64) ([]AdminRequest, error)
	ResolveAdminRequest(ctx context.Context, actorID, requestID int64, decision Decision) error
}
