package api

import (
	"context"
	"net/url"

	"github.com/mmcdole/huddle/internal/domain"
)

type friendRequest struct {
	Action   string `json:"action"`
	UserID   int64  `json:"user_id"`
	FriendID int64  `json:"friend_id"`
}

func (c *Client) GetFriends(ctx context.Context, userID int64) ([]domain.Friend, error) {
	query := url.Values{}
	query.Set("user_id", idParam(userID))

	resp := newList[UserDTO]("friends")
	if err := c.get(ctx, "get friends", c.endpoints.Friends, query, resp); err != nil {
		return nil, err
	}
	return MapUsers(resp.Items), nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]domain.UserCard, error) {
	params := url.Values{}
	params.Set("action", "search")
	params.Set("query", query)

	resp := newList[UserDTO]("users")
	if err := c.get(ctx, "search users", c.endpoints.Friends, params, resp); err != nil {
		return nil, err
	}
	return MapUsers(resp.Items), nil
}

func (c *Client) AddFriend(ctx context.Context, actorID, friendID int64) error {
	return c.post(ctx, "add friend", c.endpoints.Friends, friendRequest{Action: "add", UserID: actorID, FriendID: friendID}, nil)
}

func (c *Client) RemoveFriend(ctx context.Context, actorID, friendID int64) error {
	return c.post(ctx, "remove friend", c.endpoints.Friends, friendRequest{Action: "remove", UserID: actorID, FriendID: friendID}, nil)
}

// GetFriendRequests returns pending requests addressed to userID
func (c *Client) GetFriendRequests(ctx context.Context, userID int64) ([]domain.FriendRequest, error) {
	query := url.Values{}
	query.Set("user_id", idParam(userID))
	query.Set("type", "pending")

	resp := newList[FriendRequestDTO]("requests")
	if err := c.get(ctx, "get friend requests", c.endpoints.Friends, query, resp); err != nil {
		return nil, err
	}
	return MapFriendRequests(resp.Items), nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, actorID, fromID int64) error {
	return c.post(ctx, "accept friend request", c.endpoints.Friends, friendRequest{Action: "accept", UserID: actorID, FriendID: fromID}, nil)
}

func (c *Client) RejectFriendRequest(ctx context.Context, actorID, fromID int64) error {
	return c.post(ctx, "reject friend request", c.endpoints.Friends, friendRequest{Action: "reject", UserID: actorID, FriendID: fromID}, nil)
}
