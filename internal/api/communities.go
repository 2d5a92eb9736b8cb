package api

import (
	"context"
	"net/url"

	"github.com/mmcdole/huddle/internal/domain"
)

type communityRequest struct {
	Action      string `json:"action"`
	UserID      int64  `json:"user_id,omitempty"`
	CommunityID int64  `json:"community_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedBy   int64  `json:"created_by,omitempty"`
}

// GetCommunities returns every community with is_member computed for viewerID
func (c *Client) GetCommunities(ctx context.Context, viewerID int64) ([]domain.Community, error) {
	query := url.Values{}
	query.Set("user_id", idParam(viewerID))

	resp := newList[CommunityDTO]("communities")
	if err := c.get(ctx, "get communities", c.endpoints.Communities, query, resp); err != nil {
		return nil, err
	}
	return MapCommunities(resp.Items), nil
}

func (c *Client) GetCommunityPosts(ctx context.Context, communityID int64) ([]domain.Post, error) {
	query := url.Values{}
	query.Set("action", "get_posts")
	query.Set("community_id", idParam(communityID))

	resp := newList[PostDTO]("posts")
	if err := c.get(ctx, "get community posts", c.endpoints.Communities, query, resp); err != nil {
		return nil, err
	}
	return MapPosts(resp.Items), nil
}

func (c *Client) JoinCommunity(ctx context.Context, actorID, communityID int64) error {
	return c.post(ctx, "join community", c.endpoints.Communities, communityRequest{
		Action:      "join",
		UserID:      actorID,
		CommunityID: communityID,
	}, nil)
}

func (c *Client) LeaveCommunity(ctx context.Context, actorID, communityID int64) error {
	return c.post(ctx, "leave community", c.endpoints.Communities, communityRequest{
		Action:      "leave",
		UserID:      actorID,
		CommunityID: communityID,
	}, nil)
}

func (c *Client) CreateCommunity(ctx context.Context, actorID int64, name, description string) error {
	return c.post(ctx, "create community", c.endpoints.Communities, communityRequest{
		Action:      "create",
		UserID:      actorID,
		Name:        name,
		Description: description,
		CreatedBy:   actorID,
	}, nil)
}
