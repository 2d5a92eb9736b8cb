package api

import (
	"context"
	"net/url"

	"github.com/mmcdole/huddle/internal/domain"
)

const feedPageSize = "50"

type postRequest struct {
	Action   string `json:"action"`
	UserID   int64  `json:"user_id"`
	PostID   int64  `json:"post_id,omitempty"`
	Content  string `json:"content,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// GetPosts returns the newest posts, restricted to one author when authorID is set
func (c *Client) GetPosts(ctx context.Context, authorID int64) ([]domain.Post, error) {
	query := url.Values{}
	query.Set("limit", feedPageSize)
	query.Set("offset", "0")
	if authorID != 0 {
		query.Set("user_id", idParam(authorID))
	}

	resp := newList[PostDTO]("posts")
	if err := c.get(ctx, "get posts", c.endpoints.Posts, query, resp); err != nil {
		return nil, err
	}
	return MapPosts(resp.Items), nil
}

func (c *Client) CreatePost(ctx context.Context, actorID int64, content, imageURL string) error {
	return c.post(ctx, "create post", c.endpoints.Posts, postRequest{
		Action:   "create",
		UserID:   actorID,
		Content:  content,
		ImageURL: imageURL,
	}, nil)
}

func (c *Client) LikePost(ctx context.Context, actorID, postID int64) error {
	return c.post(ctx, "like post", c.endpoints.Posts, postRequest{
		Action: "like",
		UserID: actorID,
		PostID: postID,
	}, nil)
}

func (c *Client) CommentPost(ctx context.Context, actorID, postID int64, content string) error {
	return c.post(ctx, "comment post", c.endpoints.Posts, postRequest{
		Action:  "comment",
		UserID:  actorID,
		PostID:  postID,
		Content: content,
	}, nil)
}
