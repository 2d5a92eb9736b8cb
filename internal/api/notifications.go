package api

import (
	"context"
	"net/url"

	"github.com/mmcdole/huddle/internal/domain"
)

type notificationRequest struct {
	Action         string `json:"action"`
	UserID         int64  `json:"user_id"`
	NotificationID int64  `json:"notification_id,omitempty"`
	RequestID      int64  `json:"request_id,omitempty"`
	Decision       string `json:"decision,omitempty"`
}

func (c *Client) GetNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	query := url.Values{}
	query.Set("user_id", idParam(userID))

	resp := newList[NotificationDTO]("notifications")
	if err := c.get(ctx, "get notifications", c.endpoints.Notifications, query, resp); err != nil {
		return nil, err
	}
	return MapNotifications(resp.Items), nil
}

func (c *Client) MarkAllRead(ctx context.Context, userID int64) error {
	return c.post(ctx, "mark all read", c.endpoints.Notifications, notificationRequest{
		Action: "mark_read",
		UserID: userID,
	}, nil)
}

func (c *Client) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return c.post(ctx, "mark read", c.endpoints.Notifications, notificationRequest{
		Action:         "mark_read",
		UserID:         userID,
		NotificationID: notificationID,
	}, nil)
}

func (c *Client) GetAdminRequests(ctx context.Context, actorID int64) ([]domain.AdminRequest, error) {
	resp := newList[AdminRequestDTO]("requests")
	err := c.post(ctx, "get admin requests", c.endpoints.Notifications, notificationRequest{
		Action: "get_admin_requests",
		UserID: actorID,
	}, resp)
	if err != nil {
		return nil, err
	}
	return MapAdminRequests(resp.Items), nil
}

func (c *Client) ResolveAdminRequest(ctx context.Context, actorID, requestID int64, decision domain.Decision) error {
	return c.post(ctx, "resolve admin request", c.endpoints.Notifications, notificationRequest{
		Action:    "resolve_admin_request",
		UserID:    actorID,
		RequestID: requestID,
		Decision:  string(decision),
	}, nil)
}
