// Package admin holds the moderation queue. It is only reachable by
// privileged sessions; the server still has the final say.
package admin

import (
	"context"
	"log/slog"

	"github.com/mmcdole/huddle/internal/cache"
	"github.com/mmcdole/huddle/internal/domain"
)

// Privileged is the identity check gating every admin operation
type Privileged interface {
	domain.Identity
	IsPrivileged() bool
}

// Service caches admin requests for privileged sessions
type Service struct {
	client   domain.NotificationClient
	identity Privileged
	logger   *slog.Logger

	requests  cache.Collection[domain.AdminRequest]
	resolving cache.KeySet[int64]
}

// NewService creates a new admin service
func NewService(client domain.NotificationClient, identity Privileged, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, identity: identity, logger: logger}
}

// Reset drops the cached queue
func (s *Service) Reset() {
	s.requests.Reset()
}

// Refresh pulls the queue. Non-privileged sessions get an
// AuthorizationError and no request is sent.
func (s *Service) Refresh(ctx context.Context) error {
	actorID, err := s.authorize("view admin requests")
	if err != nil {
		return err
	}
	_, err = cache.Refresh(ctx, &s.requests, func(ctx context.Context) ([]domain.AdminRequest, error) {
		return s.client.GetAdminRequests(ctx, actorID)
	})
	if err != nil {
		s.logger.Error("failed to refresh admin requests", "error", err)
		return err
	}
	return nil
}

// Resolve approves or rejects a request and refreshes the queue
func (s *Service) Resolve(ctx context.Context, requestID int64, decision domain.Decision) error {
	if _, err := s.authorize("resolve admin requests"); err != nil {
		return err
	}
	if !decision.Valid() {
		return &domain.ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}
	if !s.resolving.Acquire(requestID) {
		return domain.ErrActionInFlight
	}
	defer s.resolving.Release(requestID)

	err := cache.Dispatch(ctx, s.identity, "resolve admin request",
		func(ctx context.Context, actorID int64) error {
			return s.client.ResolveAdminRequest(ctx, actorID, requestID, decision)
		},
		s.Refresh)
	if err != nil {
		s.logger.Error("failed to resolve admin request", "request_id", requestID, "error", err)
		return err
	}
	s.logger.Info("resolved admin request", "request_id", requestID, "decision", string(decision))
	return nil
}

// Visible reports whether the queue should be shown at all
func (s *Service) Visible() bool {
	return s.identity.IsPrivileged()
}

// Requests returns the cached queue, or nothing when the session is not privileged
func (s *Service) Requests() []domain.AdminRequest {
	if !s.Visible() {
		return nil
	}
	return s.requests.Snapshot()
}

// Pending returns the requests still awaiting a decision
func (s *Service) Pending() []domain.AdminRequest {
	var out []domain.AdminRequest
	for _, r := range s.Requests() {
		if r.Status == domain.AdminRequestPending {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) authorize(action string) (int64, error) {
	actorID, err := cache.ActorID(s.identity)
	if err != nil {
		return 0, err
	}
	if !s.identity.IsPrivileged() {
		return 0, &domain.AuthorizationError{Action: action}
	}
	return actorID, nil
}

var _ domain.Resetter = (*Service)(nil)
