package cache

import (
	"context"
	"fmt"

	"github.com/mmcdole/huddle/internal/domain"
)

// RefreshError reports a mutation the server accepted whose follow-up
// refresh failed. The cache still holds the pre-mutation contents.
type RefreshError struct {
	Op  string
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s succeeded but refresh failed: %v", e.Op, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// ActorID returns the live session id, or ErrNoSession
func ActorID(identity domain.Identity) (int64, error) {
	sess, ok := identity.Current()
	if !ok || sess.ID == 0 {
		return 0, domain.ErrNoSession
	}
	return sess.ID, nil
}

// Dispatch runs a mutation: require a session, send the request with the
// session id as actor, then refresh the owning collection. The refresh
// never starts before send has returned. If send fails nothing is
// refreshed and the error is returned as is.
func Dispatch(ctx context.Context, identity domain.Identity, op string,
	send func(ctx context.Context, actorID int64) error,
	refresh func(ctx context.Context) error,
) error {
	actorID, err := ActorID(identity)
	if err != nil {
		return err
	}
	if err := send(ctx, actorID); err != nil {
		return err
	}
	if refresh == nil {
		return nil
	}
	if err := refresh(ctx); err != nil {
		return &RefreshError{Op: op, Err: err}
	}
	return nil
}
