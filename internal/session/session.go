// Package session owns the authenticated identity: it is the single writer
// of the live Session and of the persisted liked-post set.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/validate"
)

// State is the authentication lifecycle state
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProfilePatch is a partial, client-local profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	City         *string
	BirthDate    *time.Time
	EmailVisible *bool
	AvatarURL    *string
}

// Store is the Session Store
type Store struct {
	auth    domain.AuthClient
	storage domain.Store
	admins  []string
	now     func() time.Time
	logger  *slog.Logger
	likes   *LikedPosts

	mu         sync.RWMutex
	state      State
	current    *domain.Session
	generation uint64 // bumped by Logout so an in-flight Authenticate can tell it was superseded
	resetters  []domain.Resetter
}

// Option configures a Store
type Option func(*Store)

// WithAdminIdentities lists usernames or phones treated as privileged
func WithAdminIdentities(identities []string) Option {
	return func(s *Store) { s.admins = append([]string(nil), identities...) }
}

// WithClock overrides the clock used for age checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Session Store in the Anonymous state
func NewStore(auth domain.AuthClient, storage domain.Store, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		auth:    auth,
		storage: storage,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.likes = newLikedPosts(storage, logger)
	return s
}

// OnLogout registers caches to be emptied whenever the session ends
func (s *Store) OnLogout(resetters ...domain.Resetter) {
	s.mu.Lock()
	s.resetters = append(s.resetters, resetters...)
	s.mu.Unlock()
}

// Likes returns the persisted liked-post guard
func (s *Store) Likes() *LikedPosts {
	return s.likes
}

// Restore loads a previously persisted session. It never fails: storage
// problems are logged and treated as no session.
func (s *Store) Restore() (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Authenticated && s.current != nil {
		return copySession(s.current), true
	}
	if s.state == Authenticating {
		return nil, false
	}

	sess, ok := s.storage.LoadSession()
	if !ok {
		s.logger.Debug("no persisted session")
		return nil, false
	}

	s.current = sess
	s.state = Authenticated
	s.likes.load()
	s.logger.Info("restored session", "user_id", sess.ID)
	return copySession(sess), true
}

// Authenticate validates credentials locally, then logs in or registers.
// On failure the prior session state is kept.
func (s *Store) Authenticate(ctx context.Context, mode domain.AuthMode, creds domain.Credentials) (*domain.Session, error) {
	var err error
	switch mode {
	case domain.ModeLogin:
		creds.Username = strings.TrimSpace(creds.Username)
		creds.Phone = validate.NormalizePhone(creds.Phone)
		err = validate.Login(creds)
	case domain.ModeRegister:
		creds, err = validate.Registration(creds, s.now())
	default:
		err = &domain.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state == Authenticating {
		s.mu.Unlock()
		return nil, domain.ErrAuthInProgress
	}
	prevState := s.state
	gen := s.generation
	s.state = Authenticating
	s.mu.Unlock()

	s.logger.Info("authenticating", "mode", mode, "identifier", creds.Identifier())
	sess, err := s.auth.Authenticate(ctx, mode, creds)

	s.mu.Lock()
	if s.generation != gen {
		// Logout ran while the request was in flight; it already set Anonymous
		s.mu.Unlock()
		return nil, &domain.AuthError{Reason: "cancelled by logout", Err: context.Canceled}
	}
	if err != nil {
		s.state = prevState
		s.mu.Unlock()
		s.logger.Warn("authentication failed", "mode", mode, "error", err)
		return nil, err
	}

	prev := s.current
	s.current = sess
	s.state = Authenticated
	var resetters []domain.Resetter
	if prev != nil && prev.ID != sess.ID {
		resetters = append(resetters, s.resetters...)
	}
	s.mu.Unlock()

	if len(resetters) > 0 {
		// A different account replaced the previous one
		s.likes.clear()
		for _, r := range resetters {
			r.Reset()
		}
	}
	if err := s.storage.SaveSession(sess); err != nil {
		s.logger.Error("failed to persist session", "error", err)
	}
	s.likes.load()

	s.logger.Info("authenticated", "user_id", sess.ID)
	return copySession(sess), nil
}

// Logout ends the session, clears durable storage and empties every
// registered cache. It is safe to call when already logged out.
func (s *Store) Logout() error {
	s.mu.Lock()
	wasAuthenticated := s.current != nil
	s.current = nil
	s.state = Anonymous
	s.generation++
	resetters := append([]domain.Resetter(nil), s.resetters...)
	s.mu.Unlock()

	var errs []error
	if err := s.storage.ClearSession(); err != nil {
		errs = append(errs, fmt.Errorf("clear session: %w", err))
	}
	if err := s.likes.clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear liked posts: %w", err))
	}
	for _, r := range resetters {
		r.Reset()
	}

	if wasAuthenticated {
		s.logger.Info("logged out")
	}
	err := errors.Join(errs...)
	if err != nil {
		s.logger.Error("logout left persisted data behind", "error", err)
	}
	return err
}

// UpdateProfile merges patch into the current session and re-persists it.
// The update is client-local; nothing is sent to the server.
func (s *Store) UpdateProfile(patch ProfilePatch) (*domain.Session, error) {
	if patch.BirthDate != nil {
		if err := validate.BirthDate(*patch.BirthDate, s.now()); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, domain.ErrNoSession
	}

	updated := copySession(s.current)
	if patch.City != nil {
		updated.City = strings.TrimSpace(*patch.City)
	}
	if patch.BirthDate != nil {
		updated.BirthDate = *patch.BirthDate
	}
	if patch.EmailVisible != nil {
		updated.EmailVisible = *patch.EmailVisible
	}
	if patch.AvatarURL != nil {
		updated.AvatarURL = strings.TrimSpace(*patch.AvatarURL)
	}

	if err := s.storage.SaveSession(updated); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	s.current = updated
	return copySession(updated), nil
}

// Current returns a copy of the live session
func (s *Store) Current() (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return copySession(s.current), true
}

// ActorID returns the session user id, or ErrNoSession when anonymous
func (s *Store) ActorID() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0, domain.ErrNoSession
	}
	return s.current.ID, nil
}

// State returns the lifecycle state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsPrivileged reports whether the session may see the admin queue. The
// server remains the authority; this only gates the client affordance.
func (s *Store) IsPrivileged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false
	}
	if s.current.IsAdmin {
		return true
	}
	for _, handle := range []string{s.current.Username, s.current.Phone} {
		if handle == "" {
			continue
		}
		for _, admin := range s.admins {
			if strings.EqualFold(strings.TrimSpace(admin), handle) {
				return true
			}
		}
	}
	return false
}

func copySession(sess *domain.Session) *domain.Session {
	cp := *sess
	return &cp
}

var _ domain.Identity = (*Store)(nil)
