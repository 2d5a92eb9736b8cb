// Package profile decides which user the profile view shows. It holds
// only the viewed id; user data is read from the session, the search
// results and the friends cache.
package profile

import (
	"sync"
	"time"

	"github.com/mmcdole/huddle/internal/domain"
)

// Directory is where non-self profiles are looked up
type Directory interface {
	SearchResult(id int64) (domain.UserCard, bool)
	Friend(id int64) (domain.Friend, bool)
	IsFriend(id int64) bool
}

// Profile is a resolved view. Private fields the viewer may not see are
// zeroed.
type Profile struct {
	User     domain.UserCard
	Self     bool
	IsFriend bool
}

// ShowsEmail reports whether the email is visible to the viewer
func (p Profile) ShowsEmail() bool {
	return p.User.Email != ""
}

// ShowsBirthDate reports whether the birth date is visible to the viewer
func (p Profile) ShowsBirthDate() bool {
	return !p.User.BirthDate.IsZero()
}

// Resolver tracks the viewed profile
type Resolver struct {
	identity domain.Identity
	dir      Directory

	mu      sync.RWMutex
	viewing int64
}

// NewResolver creates a resolver showing the session's own profile
func NewResolver(identity domain.Identity, dir Directory) *Resolver {
	return &Resolver{identity: identity, dir: dir}
}

// View switches to user id. Viewing yourself is the same as Back.
func (r *Resolver) View(id int64) {
	if sess, ok := r.identity.Current(); ok && sess.ID == id {
		id = 0
	}
	r.mu.Lock()
	r.viewing = id
	r.mu.Unlock()
}

// Back returns to the session's own profile
func (r *Resolver) Back() {
	r.mu.Lock()
	r.viewing = 0
	r.mu.Unlock()
}

// Reset is Back; it lets logout clear the viewed profile
func (r *Resolver) Reset() {
	r.Back()
}

// Viewing returns the viewed user id, or 0 for self
func (r *Resolver) Viewing() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.viewing
}

// Resolve returns the currently viewed profile
func (r *Resolver) Resolve() (Profile, error) {
	return r.ResolveID(r.Viewing())
}

// ResolveID resolves id without changing the view. 0 means self; other
// ids are looked up in the search results first, then among friends.
func (r *Resolver) ResolveID(id int64) (Profile, error) {
	sess, ok := r.identity.Current()
	if !ok {
		return Profile{}, domain.ErrNoSession
	}
	if id == 0 || id == sess.ID {
		return Profile{User: sess.Card(), Self: true}, nil
	}

	user, found := r.dir.SearchResult(id)
	if !found {
		user, found = r.dir.Friend(id)
	}
	if !found {
		return Profile{}, domain.ErrNotFound
	}

	friend := r.dir.IsFriend(id)
	if !friend {
		user.BirthDate = time.Time{}
	}
	if !friend || !user.EmailVisible {
		user.Email = ""
	}
	return Profile{User: user, IsFriend: friend}, nil
}

// FeedAuthorID is the author the profile's post list is filtered by
func (r *Resolver) FeedAuthorID() int64 {
	if id := r.Viewing(); id != 0 {
		return id
	}
	if sess, ok := r.identity.Current(); ok {
		return sess.ID
	}
	return 0
}

var _ domain.Resetter = (*Resolver)(nil)
