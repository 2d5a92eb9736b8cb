// Package app wires the session, the collection caches, the radio and the
// profile resolver together and drives the login, hydrate and logout
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/huddle/internal/admin"
	"github.com/mmcdole/huddle/internal/api"
	"github.com/mmcdole/huddle/internal/community"
	"github.com/mmcdole/huddle/internal/config"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/feed"
	"github.com/mmcdole/huddle/internal/friend"
	"github.com/mmcdole/huddle/internal/notify"
	"github.com/mmcdole/huddle/internal/player"
	"github.com/mmcdole/huddle/internal/playlist"
	"github.com/mmcdole/huddle/internal/prefs"
	"github.com/mmcdole/huddle/internal/profile"
	"github.com/mmcdole/huddle/internal/radio"
	"github.com/mmcdole/huddle/internal/session"
	"github.com/mmcdole/huddle/internal/store"
)

// App is the composition root
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *api.Client
	storage domain.Store

	Session       *session.Store
	Feed          *feed.Service
	Communities   *community.Service
	Friends       *friend.Service
	Notifications *notify.Service
	Admin         *admin.Service
	Playlists     *playlist.Service
	Radio         *radio.Controller
	Profile       *profile.Resolver

	prefsPath string
	prefsMu   sync.Mutex
	prefs     prefs.Prefs
}

type options struct {
	transport domain.AudioTransport
	storage   domain.Store
	clock     func() time.Time
	prefsPath string
}

// Option configures New
type Option func(*options)

// WithTransport replaces the external player
func WithTransport(t domain.AudioTransport) Option {
	return func(o *options) { o.transport = t }
}

// WithStore replaces the bbolt client store
func WithStore(s domain.Store) Option {
	return func(o *options) { o.storage = s }
}

// WithClock overrides the clock used for age checks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithPrefsPath overrides where preferences are read and written
func WithPrefsPath(path string) Option {
	return func(o *options) { o.prefsPath = path }
}

// New validates cfg and builds every component. Nothing touches the
// network until Start or Login.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{clock: time.Now, prefsPath: prefs.DefaultPath()}
	for _, opt := range opts {
		opt(&o)
	}

	storage := o.storage
	if storage == nil {
		s, err := store.NewClientStore(cfg.Storage.Dir, cfg.Endpoints.Auth, store.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open client store: %w", err)
		}
		storage = s
	}

	catalog, err := radio.LoadCatalog(cfg.Radio.StationsFile)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	transport := o.transport
	if transport == nil {
		transport = player.New(cfg.Player.Command, cfg.Player.Args, logger)
	}

	client := api.NewClient(cfg.Endpoints, cfg.HTTP.Timeout, logger)
	sess := session.NewStore(client, storage, logger,
		session.WithAdminIdentities(cfg.Admin.Identities),
		session.WithClock(o.clock),
	)
	client.SetIdentity(sess)

	p := prefs.Load(o.prefsPath)

	a := &App{
		cfg:           cfg,
		logger:        logger,
		client:        client,
		storage:       storage,
		Session:       sess,
		Feed:          feed.NewService(client, sess, sess.Likes(), logger),
		Communities:   community.NewService(client, sess, logger),
		Friends:       friend.NewService(client, sess, logger),
		Notifications: notify.NewService(client, sess, logger),
		Admin:         admin.NewService(client, sess, logger),
		Playlists:     playlist.NewService(client, sess, logger),
		Radio:         radio.NewController(catalog, transport, logger, radio.WithVolume(p.Volume)),
		prefsPath:     o.prefsPath,
		prefs:         p,
	}
	a.Profile = profile.NewResolver(sess, a.Friends)

	sess.OnLogout(a.Feed, a.Communities, a.Friends, a.Notifications, a.Admin, a.Playlists, a.Profile)
	return a, nil
}

// Config returns the loaded configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// Prefs returns the current preferences
func (a *App) Prefs() prefs.Prefs {
	a.prefsMu.Lock()
	defer a.prefsMu.Unlock()
	return a.prefs
}

// Start restores a persisted session and hydrates it. It reports whether a
// session was restored; hydration failures do not undo the restore.
func (a *App) Start(ctx context.Context) (bool, error) {
	sess, ok := a.Session.Restore()
	if !ok {
		return false, nil
	}
	a.logger.Info("resuming session", "user_id", sess.ID)
	return true, a.Hydrate(ctx)
}

// Login authenticates with an identifier and password, then hydrates
func (a *App) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return a.authenticate(ctx, domain.ModeLogin, creds)
}

// Register creates an account, then hydrates
func (a *App) Register(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return a.authenticate(ctx, domain.ModeRegister, creds)
}

func (a *App) authenticate(ctx context.Context, mode domain.AuthMode, creds domain.Credentials) (*domain.Session, error) {
	sess, err := a.Session.Authenticate(ctx, mode, creds)
	if err != nil {
		return nil, err
	}
	return sess, a.Hydrate(ctx)
}

// Hydrate refreshes every collection in parallel. One failing collection
// does not stop the others; all failures are joined.
func (a *App) Hydrate(ctx context.Context) error {
	if _, ok := a.Session.Current(); !ok {
		return domain.ErrNoSession
	}

	refreshes := map[string]func(context.Context) error{
		"posts":           a.Feed.Refresh,
		"communities":     a.Communities.Refresh,
		"friends":         a.Friends.Refresh,
		"friend requests": a.Friends.RefreshRequests,
		"notifications":   a.Notifications.Refresh,
		"playlists":       a.Playlists.Refresh,
	}
	if a.Session.IsPrivileged() {
		refreshes["admin requests"] = a.Admin.Refresh
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for name, refresh := range refreshes {
		name, refresh := name, refresh
		g.Go(func() error {
			if err := refresh(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		a.logger.Warn("hydration incomplete", "failed", len(errs), "error", err)
	} else {
		a.logger.Debug("hydrated", "collections", len(refreshes))
	}
	return err
}

// Logout ends the session and empties every cache. Radio playback is
// not tied to the session and keeps running.
func (a *App) Logout() error {
	return a.Session.Logout()
}

// ProfilePosts returns the cached posts of the profile being viewed
func (a *App) ProfilePosts() []domain.Post {
	return a.Feed.ByAuthor(a.Profile.FeedAuthorID())
}

// SetVolume changes the radio volume and remembers it
func (a *App) SetVolume(v int) (int, error) {
	v, err := a.Radio.SetVolume(v)
	a.updatePrefs(func(p *prefs.Prefs) { p.Volume = v })
	return v, err
}

// SelectStation selects a radio station and remembers it
func (a *App) SelectStation(ctx context.Context, stationID int64) error {
	err := a.Radio.Select(ctx, stationID)
	if err == nil {
		if snap := a.Radio.Snapshot(); snap.StationID != 0 {
			a.updatePrefs(func(p *prefs.Prefs) { p.LastStation = snap.StationID })
		}
	}
	return err
}

func (a *App) updatePrefs(update func(*prefs.Prefs)) {
	a.prefsMu.Lock()
	update(&a.prefs)
	p := a.prefs
	a.prefsMu.Unlock()

	if err := prefs.Save(a.prefsPath, p); err != nil {
		a.logger.Warn("failed to save preferences", "error", err)
	}
}

// Close stops playback and closes durable storage
func (a *App) Close() error {
	return errors.Join(a.Radio.Close(), a.storage.Close())
}
