package radio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/huddle/internal/domain"
)

// DefaultVolume is the starting volume when none was saved
const DefaultVolume = 70

var (
	// ErrSuperseded is returned by a start whose station was deselected or
	// replaced before the transport answered
	ErrSuperseded = errors.New("playback start superseded")

	// ErrStreamEnded is recorded when a playing stream stops on its own
	ErrStreamEnded = errors.New("stream ended")
)

// State is the playback state
type State int

const (
	Stopped State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PlaybackError reports a station the transport failed to start
type PlaybackError struct {
	Station domain.Station
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("could not play %s: %v", e.Station.Name, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Snapshot is a consistent read of the controller
type Snapshot struct {
	State     State
	StationID int64 // 0 when nothing is selected
	Station   domain.Station
	Volume    int
	Err       error // last playback failure, cleared by the next successful start
}

// IsPlaying reports whether audio is running
func (s Snapshot) IsPlaying() bool {
	return s.State == Playing
}

// streamDone is implemented by streams that can end without being closed
type streamDone interface {
	Done() <-chan struct{}
}

// Controller is the playback state machine. At most one station is bound
// at a time; every start carries a token so a start that resolves after
// the selection moved on is closed and discarded.
type Controller struct {
	catalog   *Catalog
	transport domain.AudioTransport
	logger    *slog.Logger

	mu       sync.Mutex
	state    State
	selected int64
	volume   int
	stream   domain.AudioStream
	token    uint64
	cancel   context.CancelFunc
	lastErr  error
}

// Option configures a Controller
type Option func(*Controller)

// WithVolume sets the starting volume
func WithVolume(v int) Option {
	return func(c *Controller) { c.volume = clampVolume(v) }
}

// NewController creates a stopped controller
func NewController(catalog *Catalog, transport domain.AudioTransport, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		catalog:   catalog,
		transport: transport,
		logger:    logger,
		volume:    DefaultVolume,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the station catalog
func (c *Controller) Catalog() *Catalog {
	return c.catalog
}

// Select binds stationID and starts it. Selecting the bound station again
// stops playback and clears the selection. The call returns once the
// transport has answered.
func (c *Controller) Select(ctx context.Context, stationID int64) error {
	station, ok := c.catalog.Station(stationID)
	if !ok {
		return domain.ErrUnknownStation
	}

	c.mu.Lock()
	if c.selected == stationID && c.state != Stopped {
		c.stopLocked()
		c.mu.Unlock()
		c.logger.Info("radio stopped", "station_id", stationID)
		return nil
	}
	c.stopLocked()
	c.mu.Unlock()

	return c.start(ctx, station)
}

// Toggle stops a playing or loading station, resumes a paused one and
// does nothing when stopped.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Playing, Loading:
		c.stopLocked()
		c.mu.Unlock()
		return nil
	case Paused:
		station, _ := c.catalog.Station(c.selected)
		c.mu.Unlock()
		return c.start(ctx, station)
	default:
		c.mu.Unlock()
		return nil
	}
}

// Pause closes the transport but keeps the station bound
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	c.closeStreamLocked()
	c.state = Paused
}

// Stop closes the transport and clears the selection
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// SetVolume clamps v to 0..100 and applies it to a running stream. The
// new volume is kept even if the stream could not apply it.
func (c *Controller) SetVolume(v int) (int, error) {
	v = clampVolume(v)

	c.mu.Lock()
	c.volume = v
	stream := c.stream
	c.mu.Unlock()

	if stream == nil {
		return v, nil
	}
	if err := stream.SetVolume(v); err != nil {
		c.logger.Warn("failed to apply volume", "volume", v, "error", err)
		return v, err
	}
	return v, nil
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:     c.state,
		StationID: c.selected,
		Volume:    c.volume,
		Err:       c.lastErr,
	}
	if c.selected != 0 {
		snap.Station, _ = c.catalog.Station(c.selected)
	}
	return snap
}

// Close stops playback
func (c *Controller) Close() error {
	c.Stop()
	return nil
}

func (c *Controller) start(ctx context.Context, station domain.Station) error {
	c.mu.Lock()
	c.closeStreamLocked()
	c.token++
	token := c.token
	startCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.selected = station.ID
	c.state = Loading
	volume := c.volume
	c.mu.Unlock()

	c.logger.Info("starting radio", "station_id", station.ID, "station", station.Name)
	stream, err := c.transport.Open(startCtx, station.StreamURL, volume)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != token {
		if stream != nil {
			if cerr := stream.Close(); cerr != nil {
				c.logger.Debug("failed to close superseded stream", "error", cerr)
			}
		}
		c.logger.Debug("discarded superseded start", "station_id", station.ID)
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		c.state = Stopped
		c.selected = 0
		c.lastErr = &PlaybackError{Station: station, Err: err}
		c.logger.Error("failed to start radio", "station_id", station.ID, "error", err)
		return c.lastErr
	}

	c.stream = stream
	c.state = Playing
	c.lastErr = nil
	if d, ok := stream.(streamDone); ok {
		go c.watch(stream, d.Done())
	}
	return nil
}

func (c *Controller) watch(stream domain.AudioStream, done <-chan struct{}) {
	<-done
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != stream {
		return
	}
	c.stream = nil
	c.state = Stopped
	c.selected = 0
	c.lastErr = ErrStreamEnded
	c.logger.Warn("radio stream ended")
}

// stopLocked cancels any pending start, closes the stream and deselects
func (c *Controller) stopLocked() {
	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.closeStreamLocked()
	c.state = Stopped
	c.selected = 0
}

func (c *Controller) closeStreamLocked() {
	if c.stream == nil {
		return
	}
	stream := c.stream
	c.stream = nil
	if err := stream.Close(); err != nil {
		c.logger.Debug("failed to close stream", "error", err)
	}
}

func clampVolume(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
