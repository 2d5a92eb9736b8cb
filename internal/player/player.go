// Package player plays radio streams through an external audio player
// process (mpv, ffplay, vlc).
package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/huddle/internal/domain"
)

var (
	// ErrNoPlayer is returned when no configured or known player is installed
	ErrNoPlayer = errors.New("no audio player found")

	// ErrLiveVolume is returned by players that cannot change volume while running
	ErrLiveVolume = errors.New("player does not support live volume changes")
)

// playerConfig describes how to drive one known player
type playerConfig struct {
	args       []string            // audio-only, quiet playback
	volumeFlag string              // "--volume=" appends the value, "-volume " passes it as its own arg
	ipcFlag    string              // JSON IPC socket flag, empty if unsupported
	platforms  map[string][]string // platform -> commands to try in order
}

// players registry
var players = map[string]playerConfig{
	"mpv": {
		args:       []string{"--no-video", "--really-quiet", "--no-terminal"},
		volumeFlag: "--volume=",
		ipcFlag:    "--input-ipc-server=",
		platforms: map[string][]string{
			"darwin":  {"mpv"},
			"linux":   {"mpv"},
			"windows": {"mpv"},
		},
	},
	"ffplay": {
		args:       []string{"-nodisp", "-autoexit", "-loglevel", "quiet"},
		volumeFlag: "-volume ",
		platforms: map[string][]string{
			"darwin":  {"ffplay"},
			"linux":   {"ffplay"},
			"windows": {"ffplay"},
		},
	},
	"vlc": {
		args: []string{"--intf", "dummy", "--no-video", "--quiet"},
		platforms: map[string][]string{
			"darwin":  {"vlc", "/Applications/VLC.app/Contents/MacOS/VLC"},
			"linux":   {"cvlc", "vlc"},
			"windows": {"vlc"},
		},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"mpv", "ffplay", "vlc"},
	"linux":   {"mpv", "ffplay", "vlc"},
	"windows": {"mpv", "vlc", "ffplay"},
}

// Player implements domain.AudioTransport by spawning one player process per stream
type Player struct {
	command string
	args    []string
	logger  *slog.Logger

	// startGrace is how long a new process must survive before the start counts as successful
	startGrace time.Duration
	lookPath   func(string) (string, error)
	socketDir  string
}

// New creates a Player. An empty command auto-detects an installed player.
func New(command string, args []string, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		command:    command,
		args:       args,
		logger:     logger,
		startGrace: 500 * time.Millisecond,
		lookPath:   exec.LookPath,
		socketDir:  os.TempDir(),
	}
}

// resolved is a player binary together with its known configuration, if any
type resolved struct {
	name string
	path string
	cfg  *playerConfig
}

// resolve picks the configured command, or the first installed candidate
func (p *Player) resolve() (resolved, error) {
	if p.command != "" {
		base := strings.ToLower(filepath.Base(p.command))
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if base == "cvlc" {
			base = "vlc"
		}
		r := resolved{name: base, path: p.command}
		if cfg, ok := players[base]; ok {
			r.cfg = &cfg
		}
		return r, nil
	}

	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}
	for _, name := range candidates {
		cfg := players[name]
		for _, cmd := range cfg.platforms[runtime.GOOS] {
			path, err := p.lookPath(cmd)
			if err != nil {
				p.logger.Debug("player not available", "player", name, "command", cmd)
				continue
			}
			return resolved{name: name, path: path, cfg: &cfg}, nil
		}
	}
	return resolved{}, ErrNoPlayer
}

// buildArgs assembles the command line for url. ipcPath is empty when the
// player has no IPC or it is unavailable on this platform.
func buildArgs(r resolved, userArgs []string, url string, volume int, ipcPath string) []string {
	var args []string
	if r.cfg != nil {
		args = append(args, r.cfg.args...)
		if r.cfg.volumeFlag != "" {
			args = append(args, formatFlag(r.cfg.volumeFlag, strconv.Itoa(volume))...)
		}
		if ipcPath != "" && r.cfg.ipcFlag != "" {
			args = append(args, formatFlag(r.cfg.ipcFlag, ipcPath)...)
		}
	}
	args = append(args, userArgs...)
	return append(args, url)
}

// formatFlag handles flags that take the value as a separate argument
// ("-volume ") as well as attached ones ("--volume=")
func formatFlag(flag, value string) []string {
	if strings.HasSuffix(flag, " ") {
		return []string{strings.TrimSuffix(flag, " "), value}
	}
	return []string{flag + value}
}

// Open starts a player process for url. It fails if the process cannot be
// spawned or exits during the start grace period.
func (p *Player) Open(ctx context.Context, url string, volume int) (domain.AudioStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := p.resolve()
	if err != nil {
		return nil, err
	}

	var ipcPath string
	if r.cfg != nil && r.cfg.ipcFlag != "" && runtime.GOOS != "windows" {
		ipcPath = filepath.Join(p.socketDir, "huddle-"+uuid.NewString()[:8]+".sock")
	}

	args := buildArgs(r, p.args, url, volume, ipcPath)
	p.logger.Info("launching player", "player", r.name, "command", r.path, "args", args)

	cmd := exec.Command(r.path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.name, err)
	}

	s := &stream{
		cmd:     cmd,
		name:    r.name,
		ipcPath: ipcPath,
		done:    make(chan struct{}),
		logger:  p.logger,
	}
	go s.wait()

	grace := time.NewTimer(p.startGrace)
	defer grace.Stop()

	select {
	case <-s.done:
		s.removeSocket()
		if s.waitErr != nil {
			return nil, fmt.Errorf("%s exited: %w", r.name, s.waitErr)
		}
		return nil, fmt.Errorf("%s exited immediately", r.name)
	case <-ctx.Done():
		_ = s.Close()
		return nil, ctx.Err()
	case <-grace.C:
		return s, nil
	}
}

// stream is one running player process
type stream struct {
	cmd     *exec.Cmd
	name    string
	ipcPath string
	logger  *slog.Logger

	done    chan struct{}
	waitErr error

	closeOnce sync.Once
}

func (s *stream) wait() {
	s.waitErr = s.cmd.Wait()
	close(s.done)
}

// Done is closed when the process exits for any reason
func (s *stream) Done() <-chan struct{} {
	return s.done
}

// ipcCommand is an mpv JSON IPC request
type ipcCommand struct {
	Command []any `json:"command"`
}

// SetVolume changes the volume through the player's IPC socket
func (s *stream) SetVolume(volume int) error {
	if s.ipcPath == "" {
		return ErrLiveVolume
	}
	conn, err := net.DialTimeout("unix", s.ipcPath, time.Second)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", s.name, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(time.Second))
	msg, err := json.Marshal(ipcCommand{Command: []any{"set_property", "volume", volume}})
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}

// Close kills the process and waits for it to exit
func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		select {
		case <-s.done:
		default:
			if kerr := s.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
				err = kerr
			}
			<-s.done
		}
		s.removeSocket()
		s.logger.Debug("player stopped", "player", s.name)
	})
	return err
}

func (s *stream) removeSocket() {
	if s.ipcPath == "" {
		return
	}
	if err := os.Remove(s.ipcPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("failed to remove ipc socket", "path", s.ipcPath, "error", err)
	}
}

var _ domain.AudioTransport = (*Player)(nil)
