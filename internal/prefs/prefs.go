// Package prefs persists small user preferences in prefs.toml next to the
// config file.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mmcdole/huddle/internal/config"
)

// Prefs holds user preferences
type Prefs struct {
	Volume      int    `toml:"volume"`
	StartTab    string `toml:"start_tab,omitempty"`
	LastStation int64  `toml:"last_station,omitempty"`
}

const defaultVolume = 70

// Default returns the preferences used when none are saved
func Default() Prefs {
	return Prefs{Volume: defaultVolume}
}

// DefaultPath returns the default preferences file path
func DefaultPath() string {
	return filepath.Join(config.ConfigDir(), "prefs.toml")
}

// Load reads preferences from path. A missing or unreadable file yields
// the defaults; preferences are never worth failing startup over.
func Load(path string) Prefs {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}

	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default()
	}
	if p.Volume < 0 || p.Volume > 100 {
		p.Volume = defaultVolume
	}
	return p
}

// Save writes preferences to path, creating directories as needed
func Save(path string, p Prefs) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Exists reports whether a prefs file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
