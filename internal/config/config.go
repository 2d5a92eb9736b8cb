package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmcdole/huddle/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
	Storage   StorageConfig   `mapstructure:"storage"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Player    PlayerConfig    `mapstructure:"player"`
	Radio     RadioConfig     `mapstructure:"radio"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// EndpointsConfig holds the URL of each remote endpoint
type EndpointsConfig struct {
	Auth          string `mapstructure:"auth"`
	Posts         string `mapstructure:"posts"`
	Communities   string `mapstructure:"communities"`
	Friends       string `mapstructure:"friends"`
	Notifications string `mapstructure:"notifications"`
}

// StorageConfig holds durable client storage configuration.
// An empty Dir keeps everything in memory.
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// AdminConfig lists the usernames or phones allowed to see the admin queue
type AdminConfig struct {
	Identities []string `mapstructure:"identities"`
}

// PlayerConfig holds audio player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // empty for auto-detect
	Args    []string `mapstructure:"args"`
}

// RadioConfig holds radio configuration
type RadioConfig struct {
	StationsFile string `mapstructure:"stations_file"` // overrides the built-in catalog
}

// UIConfig holds UI configuration
type UIConfig struct {
	StartTab string `mapstructure:"start_tab"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir: DataDir(),
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Admin: AdminConfig{
			Identities: []string{},
		},
		Player: PlayerConfig{
			Args: []string{},
		},
		UI: UIConfig{
			StartTab: "feed",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(DataDir(), "huddle.log"),
			Level: "INFO",
		},
	}
}

// ConfigDir returns the default config directory for the current OS
func ConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "huddle")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "huddle")
	}
}

// DataDir returns the default data directory for the current OS
func DataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "huddle")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "huddle")
	}
}

// LoadConfig loads configuration from .env, the config file and the environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(ConfigDir(), ".")
}

// LoadConfigFrom loads configuration searching the given directories in order
func LoadConfigFrom(dirs ...string) (*Config, error) {
	// A missing .env file is fine, plain environment variables still apply
	_ = godotenv.Load()

	v := newViper(DefaultConfig())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.Radio.StationsFile = expandHome(cfg.Radio.StationsFile)

	return cfg, nil
}

// newViper returns a viper instance seeded with cfg as defaults so every key
// can be overridden through HUDDLE_ environment variables
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HUDDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoints.auth", cfg.Endpoints.Auth)
	v.SetDefault("endpoints.posts", cfg.Endpoints.Posts)
	v.SetDefault("endpoints.communities", cfg.Endpoints.Communities)
	v.SetDefault("endpoints.friends", cfg.Endpoints.Friends)
	v.SetDefault("endpoints.notifications", cfg.Endpoints.Notifications)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("http.timeout", cfg.HTTP.Timeout)
	v.SetDefault("admin.identities", cfg.Admin.Identities)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("radio.stations_file", cfg.Radio.StationsFile)
	v.SetDefault("ui.start_tab", cfg.UI.StartTab)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	return v
}

// SaveConfig writes cfg to config.yaml inside dir
func SaveConfig(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(cfg)
	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that every endpoint is an absolute URL
func (c *Config) Validate() error {
	endpoints := []struct {
		key string
		val string
	}{
		{"endpoints.auth", c.Endpoints.Auth},
		{"endpoints.posts", c.Endpoints.Posts},
		{"endpoints.communities", c.Endpoints.Communities},
		{"endpoints.friends", c.Endpoints.Friends},
		{"endpoints.notifications", c.Endpoints.Notifications},
	}
	for _, e := range endpoints {
		if e.val == "" {
			return &domain.ValidationError{Field: e.key, Reason: "not configured"}
		}
		u, err := url.Parse(e.val)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return &domain.ValidationError{Field: e.key, Reason: "must be an absolute URL"}
		}
	}
	if c.HTTP.Timeout <= 0 {
		return &domain.ValidationError{Field: "http.timeout", Reason: "must be positive"}
	}
	return nil
}

// IsAdminIdentity reports whether handle is listed in admin.identities
func (c *Config) IsAdminIdentity(handle string) bool {
	if handle == "" {
		return false
	}
	for _, id := range c.Admin.Identities {
		if strings.EqualFold(strings.TrimSpace(id), handle) {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
