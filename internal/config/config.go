// Package config loads agent settings from a YAML file overlaid with
// ANDROID_REMOTE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenHost     = "0.0.0.0"
	defaultPort           = 8080
	defaultGestureTimeout = 1500 * time.Millisecond
	defaultCaptureTimeout = 1200 * time.Millisecond

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ANDROID_REMOTE_"
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// Grant reuse policies.
const (
	GrantReuseAuto  = "auto"
	GrantReuseTrue  = "true"
	GrantReuseFalse = "false"
)

type Config struct {
	ListenHost     string        `yaml:"listen_host"`
	Port           int           `yaml:"port"`
	StateDir       string        `yaml:"state_dir"`
	GrantReuse     string        `yaml:"grant_reuse"`
	GestureTimeout time.Duration `yaml:"gesture_timeout"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	// MaxConcurrentRequests of 0 selects the server's default.
	MaxConcurrentRequests int `yaml:"max_concurrent_requests"`

	MDNS   MDNSConfig   `yaml:"mdns"`
	Log    LogConfig    `yaml:"log"`
	Device DeviceConfig `yaml:"device"`
}

type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DeviceConfig struct {
	// Fixture is a YAML screen definition for the virtual device. Empty
	// selects the built-in screen.
	Fixture string `yaml:"fixture"`
	// SDKInt overrides the platform level reported by the fixture.
	SDKInt int `yaml:"sdk_int"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ListenHost:     defaultListenHost,
		Port:           defaultPort,
		StateDir:       defaultStateDir(),
		GrantReuse:     GrantReuseAuto,
		GestureTimeout: defaultGestureTimeout,
		CaptureTimeout: defaultCaptureTimeout,
		MDNS:           MDNSConfig{Enabled: true},
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "android-remote", "config.yaml")
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "android-remote")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "android-remote")
	}
	return filepath.Join(home, ".local", "state", "android-remote")
}

// Load reads path (DefaultPath when empty), applies environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		if v := getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s must be an integer", EnvPrefix, key)
			}
			*dst = n
		}
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		if v := getenv(EnvPrefix + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s must be a duration (e.g. 1.5s): %w", EnvPrefix, key, err)
			}
			*dst = d
		}
		return nil
	}
	boolean := func(key string, dst *bool) error {
		if v := getenv(EnvPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s must be a boolean", EnvPrefix, key)
			}
			*dst = b
		}
		return nil
	}

	str("LISTEN_HOST", &c.ListenHost)
	str("STATE_DIR", &c.StateDir)
	str("GRANT_REUSE", &c.GrantReuse)
	str("MDNS_INSTANCE", &c.MDNS.Instance)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("DEVICE_FIXTURE", &c.Device.Fixture)

	return errors.Join(
		integer("PORT", &c.Port),
		integer("MAX_CONCURRENT_REQUESTS", &c.MaxConcurrentRequests),
		integer("DEVICE_SDK_INT", &c.Device.SDKInt),
		duration("GESTURE_TIMEOUT", &c.GestureTimeout),
		duration("CAPTURE_TIMEOUT", &c.CaptureTimeout),
		boolean("MDNS_ENABLED", &c.MDNS.Enabled),
	)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.GestureTimeout <= 0 {
		errs = append(errs, fmt.Errorf("gesture_timeout must be positive, got %s", c.GestureTimeout))
	}
	if c.CaptureTimeout <= 0 {
		errs = append(errs, fmt.Errorf("capture_timeout must be positive, got %s", c.CaptureTimeout))
	}
	if c.MaxConcurrentRequests < 0 {
		errs = append(errs, fmt.Errorf("max_concurrent_requests must not be negative, got %d", c.MaxConcurrentRequests))
	}
	if c.StateDir == "" {
		errs = append(errs, errors.New("state_dir must be set"))
	}
	switch c.GrantReuse {
	case GrantReuseAuto, GrantReuseTrue, GrantReuseFalse:
	default:
		errs = append(errs, fmt.Errorf("grant_reuse must be auto, true or false, got %q", c.GrantReuse))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Addr is the command server's listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}

// GrantReuseOverride returns nil when the platform decides whether a
// persisted grant may be reused.
func (c *Config) GrantReuseOverride() *bool {
	switch c.GrantReuse {
	case GrantReuseTrue:
		v := true
		return &v
	case GrantReuseFalse:
		v := false
		return &v
	default:
		return nil
	}
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}
