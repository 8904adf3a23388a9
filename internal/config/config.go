// Package config loads the nayana configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/nayana/internal/capture"
	"github.com/ayusman/nayana/internal/export"
	"github.com/ayusman/nayana/internal/gesture"
	"github.com/ayusman/nayana/internal/landmark"
	"github.com/ayusman/nayana/internal/session"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Pointer backends.
const (
	BackendRobotgo = "robotgo"
	BackendPlugin  = "plugin"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string             `yaml:"log_level"`
	DataDir  string             `yaml:"data_dir"`
	Camera   capture.Config     `yaml:"camera"`
	Landmark landmark.Config    `yaml:"landmark"`
	Gesture  gesture.Thresholds `yaml:"gesture"`
	Session  session.Config     `yaml:"session"`
	Action   ActionConfig       `yaml:"action"`
	Display  DisplayConfig      `yaml:"display"`
	Store    StoreConfig        `yaml:"store"`
	Server   ServerConfig       `yaml:"server"`
	Kafka    export.KafkaConfig `yaml:"kafka"`
	Tray     TrayConfig         `yaml:"tray"`
}

// ActionConfig selects and tunes the OS automation backend.
type ActionConfig struct {
	Backend     string `yaml:"backend"`
	Plugin      string `yaml:"plugin"`
	PluginDir   string `yaml:"plugin_dir"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	ScrollDelta int    `yaml:"scroll_delta"`
}

type DisplayConfig struct {
	Headless bool `yaml:"headless"`
}

type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	// Stream enables the MJPEG preview at /api/stream.
	Stream    bool   `yaml:"stream"`
	StaticDir string `yaml:"static_dir"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		DataDir:  defaultDataDir(),
		Camera:   capture.DefaultConfig(),
		Landmark: landmark.DefaultConfig(),
		Gesture:  gesture.DefaultThresholds(),
		Session:  session.DefaultConfig(),
		Action: ActionConfig{
			Backend:     BackendRobotgo,
			Plugin:      "pointer-xdotool",
			TimeoutMs:   2000,
			ScrollDelta: 300,
		},
		Store: StoreConfig{Enabled: true},
		Server: ServerConfig{
			Addr: "127.0.0.1:8088",
		},
		Kafka: export.DefaultKafkaConfig(),
	}
}

// Load reads a YAML file over the defaults. Environment variables in the
// file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills derived paths that depend on DataDir.
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.DataDir, "nayana.db")
	}
	if c.Action.PluginDir == "" {
		c.Action.PluginDir = filepath.Join(c.DataDir, "plugins")
	}
}

// Resolve fills derived paths. Load calls it; callers building a Config in
// code should call it before use.
func (c *Config) Resolve() {
	c.applyDefaults()
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level %q is not a level", c.LogLevel))
	}

	thresholds := []struct {
		name  string
		value float64
	}{
		{"gesture.mouth_open_threshold", c.Gesture.MouthOpen},
		{"gesture.wink_closed_threshold", c.Gesture.WinkClosed},
		{"gesture.scroll_threshold", c.Gesture.Scroll},
	}
	for _, th := range thresholds {
		if th.value <= 0 || th.value >= 1 {
			problems = append(problems, fmt.Sprintf("%s must be in (0,1), got %v", th.name, th.value))
		}
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"session.debounce_interval", c.Session.DebounceInterval},
		{"session.max_duration", c.Session.MaxDuration},
		{"session.report_interval", c.Session.ReportInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %v", d.name, d.value))
		}
	}
	if a := c.Session.SmoothingAlpha; a < 0 || a > 1 {
		problems = append(problems, fmt.Sprintf("session.smoothing_alpha must be in [0,1], got %v", a))
	}

	switch c.Action.Backend {
	case BackendRobotgo:
	case BackendPlugin:
		if c.Action.Plugin == "" {
			problems = append(problems, "action.plugin is required for the plugin backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("action.backend must be %q or %q, got %q", BackendRobotgo, BackendPlugin, c.Action.Backend))
	}
	if c.Action.ScrollDelta < 0 {
		problems = append(problems, "action.scroll_delta must not be negative")
	}

	if c.Camera.DeviceID < 0 {
		problems = append(problems, "camera.device_id must not be negative")
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		problems = append(problems, "server.addr is required when the server is enabled")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		problems = append(problems, "kafka.brokers and kafka.topic are required when kafka is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nayana"
	}
	return filepath.Join(home, ".nayana")
}
