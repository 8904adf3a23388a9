package session

import (
	"time"

	"github.com/ayusman/nayana/internal/debounce"
)

// Default session timing.
const (
	DefaultMaxDuration    = 300 * time.Second
	DefaultReportInterval = 60 * time.Second
)

// Config holds the session timing parameters.
type Config struct {
	// DebounceInterval is the minimum spacing of clicks and of scrolls.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
	// MaxDuration is the session ceiling.
	MaxDuration time.Duration `yaml:"max_duration"`
	// ReportInterval is the spacing of periodic accuracy reports.
	ReportInterval time.Duration `yaml:"report_interval"`
	// SmoothingAlpha enables gaze smoothing when in (0,1). Zero disables it.
	SmoothingAlpha float64 `yaml:"smoothing_alpha"`
}

// DefaultConfig returns the default session timing.
func DefaultConfig() Config {
	return Config{
		DebounceInterval: debounce.DefaultInterval,
		MaxDuration:      DefaultMaxDuration,
		ReportInterval:   DefaultReportInterval,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = d.DebounceInterval
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = d.MaxDuration
	}
	if c.ReportInterval <= 0 {
		c.ReportInterval = d.ReportInterval
	}
	return c
}
