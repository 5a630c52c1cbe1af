package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"combat_narrator/internal/narration"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Settings is the narrator's runtime tuning as read from the environment.
type Settings struct {
	Mode           string        `env:"NARRATOR_MODE" envDefault:"batched"`
	WaveWindow     time.Duration `env:"NARRATOR_WAVE_WINDOW" envDefault:"1500ms"`
	StatusDelay    time.Duration `env:"NARRATOR_STATUS_DELAY" envDefault:"2s"`
	StatusInterval time.Duration `env:"NARRATOR_STATUS_INTERVAL" envDefault:"5s"`
	LowRatio       float64       `env:"NARRATOR_LOW_RATIO" envDefault:"0.25"`
	CriticalRatio  float64       `env:"NARRATOR_CRITICAL_RATIO" envDefault:"0.10"`
	LogLevel       string        `env:"NARRATOR_LOG_LEVEL" envDefault:"info"`
}

// LoadSettings parses and validates Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validate settings: %w", err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	var errs []error
	if _, err := narration.ParseMode(s.Mode); err != nil {
		errs = append(errs, err)
	}
	if s.WaveWindow <= 0 {
		errs = append(errs, fmt.Errorf("wave window must be positive, got %s", s.WaveWindow))
	}
	if s.StatusDelay <= 0 || s.StatusInterval <= 0 {
		errs = append(errs, fmt.Errorf("status delay %s / interval %s out of range", s.StatusDelay, s.StatusInterval))
	}
	if s.CriticalRatio <= 0 || s.LowRatio >= 1 || s.CriticalRatio >= s.LowRatio {
		errs = append(errs, fmt.Errorf("thresholds must satisfy 0 < critical (%.2f) < low (%.2f) < 1", s.CriticalRatio, s.LowRatio))
	}
	if _, err := s.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level maps LogLevel onto a slog level.
func (s Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s.LogLevel, err)
	}
	return lvl, nil
}

// Narration converts the settings for a narration session.
func (s Settings) Narration() (narration.Settings, error) {
	mode, err := narration.ParseMode(s.Mode)
	if err != nil {
		return narration.Settings{}, err
	}
	return narration.Settings{
		Mode:           mode,
		WaveWindow:     s.WaveWindow,
		StatusDelay:    s.StatusDelay,
		StatusInterval: s.StatusInterval,
		LowRatio:       s.LowRatio,
		CriticalRatio:  s.CriticalRatio,
	}, nil
}
