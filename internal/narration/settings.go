package narration

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how narratable events reach the listener.
type Mode int

const (
	// ModeBatched buffers events into waves and enables periodic status.
	ModeBatched Mode = iota
	// ModeIndividual speaks every event as it arrives.
	ModeIndividual
)

func (m Mode) String() string {
	if m == ModeIndividual {
		return "individual"
	}
	return "batched"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "batched", "batch", "wave":
		return ModeBatched, nil
	case "individual", "immediate":
		return ModeIndividual, nil
	}
	return ModeBatched, fmt.Errorf("unknown narration mode %q", s)
}

// Timing and threshold defaults.
const (
	DefaultWaveWindow     = 1500 * time.Millisecond
	DefaultStatusDelay    = 2 * time.Second
	DefaultStatusInterval = 5 * time.Second
	DefaultLowRatio       = 0.25
	DefaultCriticalRatio  = 0.10
)

// DefaultOpponentLabel is used when Start receives an empty label.
const DefaultOpponentLabel = "Enemy"

// Settings tunes a Session. Zero fields take the defaults.
type Settings struct {
	Mode           Mode
	WaveWindow     time.Duration
	StatusDelay    time.Duration
	StatusInterval time.Duration
	LowRatio       float64
	CriticalRatio  float64
}

func DefaultSettings() Settings {
	return Settings{
		Mode:           ModeBatched,
		WaveWindow:     DefaultWaveWindow,
		StatusDelay:    DefaultStatusDelay,
		StatusInterval: DefaultStatusInterval,
		LowRatio:       DefaultLowRatio,
		CriticalRatio:  DefaultCriticalRatio,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.WaveWindow <= 0 {
		s.WaveWindow = def.WaveWindow
	}
	if s.StatusDelay <= 0 {
		s.StatusDelay = def.StatusDelay
	}
	if s.StatusInterval <= 0 {
		s.StatusInterval = def.StatusInterval
	}
	if s.LowRatio <= 0 {
		s.LowRatio = def.LowRatio
	}
	if s.CriticalRatio <= 0 {
		s.CriticalRatio = def.CriticalRatio
	}
	return s
}
