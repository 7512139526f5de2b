// internal/runner/config.go
package runner

import (
	"fmt"
	"strings"
	"time"

	"formqa/internal/common/config"
)

// Speed selects the base pause before each form submission.
type Speed string

const (
	SpeedConservative Speed = "conservative"
	SpeedBalanced     Speed = "balanced"
	SpeedAggressive   Speed = "aggressive"
)

// ParseSpeed accepts a tier name in any case. The original UI names safe and fast are accepted as aliases.
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative", "safe":
		return SpeedConservative, nil
	case "balanced", "":
		return SpeedBalanced, nil
	case "aggressive", "fast":
		return SpeedAggressive, nil
	}
	return "", fmt.Errorf("unknown speed %q", s)
}

type Config struct {
	BaseDelays    map[Speed]time.Duration
	Jitter        time.Duration
	SinkOnlyPause time.Duration
	SimulatePause time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseDelays: map[Speed]time.Duration{
			SpeedConservative: 3000 * time.Millisecond,
			SpeedBalanced:     1500 * time.Millisecond,
			SpeedAggressive:   500 * time.Millisecond,
		},
		Jitter:        500 * time.Millisecond,
		SinkOnlyPause: 200 * time.Millisecond,
		SimulatePause: 50 * time.Millisecond,
	}
}

// FromConfig applies the run section of the application config. Zero values keep the defaults.
func FromConfig(run config.RunConfig) *Config {
	cfg := LoadConfig()
	if run.JitterMs > 0 {
		cfg.Jitter = config.GetDuration(run.JitterMs)
	}
	if run.SinkOnlyPauseMs > 0 {
		cfg.SinkOnlyPause = config.GetDuration(run.SinkOnlyPauseMs)
	}
	if run.SimulatePauseMs > 0 {
		cfg.SimulatePause = config.GetDuration(run.SimulatePauseMs)
	}
	return cfg
}
