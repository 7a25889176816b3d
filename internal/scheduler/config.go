package scheduler

import (
	"time"

	"github.com/smallbiznis/mensaplan/internal/config"
)

// Config controls the periodic range import.
type Config struct {
	Enabled     bool
	RunInterval time.Duration
	DayDistance int
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		RunInterval: time.Hour,
		DayDistance: 14,
		Timeout:     2 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:     cfg.Import.Enabled,
		RunInterval: cfg.Import.Interval,
		DayDistance: cfg.Import.DayDistance,
		Timeout:     cfg.Import.Timeout,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.DayDistance < 0 {
		c.DayDistance = defaults.DayDistance
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	return c
}
