package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// HostConfig is the demo host configuration: the tick loop, the optional
// status server, and which bundled stages to run.
type HostConfig struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Server  ServerConfig  `toml:"server"`
	Stages  StagesConfig  `toml:"stages"`
}

type RuntimeConfig struct {
	// TickIntervalMS is the sleep between ticks. 0 takes the 16 ms
	// default; -1 disables the sleep entirely.
	TickIntervalMS int `toml:"tick_interval_ms"`
	// MaxTicks stops the loop early; 0 runs until the scheduler drains.
	MaxTicks int `toml:"max_ticks"`
}

type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type StagesConfig struct {
	Pulse   PulseConfig   `toml:"pulse"`
	Journal JournalConfig `toml:"journal"`
	Script  ScriptConfig  `toml:"script"`
}

type PulseConfig struct {
	Enabled bool `toml:"enabled"`
	// LifetimeTicks detaches the pulse stage after this many ticks; 0 keeps
	// it attached for the whole run.
	LifetimeTicks int  `toml:"lifetime_ticks"`
	DeferredSwap  bool `toml:"deferred_swap"`
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type ScriptConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

func LoadHostConfig(path string) (HostConfig, error) {
	var cfg HostConfig
	if err := loadToml(path, &cfg); err != nil {
		return HostConfig{}, err
	}
	applyDefaults(&cfg)
	if err := ValidateHostConfig(cfg); err != nil {
		return HostConfig{}, err
	}
	return cfg, nil
}

// DefaultHostConfig is the configuration used when no file is given.
func DefaultHostConfig() HostConfig {
	var cfg HostConfig
	cfg.Stages.Pulse.Enabled = true
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *HostConfig) {
	if cfg.Runtime.TickIntervalMS == 0 {
		cfg.Runtime.TickIntervalMS = 16
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":9200"
	}
	if cfg.Stages.Journal.Path == "" {
		cfg.Stages.Journal.Path = "stagehand.db"
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateHostConfig(cfg HostConfig) error {
	if cfg.Runtime.TickIntervalMS < -1 {
		return fmt.Errorf("runtime tick_interval_ms must be -1, 0, or positive")
	}
	if cfg.Runtime.MaxTicks < 0 {
		return fmt.Errorf("runtime max_ticks must not be negative")
	}
	if cfg.Server.Enabled && strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server enabled without addr")
	}
	if cfg.Stages.Journal.Enabled && strings.TrimSpace(cfg.Stages.Journal.Path) == "" {
		return fmt.Errorf("journal stage enabled without path")
	}
	if cfg.Stages.Script.Enabled && strings.TrimSpace(cfg.Stages.Script.Path) == "" {
		return fmt.Errorf("script stage enabled without path")
	}
	if cfg.Stages.Pulse.LifetimeTicks < 0 {
		return fmt.Errorf("pulse lifetime_ticks must not be negative")
	}
	return nil
}
