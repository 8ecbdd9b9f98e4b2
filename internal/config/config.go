package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// RuntimeConfig tunes the guest runtime. Every field has a working
// default so a missing file or empty table still boots.
type RuntimeConfig struct {
	// Engine selects the scheduler strategy: "default" or "webkit".
	Engine string `toml:"engine"`

	FrameIntervalMS int `toml:"frame_interval_ms"`
	// AsapDelayMS is the fixed timer used instead of frame callbacks on
	// the webkit engine, whose frames fire before layout settles.
	AsapDelayMS int `toml:"asap_delay_ms"`
	// SettleDelayMS is the one-shot wait after the document reports
	// complete before measurements are trusted.
	SettleDelayMS int `toml:"settle_delay_ms"`

	// MaxDimensionChanges caps dimension-changed emissions; exceeding it
	// means a parent/guest resize feedback loop that will never converge.
	MaxDimensionChanges int `toml:"max_dimension_changes"`

	// MinPlanTier is the entitlement floor for ui instructions.
	MinPlanTier int `toml:"min_plan_tier"`

	AdminAddr   string   `toml:"admin_addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Engine:              "default",
		FrameIntervalMS:     16,
		AsapDelayMS:         50,
		SettleDelayMS:       100,
		MaxDimensionChanges: 50,
		MinPlanTier:         1,
		AdminAddr:           "",
	}
}

// LoadRuntimeConfig reads path, applies defaults for unset fields, and
// validates. An empty path returns defaults.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if err := loadToml(path, &cfg); err != nil {
		return RuntimeConfig{}, err
	}
	cfg = cfg.withDefaults()
	if err := ValidateRuntimeConfig(cfg); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) withDefaults() RuntimeConfig {
	def := DefaultRuntimeConfig()
	if strings.TrimSpace(c.Engine) == "" {
		c.Engine = def.Engine
	}
	if c.FrameIntervalMS == 0 {
		c.FrameIntervalMS = def.FrameIntervalMS
	}
	if c.AsapDelayMS == 0 {
		c.AsapDelayMS = def.AsapDelayMS
	}
	if c.SettleDelayMS == 0 {
		c.SettleDelayMS = def.SettleDelayMS
	}
	if c.MaxDimensionChanges == 0 {
		c.MaxDimensionChanges = def.MaxDimensionChanges
	}
	if c.MinPlanTier == 0 {
		c.MinPlanTier = def.MinPlanTier
	}
	return c
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

func ValidateRuntimeConfig(cfg RuntimeConfig) error {
	switch cfg.Engine {
	case "default", "webkit":
	default:
		return fmt.Errorf("runtime config invalid engine %q", cfg.Engine)
	}
	if cfg.FrameIntervalMS < 0 {
		return fmt.Errorf("runtime config negative frame_interval_ms")
	}
	if cfg.AsapDelayMS < 0 {
		return fmt.Errorf("runtime config negative asap_delay_ms")
	}
	if cfg.SettleDelayMS < 0 {
		return fmt.Errorf("runtime config negative settle_delay_ms")
	}
	if cfg.MaxDimensionChanges < 0 {
		return fmt.Errorf("runtime config negative max_dimension_changes")
	}
	if cfg.MinPlanTier < 0 {
		return fmt.Errorf("runtime config negative min_plan_tier")
	}
	return nil
}

func (c RuntimeConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

func (c RuntimeConfig) AsapDelay() time.Duration {
	return time.Duration(c.AsapDelayMS) * time.Millisecond
}

func (c RuntimeConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}
