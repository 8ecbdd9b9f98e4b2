package sched

import (
	"errors"
	"time"
)

var (
	ErrInvalidFrameInterval = errors.New("sched: invalid frame interval")
	ErrInvalidAsapDelay     = errors.New("sched: invalid asap delay")
)

// Engine identifies the rendering-engine class the guest runs under.
type Engine string

const (
	// EngineDefault schedules asap work on the next frame.
	EngineDefault Engine = "default"
	// EngineWebKit schedules asap work on a short fixed timer because the
	// engine's frame callback fires before layout has settled.
	EngineWebKit Engine = "webkit"
)

// Scheduler is the pacing contract shared by the run loop and the test
// stepper. All callbacks execute serialized on a single owner goroutine.
type Scheduler interface {
	// Post enqueues fn for execution as soon as possible, ahead of frame
	// pacing. Used to serialize externally-sourced work onto the loop.
	Post(fn func())
	// RequestFrame enqueues fn for the next frame tick.
	RequestFrame(fn func())
	// After arms a one-shot timer executing fn on the loop after d.
	After(d time.Duration, fn func())
	// RunAsap schedules fn via the engine strategy: frame tick on most
	// engines, short fixed timer on WebKit.
	RunAsap(fn func())
}

// Config defines loop pacing defaults.
type Config struct {
	Engine        Engine
	FrameInterval time.Duration
	AsapDelay     time.Duration
}

// DefaultConfig returns repaint-cadence pacing defaults.
func DefaultConfig() Config {
	return Config{
		Engine:        EngineDefault,
		FrameInterval: 16 * time.Millisecond,
		AsapDelay:     50 * time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Engine == "" {
		c.Engine = def.Engine
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = def.FrameInterval
	}
	if c.AsapDelay <= 0 {
		c.AsapDelay = def.AsapDelay
	}
	return c
}

// Validate enforces pacing invariants.
func (c Config) Validate() error {
	if c.FrameInterval <= 0 {
		return ErrInvalidFrameInterval
	}
	if c.AsapDelay <= 0 {
		return ErrInvalidAsapDelay
	}
	return nil
}
