package sched

import (
	"testing"
	"time"
)

func TestStepperFrameOrdering(t *testing.T) {
	s := NewStepper(Config{})
	var order []string
	s.Post(func() { order = append(order, "post") })
	s.RequestFrame(func() { order = append(order, "frame") })
	s.After(5*time.Millisecond, func() { order = append(order, "timer") })

	s.Step()

	want := []string{"post", "timer", "frame"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}

func TestStepperFrameBatchDoesNotRunNewFrames(t *testing.T) {
	s := NewStepper(Config{})
	ran := 0
	s.RequestFrame(func() {
		ran++
		s.RequestFrame(func() { ran++ })
	})
	s.Step()
	if ran != 1 {
		t.Fatalf("re-entrant frame ran in same batch: %d", ran)
	}
	s.Step()
	if ran != 2 {
		t.Fatalf("queued frame did not run on next step: %d", ran)
	}
}

func TestStepperTimerDelay(t *testing.T) {
	s := NewStepper(Config{FrameInterval: 10 * time.Millisecond})
	fired := false
	s.After(25*time.Millisecond, func() { fired = true })
	s.StepN(2)
	if fired {
		t.Fatalf("timer fired early at %v", s.Now())
	}
	s.Step()
	if !fired {
		t.Fatalf("timer did not fire by %v", s.Now())
	}
}

func TestStepperRunAsapDefaultEngine(t *testing.T) {
	s := NewStepper(Config{Engine: EngineDefault})
	ran := false
	s.RunAsap(func() { ran = true })
	if len(s.timers) != 0 {
		t.Fatalf("default engine must not use timers for asap work")
	}
	s.Step()
	if !ran {
		t.Fatalf("asap work did not run on frame")
	}
}

func TestStepperRunAsapWebKitUsesTimer(t *testing.T) {
	s := NewStepper(Config{Engine: EngineWebKit, AsapDelay: 5 * time.Millisecond, FrameInterval: 16 * time.Millisecond})
	ran := false
	s.RunAsap(func() { ran = true })
	if len(s.frames) != 0 {
		t.Fatalf("webkit engine must not use the frame queue for asap work")
	}
	s.Step()
	if !ran {
		t.Fatalf("asap timer did not fire within one frame")
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Engine != EngineDefault {
		t.Fatalf("unexpected engine: %q", cfg.Engine)
	}
	if cfg.FrameInterval <= 0 || cfg.AsapDelay <= 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
