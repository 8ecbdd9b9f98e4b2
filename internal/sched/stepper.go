package sched

import (
	"container/heap"
	"time"
)

// Stepper is a deterministic Scheduler for tests: virtual clock, no
// goroutine. Step advances one frame interval; Advance moves the clock
// arbitrarily. All callbacks run synchronously on the caller.
type Stepper struct {
	cfg Config

	now      time.Duration
	frames   []func()
	posted   []func()
	timers   timerHeap
	timerSeq uint64
}

// NewStepper constructs a stepper with defaults applied.
func NewStepper(cfg Config) *Stepper {
	return &Stepper{cfg: cfg.WithDefaults()}
}

// Now reports the virtual clock.
func (s *Stepper) Now() time.Duration {
	return s.now
}

func (s *Stepper) Post(fn func()) {
	if fn == nil {
		return
	}
	s.posted = append(s.posted, fn)
}

func (s *Stepper) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	s.frames = append(s.frames, fn)
}

func (s *Stepper) After(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	s.timerSeq++
	heap.Push(&s.timers, loopTimer{due: time.Time{}.Add(s.now + d), fn: fn, seq: s.timerSeq})
}

func (s *Stepper) RunAsap(fn func()) {
	if s.cfg.Engine == EngineWebKit {
		s.After(s.cfg.AsapDelay, fn)
		return
	}
	s.RequestFrame(fn)
}

// Step advances the clock one frame interval, draining posted work, due
// timers, and the frame batch queued before the step.
func (s *Stepper) Step() {
	s.Advance(s.cfg.FrameInterval)
}

// StepN runs Step n times.
func (s *Stepper) StepN(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// Advance moves the virtual clock by d, firing due timers in order, then
// runs the posted queue and one frame batch. Callbacks scheduled while
// draining land on the next call.
func (s *Stepper) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.now += d
	posted := s.posted
	s.posted = nil
	for _, fn := range posted {
		fn()
	}
	deadline := time.Time{}.Add(s.now)
	for len(s.timers) > 0 && !s.timers[0].due.After(deadline) {
		item := heap.Pop(&s.timers).(loopTimer)
		item.fn()
	}
	batch := s.frames
	s.frames = nil
	for _, fn := range batch {
		fn()
	}
}

// Idle reports whether no work is queued at any future time.
func (s *Stepper) Idle() bool {
	return len(s.posted) == 0 && len(s.frames) == 0 && len(s.timers) == 0
}
