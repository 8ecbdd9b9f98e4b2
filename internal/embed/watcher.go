package embed

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/calembed/embedctl/internal/bus"
	"github.com/calembed/embedctl/internal/host"
	"github.com/calembed/embedctl/internal/observability"
	"github.com/calembed/embedctl/internal/sched"
)

// DefaultMaxDimensionChanges caps emissions before the loop assumes a
// parent/guest resize feedback loop that will never converge. The value
// is empirical; the config file can override it.
const DefaultMaxDimensionChanges = 50

// WatcherConfig tunes the dimension watch loop.
type WatcherConfig struct {
	MaxDimensionChanges int
	// SettleDelay is the one-shot wait after the document reports
	// complete; WebKit reports complete before layout is trustworthy.
	SettleDelay time.Duration
}

func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		MaxDimensionChanges: DefaultMaxDimensionChanges,
		SettleDelay:         100 * time.Millisecond,
	}
}

// Watcher is the self-rescheduling dimension loop. In the steady state
// it polls forever at repaint cadence; only runaway growth aborts it.
// All fields except the atomics are touched solely from scheduled steps.
type Watcher struct {
	cfg       WatcherConfig
	state     *State
	doc       host.Document
	bus       *bus.Bus
	scheduler sched.Scheduler
	log       zerolog.Logger

	paintSettled bool
	settleArmed  bool
	sampled      bool
	emitted      bool
	lastHeight   int

	changes atomic.Int64
	stopped atomic.Bool
}

func NewWatcher(cfg WatcherConfig, state *State, doc host.Document, b *bus.Bus, scheduler sched.Scheduler, log zerolog.Logger) *Watcher {
	if cfg.MaxDimensionChanges <= 0 {
		cfg.MaxDimensionChanges = DefaultMaxDimensionChanges
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultWatcherConfig().SettleDelay
	}
	return &Watcher{
		cfg:       cfg,
		state:     state,
		doc:       doc,
		bus:       b,
		scheduler: scheduler,
		log:       log,
	}
}

// Start schedules the first step. The loop then re-enqueues itself.
func (w *Watcher) Start() {
	w.scheduler.RunAsap(w.step)
}

// Changes reports emitted dimension-changed events, for diagnostics.
func (w *Watcher) Changes() int64 {
	return w.changes.Load()
}

// Stopped reports whether the runaway guard aborted the loop.
func (w *Watcher) Stopped() bool {
	return w.stopped.Load()
}

func (w *Watcher) step() {
	if w.stopped.Load() {
		return
	}
	if w.doc.ReadyState() != host.ReadyComplete {
		w.scheduler.RunAsap(w.step)
		return
	}
	if !w.paintSettled {
		if !w.settleArmed {
			w.settleArmed = true
			w.scheduler.After(w.cfg.SettleDelay, func() { w.paintSettled = true })
		}
		w.scheduler.RunAsap(w.step)
		return
	}

	if w.state.MarkWindowLoadFired() {
		w.bus.Fire(EventWindowLoadComplete, map[string]any{})
	}

	// Scroll size for the baseline so the parent can size the iframe
	// without an initial scrollbar; offset size afterwards so the
	// iframe can shrink when content shrinks.
	sample := w.doc.OffsetSize()
	if !w.sampled {
		sample = w.doc.ScrollSize()
	}
	w.state.MarkParentInformed()

	if !w.sampled {
		w.sampled = true
		w.lastHeight = sample.Height
		w.scheduler.RunAsap(w.step)
		return
	}

	// Width rides along in the payload but never gates emission.
	if sample.Height != w.lastHeight {
		w.lastHeight = sample.Height
		total := w.changes.Add(1)
		if total > int64(w.cfg.MaxDimensionChanges) {
			w.stopped.Store(true)
			observability.RecordWatcherAbort()
			w.log.Warn().
				Int64("changes", total).
				Int("cap", w.cfg.MaxDimensionChanges).
				Msg("dimension loop exceeded change cap; resize reporting stopped")
			return
		}
		observability.RecordDimensionChange()
		w.bus.Fire(EventDimensionChanged, map[string]any{
			"iframeHeight": sample.Height,
			"iframeWidth":  sample.Width,
			"isFirstTime":  !w.emitted,
		})
		w.emitted = true
	}

	w.scheduler.RunAsap(w.step)
}
