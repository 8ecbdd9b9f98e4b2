package embed

import (
	"testing"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/calembed/embedctl/internal/bus"
	"github.com/calembed/embedctl/internal/host"
	"github.com/calembed/embedctl/internal/sched"
	"github.com/calembed/embedctl/internal/testutil/testlog"
)

type watcherFixture struct {
	state   *State
	doc     *host.SimDocument
	stepper *sched.Stepper
	bus     *bus.Bus
	watcher *Watcher
	events  []map[string]any
}

func newWatcherFixture(t *testing.T, cfg WatcherConfig) *watcherFixture {
	t.Helper()
	f := &watcherFixture{
		state:   NewState(),
		doc:     host.NewSimDocument("https://cal.local/acme?embed=acme"),
		stepper: sched.NewStepper(sched.Config{FrameInterval: 16 * time.Millisecond}),
		bus:     bus.New(),
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 10 * time.Millisecond
	}
	f.watcher = NewWatcher(cfg, f.state, f.doc, f.bus, f.stepper, log.Logger)
	f.bus.On(EventDimensionChanged, func(_ string, detail map[string]any) {
		f.events = append(f.events, detail)
	})
	return f
}

func (f *watcherFixture) setHeight(h int) {
	f.doc.SetSizes(host.Size{Width: 600, Height: h}, host.Size{Width: 600, Height: h})
}

func TestWatcherWaitsForDocumentComplete(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{})
	f.setHeight(500)
	f.watcher.Start()

	f.stepper.StepN(4)
	if f.state.ParentInformed() {
		t.Fatalf("sampled before document complete")
	}
	if f.state.WindowLoadFired() {
		t.Fatalf("windowLoadComplete before document complete")
	}
}

func TestWatcherSettleGateThenLoadEventOnce(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{})
	loadEvents := 0
	f.bus.On(EventWindowLoadComplete, func(string, map[string]any) { loadEvents++ })
	f.setHeight(500)
	f.doc.SetReadyState(host.ReadyComplete)
	f.watcher.Start()

	f.stepper.Step()
	if f.state.ParentInformed() {
		t.Fatalf("sampled before paint settled")
	}

	f.stepper.StepN(5)
	if !f.state.ParentInformed() {
		t.Fatalf("never sampled after settle")
	}
	if loadEvents != 1 {
		t.Fatalf("windowLoadComplete fired %d times", loadEvents)
	}
}

func TestWatcherEmitsOnlyOnHeightChange(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{})
	f.setHeight(500)
	f.doc.SetReadyState(host.ReadyComplete)
	f.watcher.Start()

	// Heights observed: 500, 500, 500, then 800.
	f.stepper.StepN(6)
	f.setHeight(800)
	f.stepper.StepN(3)

	if len(f.events) != 1 {
		t.Fatalf("expected exactly one dimension-changed, got %d", len(f.events))
	}
	evt := f.events[0]
	if evt["iframeHeight"] != 800 {
		t.Fatalf("unexpected height: %v", evt)
	}
	if evt["isFirstTime"] != true {
		t.Fatalf("first emitted sample must carry isFirstTime=true: %v", evt)
	}

	f.setHeight(650)
	f.stepper.StepN(2)
	if len(f.events) != 2 {
		t.Fatalf("shrink not reported: %d events", len(f.events))
	}
	if f.events[1]["isFirstTime"] != false {
		t.Fatalf("later samples must carry isFirstTime=false: %v", f.events[1])
	}
}

func TestWatcherWidthChangeAloneDoesNotEmit(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{})
	f.setHeight(500)
	f.doc.SetReadyState(host.ReadyComplete)
	f.watcher.Start()

	f.stepper.StepN(6)
	f.doc.SetSizes(host.Size{Width: 900, Height: 500}, host.Size{Width: 900, Height: 500})
	f.stepper.StepN(3)

	if len(f.events) != 0 {
		t.Fatalf("width-only change must not emit: %d events", len(f.events))
	}
}

func TestWatcherFirstReportUsesScrollSize(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{})
	// Scroll extent larger than offset extent: the baseline must come
	// from scroll so the parent avoids an initial scrollbar.
	f.doc.SetSizes(host.Size{Width: 600, Height: 900}, host.Size{Width: 600, Height: 700})
	f.doc.SetReadyState(host.ReadyComplete)
	f.watcher.Start()

	f.stepper.StepN(4)
	// Baseline 900 from scroll; the next cycle reads offset 700 and
	// reports the shrink.
	if len(f.events) != 1 {
		t.Fatalf("expected one event from scroll->offset transition, got %d", len(f.events))
	}
	if f.events[0]["iframeHeight"] != 700 {
		t.Fatalf("subsequent samples must use offset size: %v", f.events[0])
	}
}

func TestWatcherRunawayGuardStopsLoop(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{MaxDimensionChanges: 5})
	f.setHeight(100)
	f.doc.SetReadyState(host.ReadyComplete)
	f.watcher.Start()

	// Settle + baseline.
	f.stepper.StepN(3)

	// Grow on every cycle, well past the cap.
	for i := 0; i < 10; i++ {
		f.setHeight(200 + i*10)
		f.stepper.Step()
	}

	if len(f.events) != 5 {
		t.Fatalf("cap not honored: %d events", len(f.events))
	}
	if !f.watcher.Stopped() {
		t.Fatalf("runaway guard did not stop the loop")
	}

	// A later change must not resurrect the loop.
	f.setHeight(9999)
	f.stepper.StepN(3)
	if len(f.events) != 5 {
		t.Fatalf("stopped loop kept emitting: %d events", len(f.events))
	}
	if !f.stepper.Idle() {
		t.Fatalf("stopped loop still rescheduling")
	}
}

func TestWatcherDefaultCapIsFifty(t *testing.T) {
	testlog.Start(t)

	if DefaultWatcherConfig().MaxDimensionChanges != 50 {
		t.Fatalf("unexpected default cap: %d", DefaultWatcherConfig().MaxDimensionChanges)
	}
}

func TestWatcherKeepsPollingAtFixedPoint(t *testing.T) {
	testlog.Start(t)

	f := newWatcherFixture(t, WatcherConfig{})
	f.setHeight(500)
	f.doc.SetReadyState(host.ReadyComplete)
	f.watcher.Start()

	f.stepper.StepN(20)
	if f.stepper.Idle() {
		t.Fatalf("converged loop must keep polling as an idle watch")
	}
	if len(f.events) != 0 {
		t.Fatalf("stable height emitted %d events", len(f.events))
	}
}
