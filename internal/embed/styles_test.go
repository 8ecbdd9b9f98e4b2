package embed

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/calembed/embedctl/internal/testutil/testlog"
)

func newTestRegistry() (*Registry, *State) {
	state := NewState()
	return NewRegistry(state, log.Logger), state
}

func TestRegisterReplaysCurrentSlice(t *testing.T) {
	testlog.Start(t)

	r, state := newTestRegistry()
	state.mergeStyles(Config{TargetEventTypeListItem: {"background": "red"}})

	var got []Attributes
	r.Register(TargetEventTypeListItem, func(attrs Attributes) {
		got = append(got, attrs)
	})

	if len(got) != 1 {
		t.Fatalf("expected immediate replay, got %d calls", len(got))
	}
	if got[0]["background"] != "red" {
		t.Fatalf("replay slice wrong: %v", got[0])
	}
}

func TestRegisterUnknownTargetGetsEmptySlice(t *testing.T) {
	testlog.Start(t)

	r, _ := newTestRegistry()
	called := false
	r.Register(TargetEnabledDateButton, func(attrs Attributes) {
		called = true
		if attrs == nil {
			t.Fatalf("nil slice for unconfigured target")
		}
		if len(attrs) != 0 {
			t.Fatalf("unexpected attributes: %v", attrs)
		}
	})
	if !called {
		t.Fatalf("callback not replayed")
	}
}

func TestBroadcastNotifiesRegisteredTargets(t *testing.T) {
	testlog.Start(t)

	r, _ := newTestRegistry()
	var got []Attributes
	r.Register(TargetEventTypeListItem, func(attrs Attributes) {
		got = append(got, attrs)
	})

	r.Broadcast(Config{TargetEventTypeListItem: {"background": "red"}})

	if len(got) != 2 {
		t.Fatalf("expected replay + broadcast, got %d calls", len(got))
	}
	if got[1]["background"] != "red" {
		t.Fatalf("broadcast slice wrong: %v", got[1])
	}
}

func TestBroadcastAfterUnregisterIsSilent(t *testing.T) {
	testlog.Start(t)

	r, _ := newTestRegistry()
	calls := 0
	r.Register(TargetEventTypeListItem, func(Attributes) { calls++ })
	r.Unregister(TargetEventTypeListItem)

	r.Broadcast(Config{TargetEventTypeListItem: {"background": "red"}})

	if calls != 1 {
		t.Fatalf("unregistered target still notified: %d calls", calls)
	}
}

func TestBroadcastLastRegistrationWins(t *testing.T) {
	testlog.Start(t)

	r, _ := newTestRegistry()
	first := 0
	second := 0
	r.Register(TargetEventTypeListItem, func(Attributes) { first++ })
	r.Register(TargetEventTypeListItem, func(Attributes) { second++ })

	r.Broadcast(Config{TargetEventTypeListItem: {"background": "red"}})

	if first != 1 {
		t.Fatalf("replaced callback received broadcast: %d", first)
	}
	if second != 2 {
		t.Fatalf("replacement callback missed broadcast: %d", second)
	}
}

func TestBroadcastDropsUnknownAttributes(t *testing.T) {
	testlog.Start(t)

	r, state := newTestRegistry()
	r.Broadcast(Config{
		TargetEventTypeListItem: {"background": "red", "position": "fixed"},
		Target("unknownTarget"):  {"background": "red"},
	})

	slice := state.styleSlice(TargetEventTypeListItem)
	if _, ok := slice["position"]; ok {
		t.Fatalf("disallowed attribute stored: %v", slice)
	}
	if slice["background"] != "red" {
		t.Fatalf("allowed attribute lost: %v", slice)
	}
	if len(state.styleSlice(Target("unknownTarget"))) != 0 {
		t.Fatalf("unknown target stored")
	}
}

func TestBrandingAcceptsPaletteColors(t *testing.T) {
	testlog.Start(t)

	r, state := newTestRegistry()
	r.Broadcast(Config{TargetBranding: {"brandColor": "#292929", "background": "red"}})

	slice := state.styleSlice(TargetBranding)
	if slice["brandColor"] != "#292929" {
		t.Fatalf("palette color lost: %v", slice)
	}
	if _, ok := slice["background"]; ok {
		t.Fatalf("non-palette attribute stored on branding: %v", slice)
	}
}

func TestUnregisterDuringBroadcastAffectsNextCycle(t *testing.T) {
	testlog.Start(t)

	r, _ := newTestRegistry()
	listCalls := 0
	buttonCalls := 0
	r.Register(TargetEventTypeListItem, func(Attributes) {
		listCalls++
		r.Unregister(TargetEnabledDateButton)
	})
	r.Register(TargetEnabledDateButton, func(Attributes) { buttonCalls++ })

	r.Broadcast(Config{TargetEventTypeListItem: {"background": "red"}})
	firstCycle := buttonCalls

	r.Broadcast(Config{TargetEventTypeListItem: {"background": "blue"}})

	// The mid-flight unregister must be honored by the next cycle.
	if buttonCalls != firstCycle {
		t.Fatalf("unregistered target notified on later broadcast")
	}
	if listCalls != 3 {
		t.Fatalf("surviving target missed broadcasts: %d", listCalls)
	}
}
