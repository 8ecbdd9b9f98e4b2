// Package bus owns the outward action bus.
//
// Ownership boundary:
// - event emission from the guest runtime
// - pattern subscription (exact, "prefix*", "*")
//
// Handlers run synchronously on the caller, which in the runtime is
// always the scheduler's owner goroutine.
package bus

import (
	"strings"
	"sync"
)

// Handler receives a fired event by name with its detail payload.
type Handler func(name string, detail map[string]any)

type subscription struct {
	pattern string
	handler Handler
}

// Bus is the guest's outward event bus. Subscriptions are append-only;
// the guest document never detaches listeners before it unloads.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
}

func New() *Bus {
	return &Bus{}
}

// On subscribes handler to events matching pattern: an exact name, a
// "prefix*" glob, or "*" for everything.
func (b *Bus) On(pattern string, handler Handler) {
	if pattern == "" || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pattern: pattern, handler: handler})
}

// Fire delivers the event to every matching subscriber in subscription
// order. A nil detail is delivered as an empty map so handlers can
// forward it without guarding.
func (b *Bus) Fire(name string, detail map[string]any) {
	if name == "" {
		return
	}
	if detail == nil {
		detail = map[string]any{}
	}
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if patternMatches(sub.pattern, name) {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()
	for _, h := range matched {
		h(name, detail)
	}
}

func patternMatches(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return pattern == name
}
