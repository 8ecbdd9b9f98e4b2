// Package sched owns cooperative scheduling primitives.
//
// Ownership boundary:
// - single-owner run loop (frame cadence + one-shot timers)
// - RunAsap engine strategy
// - deterministic stepper for tests
//
// Every runtime callback executes on the loop owner goroutine, so state
// touched only from scheduled callbacks needs no locking.
package sched
