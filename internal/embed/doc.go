// Package embed owns the guest-side embed protocol runtime.
//
// Ownership boundary:
// - per-document state store
// - namespace/theme resolution
// - style subscription registry
// - inbound instruction dispatch
// - dimension watch loop
// - parent messaging
//
// Lifecycle order: resolve -> bridge -> watch -> handshake -> reveal.
// A prerender or top-level load skips the protocol entirely.
//
// Nothing in this package may let an error escape to the hosting page:
// fallible branches degrade to a logged no-op.
package embed
