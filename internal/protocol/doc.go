// Package protocol owns the embed wire contract and parsing primitives.
//
// Ownership boundary:
// - inbound instruction envelope decode/validation
// - outbound event envelope encode
//
// The wire is the structured-clone channel between the parent page and
// the guest document; envelopes travel as JSON objects tagged with the
// protocol originator.
package protocol
