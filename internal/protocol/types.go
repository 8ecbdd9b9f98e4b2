package protocol

import "encoding/json"

// Originator tags every message on the embed wire, both directions.
// Messages without it are somebody else's traffic and get ignored.
const Originator = "CAL"

// Inbound is the parent->guest instruction envelope.
type Inbound struct {
	Originator string
	Method     string
	Arg        json.RawMessage
}
