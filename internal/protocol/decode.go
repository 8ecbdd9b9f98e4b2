package protocol

import (
	"bytes"
	"encoding/json"
)

// inboundWire defers method/originator typing so a non-string value is a
// protocol error rather than a JSON error. Unknown sibling fields are
// tolerated for forward compatibility.
type inboundWire struct {
	Originator json.RawMessage `json:"originator"`
	Method     json.RawMessage `json:"method"`
	Arg        json.RawMessage `json:"arg"`
}

// DecodeInbound parses a raw wire message into an instruction envelope.
// Anything not carrying the protocol originator and a string method is
// rejected with a sentinel error; callers drop, never crash.
func DecodeInbound(data []byte) (Inbound, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Inbound{}, ErrNotObject
	}
	var wire inboundWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Inbound{}, ErrNotObject
	}

	originator, ok := asString(wire.Originator)
	if !ok || originator != Originator {
		return Inbound{}, ErrWrongOriginator
	}
	if len(wire.Method) == 0 || bytes.Equal(wire.Method, []byte("null")) {
		return Inbound{}, ErrMissingMethod
	}
	method, ok := asString(wire.Method)
	if !ok {
		return Inbound{}, ErrMethodNotString
	}
	if method == "" {
		return Inbound{}, ErrMissingMethod
	}

	return Inbound{Originator: originator, Method: method, Arg: wire.Arg}, nil
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
