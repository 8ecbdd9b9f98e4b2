package protocol

import "encoding/json"

// EncodeOutbound marshals an event detail with the originator tag
// flattened alongside the detail's own keys.
func EncodeOutbound(detail map[string]any) ([]byte, error) {
	if detail == nil {
		return nil, ErrNilDetail
	}
	if _, clash := detail["originator"]; clash {
		return nil, ErrReservedDetailKey
	}
	out := make(map[string]any, len(detail)+1)
	out["originator"] = Originator
	for k, v := range detail {
		out[k] = v
	}
	return json.Marshal(out)
}

// EncodeInstruction builds a parent->guest instruction message. The guest
// never sends these; the simulator and tests do.
func EncodeInstruction(method string, arg any) ([]byte, error) {
	if method == "" {
		return nil, ErrMissingMethod
	}
	msg := map[string]any{
		"originator": Originator,
		"method":     method,
	}
	if arg != nil {
		msg["arg"] = arg
	}
	return json.Marshal(msg)
}
