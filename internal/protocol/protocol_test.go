package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeInboundValid(t *testing.T) {
	raw := []byte(`{"originator":"CAL","method":"ui","arg":{"styles":{"body":{"background":"red"}}}}`)
	in, err := DecodeInbound(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Method != "ui" {
		t.Fatalf("unexpected method: %q", in.Method)
	}
	if len(in.Arg) == 0 {
		t.Fatalf("expected arg payload")
	}
}

func TestDecodeInboundToleratesUnknownFields(t *testing.T) {
	raw := []byte(`{"originator":"CAL","method":"ui","arg":null,"future":"field"}`)
	in, err := DecodeInbound(raw)
	if err != nil {
		t.Fatalf("decode with unknown fields: %v", err)
	}
	if in.Originator != Originator {
		t.Fatalf("unexpected originator: %q", in.Originator)
	}
}

func TestDecodeInboundWrongOriginator(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"originator":"OTHER","method":"ui"}`),
		[]byte(`{"method":"ui"}`),
		[]byte(`{"originator":42,"method":"ui"}`),
	}
	for _, raw := range cases {
		if _, err := DecodeInbound(raw); !errors.Is(err, ErrWrongOriginator) {
			t.Fatalf("expected ErrWrongOriginator for %s, got %v", raw, err)
		}
	}
}

func TestDecodeInboundBadMethod(t *testing.T) {
	if _, err := DecodeInbound([]byte(`{"originator":"CAL","method":7}`)); !errors.Is(err, ErrMethodNotString) {
		t.Fatalf("expected ErrMethodNotString, got %v", err)
	}
	if _, err := DecodeInbound([]byte(`{"originator":"CAL"}`)); !errors.Is(err, ErrMissingMethod) {
		t.Fatalf("expected ErrMissingMethod, got %v", err)
	}
	if _, err := DecodeInbound([]byte(`{"originator":"CAL","method":""}`)); !errors.Is(err, ErrMissingMethod) {
		t.Fatalf("expected ErrMissingMethod for empty method, got %v", err)
	}
}

func TestDecodeInboundNotObject(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("42"), []byte(`"hi"`), []byte("{broken")} {
		if _, err := DecodeInbound(raw); !errors.Is(err, ErrNotObject) {
			t.Fatalf("expected ErrNotObject for %q, got %v", raw, err)
		}
	}
}

func TestEncodeOutboundFlattensDetail(t *testing.T) {
	payload, err := EncodeOutbound(map[string]any{
		"type": "dimension-changed",
		"data": map[string]any{"iframeHeight": 800},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["originator"] != Originator {
		t.Fatalf("missing originator tag: %v", decoded)
	}
	if decoded["type"] != "dimension-changed" {
		t.Fatalf("detail not flattened: %v", decoded)
	}
}

func TestEncodeOutboundRejectsReservedKey(t *testing.T) {
	if _, err := EncodeOutbound(map[string]any{"originator": "SPOOF"}); !errors.Is(err, ErrReservedDetailKey) {
		t.Fatalf("expected ErrReservedDetailKey, got %v", err)
	}
	if _, err := EncodeOutbound(nil); !errors.Is(err, ErrNilDetail) {
		t.Fatalf("expected ErrNilDetail, got %v", err)
	}
}

func TestEncodeInstructionRoundTrip(t *testing.T) {
	payload, err := EncodeInstruction("ui", map[string]any{"theme": "dark"})
	if err != nil {
		t.Fatalf("encode instruction: %v", err)
	}
	in, err := DecodeInbound(payload)
	if err != nil {
		t.Fatalf("decode instruction: %v", err)
	}
	if in.Method != "ui" {
		t.Fatalf("unexpected method: %q", in.Method)
	}
}
