package embed

import (
	"github.com/rs/zerolog"

	"github.com/calembed/embedctl/internal/bus"
	"github.com/calembed/embedctl/internal/host"
	"github.com/calembed/embedctl/internal/observability"
	"github.com/calembed/embedctl/internal/protocol"
)

// Messenger is the one-way send primitive toward the parent window:
// wrap the payload with the protocol tag, post, forget. The guest does
// not know the parent's origin, so the parent validates content itself.
type Messenger struct {
	port host.Port
	log  zerolog.Logger
}

func NewMessenger(port host.Port, log zerolog.Logger) *Messenger {
	return &Messenger{port: port, log: log}
}

// Send posts the detail to the parent. No parent, no error: a top-level
// document simply has nowhere to post.
func (m *Messenger) Send(detail map[string]any) {
	if m.port == nil {
		return
	}
	payload, err := protocol.EncodeOutbound(detail)
	if err != nil {
		m.log.Warn().Err(err).Msg("outbound message dropped")
		return
	}
	m.port.Post(payload)
}

// BridgeBus forwards every bus event to the parent as a protocol
// message. Installed only when the document is embedded.
func (m *Messenger) BridgeBus(b *bus.Bus) {
	b.On("*", func(name string, detail map[string]any) {
		observability.RecordOutbound(name)
		m.Send(map[string]any{
			"type": name,
			"data": detail,
		})
	})
}
