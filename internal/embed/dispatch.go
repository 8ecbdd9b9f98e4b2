package embed

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/calembed/embedctl/internal/bus"
	"github.com/calembed/embedctl/internal/host"
	"github.com/calembed/embedctl/internal/observability"
	"github.com/calembed/embedctl/internal/protocol"
	"github.com/calembed/embedctl/internal/sched"
)

// Outcome classifies how an inbound instruction resolved. Every message
// lands on exactly one of these; none of them raises.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeDeferred Outcome = "deferred"
	OutcomeDropped  Outcome = "dropped"
)

// HandlerFunc executes one instruction method.
type HandlerFunc func(arg json.RawMessage) Outcome

// UIInstruction is the arg schema for the ui method.
type UIInstruction struct {
	Styles Config `json:"styles"`
	Theme  string `json:"theme,omitempty"`
}

// Dispatcher routes inbound protocol messages to method handlers.
// The registry is fixed at construction and open for extension.
type Dispatcher struct {
	state       *State
	registry    *Registry
	doc         host.Document
	scheduler   sched.Scheduler
	bus         *bus.Bus
	log         zerolog.Logger
	minPlanTier int

	handlers map[string]HandlerFunc
}

func NewDispatcher(state *State, registry *Registry, doc host.Document, scheduler sched.Scheduler, b *bus.Bus, minPlanTier int, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		state:       state,
		registry:    registry,
		doc:         doc,
		scheduler:   scheduler,
		bus:         b,
		log:         log,
		minPlanTier: minPlanTier,
	}
	d.handlers = map[string]HandlerFunc{
		MethodUI:                     d.handleUI,
		MethodParentKnowsIframeReady: d.handleParentKnowsIframeReady,
	}
	return d
}

// RegisterMethod extends the instruction registry. Re-registering a
// method replaces its handler.
func (d *Dispatcher) RegisterMethod(method string, h HandlerFunc) {
	if method == "" || h == nil {
		return
	}
	d.handlers[method] = h
}

// HandleRaw decodes and routes one wire message. Wrong originator,
// malformed shape, or an unknown method degrade to a logged drop; the
// host page must never be broken by this guest's traffic.
func (d *Dispatcher) HandleRaw(data []byte) Outcome {
	in, err := protocol.DecodeInbound(data)
	if err != nil {
		d.log.Debug().Err(err).Msg("inbound message ignored")
		observability.RecordInstruction("invalid", string(OutcomeDropped))
		return OutcomeDropped
	}
	h, ok := d.handlers[in.Method]
	if !ok {
		d.log.Debug().Str("method", in.Method).Msg("unknown instruction method")
		observability.RecordInstruction(in.Method, string(OutcomeDropped))
		return OutcomeDropped
	}
	outcome := h(in.Arg)
	observability.RecordInstruction(in.Method, string(outcome))
	return outcome
}

func (d *Dispatcher) handleUI(arg json.RawMessage) Outcome {
	var instr UIInstruction
	if len(arg) > 0 {
		if err := json.Unmarshal(arg, &instr); err != nil {
			d.log.Debug().Err(err).Msg("ui instruction arg malformed")
			return OutcomeDropped
		}
	}
	return d.applyUI(instr)
}

// applyUI is readiness-gated: until the hosting page publishes its plan
// tier the instruction is not dropped but re-invoked on the next frame,
// so pacing follows browser repaint cadence rather than a fixed timeout.
func (d *Dispatcher) applyUI(instr UIInstruction) Outcome {
	tier, published := d.doc.PlanTier()
	if !published {
		d.scheduler.RequestFrame(func() { d.applyUI(instr) })
		return OutcomeDeferred
	}
	if tier < d.minPlanTier {
		d.log.Info().
			Int("tier", tier).
			Int("min_tier", d.minPlanTier).
			Msg("ui instruction rejected by plan tier")
		return OutcomeDropped
	}

	if instr.Theme != "" {
		d.state.SetThemeIfUnset(instr.Theme)
	}

	// The body target has no reactive subscriber; apply it straight to
	// the document root before handing the rest to the registry.
	if attrs, ok := instr.Styles[TargetBody]; ok {
		for attr, value := range normalizeAttributes(TargetBody, attrs) {
			d.doc.ApplyRootStyle(attr, value)
		}
	}
	d.registry.Broadcast(instr.Styles)
	return OutcomeApplied
}

// handleParentKnowsIframeReady runs the second half of the readiness
// handshake: wait until the watcher has established dimensions, then
// reveal the document on the next frame and announce linkReady.
func (d *Dispatcher) handleParentKnowsIframeReady(json.RawMessage) Outcome {
	d.awaitDimensions()
	return OutcomeApplied
}

func (d *Dispatcher) awaitDimensions() {
	if !d.state.ParentInformed() {
		d.scheduler.RunAsap(d.awaitDimensions)
		return
	}
	d.scheduler.RequestFrame(d.reveal)
}

func (d *Dispatcher) reveal() {
	if !d.state.MarkLinkReadyFired() {
		return
	}
	d.doc.SetVisible(true)
	d.bus.Fire(EventLinkReady, map[string]any{})
}
