package embed

import "github.com/rs/zerolog"

// Target names a styleable logical region of the guest UI.
type Target string

const (
	// TargetBody is the document background. It is not rendered by the
	// reactive layer, so it has no subscriber; the dispatcher applies it
	// straight to the document root.
	TargetBody Target = "body"

	TargetEventTypeListItem  Target = "eventTypeListItem"
	TargetEnabledDateButton  Target = "enabledDateButton"
	TargetDisabledDateButton Target = "disabledDateButton"

	// TargetBranding carries the named palette colors.
	TargetBranding Target = "branding"
)

// Attributes is a partial style slice: only listed attributes are ever
// mutated on existing DOM.
type Attributes map[string]string

// Config maps targets to their attribute slices.
type Config map[Target]Attributes

// UpdateFunc receives a target's merged style slice on registration and
// after every broadcast.
type UpdateFunc func(Attributes)

var styleAttrs = map[string]struct{}{
	"background":       {},
	"background-color": {},
	"color":            {},
}

var brandColors = map[string]struct{}{
	"brandColor":     {},
	"darkColor":      {},
	"darkerColor":    {},
	"darkestColor":   {},
	"highlightColor": {},
	"lightColor":     {},
	"lighterColor":   {},
	"lightestColor":  {},
	"medianColor":    {},
}

// normalizeAttributes drops attributes outside the target's allowed set.
// Unknown attributes are a forward-compatibility case, not an error.
func normalizeAttributes(target Target, attrs Attributes) Attributes {
	allowed := styleAttrs
	if target == TargetBranding {
		allowed = brandColors
	}
	out := make(Attributes, len(attrs))
	for attr, value := range attrs {
		if _, ok := allowed[attr]; !ok {
			continue
		}
		out[attr] = value
	}
	return out
}

// normalizeConfig applies normalizeAttributes across a whole config,
// skipping targets outside the known set.
func normalizeConfig(cfg Config) Config {
	out := make(Config, len(cfg))
	for target, attrs := range cfg {
		switch target {
		case TargetBody, TargetEventTypeListItem, TargetEnabledDateButton,
			TargetDisabledDateButton, TargetBranding:
			out[target] = normalizeAttributes(target, attrs)
		}
	}
	return out
}

// Registry bridges broadcast style updates to mounted UI targets.
type Registry struct {
	state *State
	log   zerolog.Logger
}

func NewRegistry(state *State, log zerolog.Logger) *Registry {
	return &Registry{state: state, log: log}
}

// Register stores cb under target and immediately replays the current
// slice so a late-mounting element synchronizes without waiting for the
// next broadcast. A second registration for the same target silently
// replaces the first.
func (r *Registry) Register(target Target, cb UpdateFunc) {
	if cb == nil {
		return
	}
	if replaced := r.state.subscribe(target, cb); replaced {
		r.log.Debug().Str("target", string(target)).Msg("style subscriber replaced")
	}
	cb(r.state.styleSlice(target))
}

// Unregister removes the target's callback; later broadcasts must not
// touch it.
func (r *Registry) Unregister(target Target) {
	r.state.unsubscribe(target)
}

// Broadcast merges newStyles into the stored config and notifies every
// currently registered callback with its merged slice.
func (r *Registry) Broadcast(newStyles Config) {
	r.state.mergeStyles(normalizeConfig(newStyles))
	for target, cb := range r.state.subscribersSnapshot() {
		cb(r.state.styleSlice(target))
	}
}
