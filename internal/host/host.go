// Package host owns the guest's environment contracts.
//
// Ownership boundary:
// - document measurement/visibility surface
// - parent message port
// - host-page globals (plan tier, page status)
//
// The runtime only ever talks to the surrounding document through these
// interfaces, which keeps the embed core testable without a browser.
package host

// ReadyState mirrors the document load lifecycle.
type ReadyState string

const (
	ReadyLoading     ReadyState = "loading"
	ReadyInteractive ReadyState = "interactive"
	ReadyComplete    ReadyState = "complete"
)

// Size is a measured document extent in CSS pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Document is the guest-side view of the hosting document.
type Document interface {
	// URL returns the document's current location.
	URL() string
	// ReadyState reports the load lifecycle phase.
	ReadyState() ReadyState
	// ScrollSize measures the document root's scroll extent. It cannot
	// shrink below the viewport, so it is only trusted for the first
	// report.
	ScrollSize() Size
	// OffsetSize measures the document root's offset extent.
	OffsetSize() Size
	// SetVisible toggles the document body between hidden and shown.
	SetVisible(visible bool)
	// ApplyRootStyle sets one style attribute directly on the document
	// root, bypassing any reactive rendering.
	ApplyRootStyle(attr, value string)
	// PlanTier reports the host plan entitlement tier global, and
	// whether the hosting page has published it yet.
	PlanTier() (int, bool)
	// PageStatus reports the server-rendered page status global.
	PageStatus() string
}

// Port posts a wire payload toward the parent window. Implementations
// must be fire-and-forget and must tolerate a missing parent.
type Port interface {
	Post(payload []byte)
}
