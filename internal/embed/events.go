package embed

// Outward event names fired on the action bus and mirrored to the
// parent by the messenger bridge.
const (
	EventIframeReady        = "iframeReady"
	EventLinkReady          = "linkReady"
	EventLinkFailed         = "linkFailed"
	EventWindowLoadComplete = "windowLoadComplete"
	EventDimensionChanged   = "dimension-changed"
)

// Inbound instruction method names.
const (
	MethodUI                     = "ui"
	MethodParentKnowsIframeReady = "parentKnowsIframeReady"
)

// Query parameters consumed from the document URL.
const (
	ParamEmbed     = "embed"
	ParamTheme     = "theme"
	ParamDebug     = "debug"
	ParamPrerender = "prerender"
)
