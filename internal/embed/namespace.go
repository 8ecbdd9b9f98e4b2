package embed

import (
	"net/url"

	"github.com/calembed/embedctl/internal/host"
)

// Resolver derives the embed identity from the document URL once per
// document lifetime.
type Resolver struct {
	state *State
	doc   host.Document
}

func NewResolver(state *State, doc host.Document) *Resolver {
	return &Resolver{state: state, doc: doc}
}

// Resolve returns the embed namespace and whether the embed param was
// present. The first call parses the document URL and caches the result,
// absence included; later calls return the cache even if the URL has
// since changed.
func (r *Resolver) Resolve() (string, bool) {
	if value, present, resolved := r.state.Namespace(); resolved {
		return value, present
	}
	value, present := queryParam(r.doc.URL(), ParamEmbed)
	r.state.CacheNamespace(value, present)
	return value, present
}

// IsEmbedded reports whether the document runs inside a parent page.
// An empty-but-present embed param still counts as embedded; only
// absence means top-level.
func (r *Resolver) IsEmbedded() bool {
	_, present := r.Resolve()
	return present
}

// Theme resolves the session theme from the theme query param, cached
// on first read like the namespace.
func (r *Resolver) Theme() (string, bool) {
	if theme, ok := r.state.Theme(); ok {
		return theme, true
	}
	theme, present := queryParam(r.doc.URL(), ParamTheme)
	if !present || theme == "" {
		return "", false
	}
	r.state.SetThemeIfUnset(theme)
	return r.state.Theme()
}

// queryParam reads one query parameter, distinguishing an empty value
// from absence. Unparseable URLs read as absent: the guest never errors
// on its own location.
func queryParam(rawURL, key string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	values := u.Query()
	if !values.Has(key) {
		return "", false
	}
	return values.Get(key), true
}
