package embed

import "sync"

// State is the per-document embed store. It lives for the guest
// document's lifetime and is shared by the resolver, registry,
// dispatcher, and watcher. The runtime mutates it from the scheduler's
// owner goroutine only; the mutex keeps cross-goroutine readers (admin
// snapshots) safe.
type State struct {
	mu sync.RWMutex

	styles Config

	namespace         string
	namespacePresent  bool
	namespaceResolved bool

	theme    string
	themeSet bool

	subscriptions map[Target]UpdateFunc

	parentInformedAboutDimensions bool
	windowLoadFired               bool
	linkReadyFired                bool
}

func NewState() *State {
	return &State{
		styles:        make(Config),
		subscriptions: make(map[Target]UpdateFunc),
	}
}

// CacheNamespace stores the resolved embed namespace, including an
// explicit absence. Only the first call wins: embedding identity stays
// stable through in-page navigation.
func (s *State) CacheNamespace(value string, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.namespaceResolved {
		return
	}
	s.namespace = value
	s.namespacePresent = present
	s.namespaceResolved = true
}

// Namespace reports the cached namespace: its value, whether the embed
// param was present, and whether resolution has happened at all.
func (s *State) Namespace() (value string, present bool, resolved bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespace, s.namespacePresent, s.namespaceResolved
}

// SetThemeIfUnset records the session theme. Once set it never changes.
func (s *State) SetThemeIfUnset(theme string) bool {
	if theme == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.themeSet {
		return false
	}
	s.theme = theme
	s.themeSet = true
	return true
}

func (s *State) Theme() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme, s.themeSet
}

// MarkParentInformed flags that at least one dimension cycle completed.
func (s *State) MarkParentInformed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parentInformedAboutDimensions = true
}

func (s *State) ParentInformed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentInformedAboutDimensions
}

// MarkWindowLoadFired reports true exactly once.
func (s *State) MarkWindowLoadFired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.windowLoadFired {
		return false
	}
	s.windowLoadFired = true
	return true
}

func (s *State) WindowLoadFired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windowLoadFired
}

// MarkLinkReadyFired reports true exactly once.
func (s *State) MarkLinkReadyFired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.linkReadyFired {
		return false
	}
	s.linkReadyFired = true
	return true
}

func (s *State) LinkReadyFired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkReadyFired
}

// subscribe stores cb under target, reporting whether a prior
// registration was replaced. Last registration wins.
func (s *State) subscribe(target Target, cb UpdateFunc) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, replaced = s.subscriptions[target]
	s.subscriptions[target] = cb
	return replaced
}

func (s *State) unsubscribe(target Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptions, target)
}

// subscribersSnapshot copies the subscription map so a broadcast sees a
// consistent set even if targets unmount mid-delivery.
func (s *State) subscribersSnapshot() map[Target]UpdateFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Target]UpdateFunc, len(s.subscriptions))
	for target, cb := range s.subscriptions {
		out[target] = cb
	}
	return out
}

// SubscribedTargets lists registered target names, for diagnostics.
func (s *State) SubscribedTargets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.subscriptions))
	for target := range s.subscriptions {
		out = append(out, string(target))
	}
	return out
}

// mergeStyles folds newStyles into the stored config, shallow per
// target, last write wins per attribute. Returns nothing; readers pull
// slices via styleSlice.
func (s *State) mergeStyles(newStyles Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for target, attrs := range newStyles {
		existing, ok := s.styles[target]
		if !ok {
			existing = make(Attributes, len(attrs))
			s.styles[target] = existing
		}
		for attr, value := range attrs {
			existing[attr] = value
		}
	}
}

// styleSlice copies the current attribute set for one target; an
// unconfigured target yields an empty, non-nil slice.
func (s *State) styleSlice(target Target) Attributes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs := s.styles[target]
	out := make(Attributes, len(attrs))
	for attr, value := range attrs {
		out[attr] = value
	}
	return out
}

// Styles returns a deep copy of the whole style config.
func (s *State) Styles() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Config, len(s.styles))
	for target, attrs := range s.styles {
		slice := make(Attributes, len(attrs))
		for attr, value := range attrs {
			slice[attr] = value
		}
		out[target] = slice
	}
	return out
}
