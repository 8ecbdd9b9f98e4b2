package embed

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/calembed/embedctl/internal/bus"
	"github.com/calembed/embedctl/internal/host"
	"github.com/calembed/embedctl/internal/sched"
)

var (
	ErrNilDocument  = errors.New("embed: nil document")
	ErrNilScheduler = errors.New("embed: nil scheduler")
)

// ServiceConfig wires the guest runtime to its environment.
type ServiceConfig struct {
	Doc       host.Document
	Port      host.Port
	Scheduler sched.Scheduler
	Bus       *bus.Bus
	Watcher   WatcherConfig
	// MinPlanTier is the entitlement floor for ui instructions.
	MinPlanTier int
	Logger      *zerolog.Logger
}

// Service owns the guest document's protocol lifecycle.
type Service struct {
	cfg ServiceConfig
	log zerolog.Logger

	state      *State
	resolver   *Resolver
	registry   *Registry
	messenger  *Messenger
	dispatcher *Dispatcher
	watcher    *Watcher

	// active gates inbound routing: it only turns on when the bootstrap
	// decided the document actually speaks the protocol.
	active    atomic.Bool
	prerender atomic.Bool
	debug     atomic.Bool
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Doc == nil {
		return nil, ErrNilDocument
	}
	if cfg.Scheduler == nil {
		return nil, ErrNilScheduler
	}
	if cfg.Bus == nil {
		cfg.Bus = bus.New()
	}
	if cfg.MinPlanTier <= 0 {
		cfg.MinPlanTier = 1
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	s := &Service{cfg: cfg, log: logger}
	s.state = NewState()
	s.resolver = NewResolver(s.state, cfg.Doc)
	s.registry = NewRegistry(s.state, logger)
	s.messenger = NewMessenger(cfg.Port, logger)
	s.dispatcher = NewDispatcher(s.state, s.registry, cfg.Doc, cfg.Scheduler, cfg.Bus, cfg.MinPlanTier, logger)
	s.watcher = NewWatcher(cfg.Watcher, s.state, cfg.Doc, cfg.Bus, cfg.Scheduler, logger)
	return s, nil
}

// Start enqueues the bootstrap onto the scheduler so every runtime
// mutation, bootstrap included, happens on the owner goroutine.
func (s *Service) Start() {
	s.cfg.Scheduler.Post(s.bootstrap)
}

// HandleMessage routes one raw wire message from the parent. Messages
// arriving while the protocol is inactive (prerender, top-level load,
// before bootstrap) are dropped silently.
func (s *Service) HandleMessage(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.cfg.Scheduler.Post(func() {
		if !s.active.Load() {
			return
		}
		s.dispatcher.HandleRaw(buf)
	})
}

// Registry exposes the style subscription API to the UI layer.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Bus exposes the outward action bus.
func (s *Service) Bus() *bus.Bus {
	return s.cfg.Bus
}

// Dispatcher exposes the instruction registry for extension.
func (s *Service) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Debug reports whether the debug query param was present at bootstrap.
func (s *Service) Debug() bool {
	return s.debug.Load()
}

func (s *Service) bootstrap() {
	pageURL := s.cfg.Doc.URL()

	if value, _ := queryParam(pageURL, ParamPrerender); value == "true" {
		s.prerender.Store(true)
		s.log.Info().Msg("prerender load, embed protocol suppressed")
		return
	}
	if value, present := queryParam(pageURL, ParamDebug); present && value != "false" {
		s.debug.Store(true)
	}

	namespace, embedded := s.resolver.Resolve()
	if !embedded {
		// Top-level load: nothing to negotiate, just show the page.
		s.cfg.Doc.SetVisible(true)
		s.log.Debug().Msg("top-level load, embed protocol skipped")
		return
	}

	if theme, ok := s.resolver.Theme(); ok {
		s.log.Debug().Str("theme", theme).Msg("session theme resolved")
	}

	s.messenger.BridgeBus(s.cfg.Bus)
	s.active.Store(true)
	s.watcher.Start()

	status := s.cfg.Doc.PageStatus()
	if status == "" || status == "200" {
		s.cfg.Bus.Fire(EventIframeReady, map[string]any{})
	} else {
		s.cfg.Bus.Fire(EventLinkFailed, map[string]any{
			"code": status,
			"msg":  "link failed to load",
			"data": map[string]any{"url": pageURL},
		})
	}

	s.log.Info().
		Str("namespace", namespace).
		Str("page_status", status).
		Bool("debug", s.debug.Load()).
		Msg("embed protocol active")
}

// Snapshot is a point-in-time view of the runtime for diagnostics.
type Snapshot struct {
	Embedded          bool     `json:"embedded"`
	Namespace         string   `json:"namespace,omitempty"`
	Theme             string   `json:"theme,omitempty"`
	Prerender         bool     `json:"prerender"`
	Debug             bool     `json:"debug"`
	ParentInformed    bool     `json:"parent_informed_about_dimensions"`
	WindowLoadFired   bool     `json:"window_load_fired"`
	LinkReadyFired    bool     `json:"link_ready_fired"`
	SubscribedTargets []string `json:"subscribed_targets"`
	DimensionChanges  int64    `json:"dimension_changes"`
	WatcherStopped    bool     `json:"watcher_stopped"`
}

func (s *Service) Snapshot() Snapshot {
	namespace, embedded, _ := s.state.Namespace()
	theme, _ := s.state.Theme()
	return Snapshot{
		Embedded:          embedded,
		Namespace:         namespace,
		Theme:             theme,
		Prerender:         s.prerender.Load(),
		Debug:             s.debug.Load(),
		ParentInformed:    s.state.ParentInformed(),
		WindowLoadFired:   s.state.WindowLoadFired(),
		LinkReadyFired:    s.state.LinkReadyFired(),
		SubscribedTargets: s.state.SubscribedTargets(),
		DimensionChanges:  s.watcher.Changes(),
		WatcherStopped:    s.watcher.Stopped(),
	}
}
