// Package admin owns the optional debug surface of the guest runtime:
// health, state snapshot, log queue, and metrics over local HTTP. It is
// only served when debugging is requested; the embedded document itself
// never depends on it.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/calembed/embedctl/internal/embed"
	"github.com/calembed/embedctl/internal/logging"
	"github.com/calembed/embedctl/internal/observability"
)

var ErrMissingListenAddr = errors.New("admin: missing listen addr")

// Server exposes the runtime's debug routes.
type Server struct {
	snapshot func() embed.Snapshot
	queue    *logging.Queue
	router   *gin.Engine
	started  time.Time
}

func New(snapshot func() embed.Snapshot, queue *logging.Queue, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		snapshot: snapshot,
		queue:    queue,
		router:   r,
		started:  time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "embedctl-guest",
			"version": "0.0.1",
		})
	})

	s.router.GET("/state", func(c *gin.Context) {
		if s.snapshot == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no runtime attached"})
			return
		}
		c.JSON(http.StatusOK, s.snapshot())
	})

	s.router.GET("/logs", func(c *gin.Context) {
		if s.queue == nil {
			c.JSON(http.StatusOK, gin.H{"entries": []logging.Entry{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": s.queue.Entries()})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return ErrMissingListenAddr
	}
	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	if len(out) == 0 {
		out = []string{"http://localhost:3000"}
	}
	return out
}
