// guestd runs the guest embed runtime headless: a simulated document,
// instructions read from stdin as JSON lines, outbound protocol
// messages written to stdout. Useful for driving the protocol from a
// parent-side harness or by hand.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/calembed/embedctl/internal/admin"
	"github.com/calembed/embedctl/internal/bus"
	"github.com/calembed/embedctl/internal/config"
	"github.com/calembed/embedctl/internal/embed"
	"github.com/calembed/embedctl/internal/host"
	"github.com/calembed/embedctl/internal/logging"
	"github.com/calembed/embedctl/internal/sched"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "guestd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "runtime config file (toml)")
		pageURL    = flag.String("url", "https://cal.local/acme/intro?embed=acme", "document URL")
		adminAddr  = flag.String("admin", "", "admin listen addr (overrides config)")
		width      = flag.Int("width", 600, "initial document width")
		height     = flag.Int("height", 800, "initial document height")
	)
	flag.Parse()

	logging.ConfigureRuntime()
	queue := logging.NewQueue(logging.DefaultQueueSize)
	logger := log.Logger.Hook(queue)
	log.Logger = logger

	cfg, err := config.LoadRuntimeConfig(*configPath)
	if err != nil {
		return err
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc := host.NewSimDocument(*pageURL)
	doc.SetSizes(
		host.Size{Width: *width, Height: *height},
		host.Size{Width: *width, Height: *height},
	)
	doc.SetPlanTier(1)
	doc.SetReadyState(host.ReadyComplete)

	loop := sched.NewLoop(sched.Config{
		Engine:        sched.Engine(cfg.Engine),
		FrameInterval: cfg.FrameInterval(),
		AsapDelay:     cfg.AsapDelay(),
	})
	loop.Start()
	defer loop.Stop()

	svc, err := embed.NewService(embed.ServiceConfig{
		Doc:       doc,
		Port:      host.NewWriterPort(os.Stdout),
		Scheduler: loop,
		Bus:       bus.New(),
		Watcher: embed.WatcherConfig{
			MaxDimensionChanges: cfg.MaxDimensionChanges,
			SettleDelay:         cfg.SettleDelay(),
		},
		MinPlanTier: cfg.MinPlanTier,
		Logger:      &logger,
	})
	if err != nil {
		return err
	}
	svc.Start()

	adminErr := make(chan error, 1)
	if cfg.AdminAddr != "" {
		srv := admin.New(svc.Snapshot, queue, cfg.CorsOrigins)
		go func() {
			adminErr <- srv.Run(ctx, cfg.AdminAddr)
		}()
	}

	stdinDone := make(chan error, 1)
	go func() {
		stdinDone <- readInstructions(os.Stdin, svc)
	}()

	log.Info().Str("url", *pageURL).Str("admin", cfg.AdminAddr).Msg("guestd running")

	select {
	case <-ctx.Done():
		log.Info().Msg("guestd shutdown")
		return nil
	case err := <-adminErr:
		return err
	case err := <-stdinDone:
		return err
	}
}

// readInstructions feeds stdin lines into the runtime until EOF.
// Malformed lines are the dispatcher's problem; it drops them.
func readInstructions(r *os.File, svc *embed.Service) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		svc.HandleMessage(line)
	}
	return scanner.Err()
}
