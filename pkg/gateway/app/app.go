// Package app wires the gateway's pipeline stages together and manages their
// lifecycle.
//
// Session path:
//
//	Engine (UDP discovery + association + poll) → [replyCh] → Dispatcher →
//	WorkerPool → subscriber webhooks
//
// Every decoded inbound and constructed outbound PDU is additionally mirrored
// to the optional capture sink. The HTTP control surface runs alongside,
// reading and writing the same MonitorTable/SubscriptionTable the session and
// dispatch stages use.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vpbank/intellivue-gateway/capture"
	"github.com/vpbank/intellivue-gateway/intellivue/nomenclature"
	"github.com/vpbank/intellivue-gateway/models"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/config"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/dispatch"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/httpapi"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/session"
)

// Config holds the top-level settings for the gateway application.
// Zero-value fields fall back to documented defaults.
type Config struct {
	// ConfigPaths are the YAML file locations. Use config.PathsFromEnv() to
	// populate from environment variables.
	ConfigPaths config.Paths

	// ReplyBufferSize is the capacity of the channel carrying decoded poll
	// replies from the session engine to the dispatcher. Default: 1000.
	ReplyBufferSize int
}

func (c *Config) withDefaults() {
	if c.ReplyBufferSize <= 0 {
		c.ReplyBufferSize = 1000
	}
}

// App orchestrates the full gateway pipeline. Create one with New, start it
// with Start, and stop it with Stop (or cancel the context).
type App struct {
	cfg    Config
	logger *slog.Logger

	loadedCfg *config.LoadedConfig

	monitors *session.MonitorTable
	ips      *session.IPIndex
	registry *nomenclature.Registry
	subs     *dispatch.SubscriptionTable

	capSink *capture.Sink
	engine  *session.Engine
	pool    *dispatch.WorkerPool
	disp    *dispatch.Dispatcher
	http    *httpapi.Server

	replyCh chan dispatch.PollReply

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	httpErr <-chan error
}

// New constructs an App. It does not start anything — call Start for that.
func New(cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	cfg.withDefaults()
	return &App{cfg: cfg, logger: logger}
}

// Start loads configuration, constructs all pipeline stages, and launches the
// goroutines that connect them. It returns an error if configuration loading,
// capture-sink setup, or UDP socket binding fails.
//
// The caller must eventually call Stop (or cancel the passed-in context's
// parent) to release resources.
func (a *App) Start(ctx context.Context) error {
	a.logger.Info("app: loading configuration")
	loadedCfg, err := config.Load(a.cfg.ConfigPaths, a.logger)
	if err != nil {
		return fmt.Errorf("app: load config: %w", err)
	}
	a.loadedCfg = loadedCfg
	a.logger.Info("app: configuration loaded", "subscription_seeds", len(loadedCfg.Subscriptions))

	a.monitors = session.NewMonitorTable()
	a.ips = session.NewIPIndex()
	a.registry = nomenclature.New()
	a.subs = dispatch.NewSubscriptionTable()
	for _, seed := range loadedCfg.Subscriptions {
		id := seed.ID
		if id == "" {
			id = fmt.Sprintf("seed-%s", seed.MAC)
		}
		a.subs.Add(models.Subscription{ID: id, MonitorMAC: seed.MAC, URL: seed.URL})
	}

	a.capSink, err = capture.New(capture.Config{
		FilePath:   loadedCfg.Settings.PCAPPath,
		MaxBytes:   loadedCfg.Settings.PCAPMaxBytes,
		MaxBackups: loadedCfg.Settings.PCAPMaxBackups,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("app: open capture sink: %w", err)
	}

	a.replyCh = make(chan dispatch.PollReply, a.cfg.ReplyBufferSize)

	a.pool = dispatch.NewWorkerPool(loadedCfg.Settings.WebhookWorkers, loadedCfg.Settings.WebhookTimeout, a.logger)
	a.disp = dispatch.New(a.registry, a.subs, a.pool, a.logger)

	a.engine = session.New(session.Config{
		DiscoveryAddr: loadedCfg.Settings.DiscoveryAddr,
		ProtocolAddr:  loadedCfg.Settings.ProtocolAddr,
		PollInterval:  loadedCfg.Settings.PollInterval,
	}, a.monitors, a.ips, a.registry, a.replyCh, a.logger)
	a.engine.SetCapture(a.capSink)

	a.http = httpapi.New(loadedCfg.Settings.HTTPAddr, a.monitors, a.subs, a.logger)

	pipeCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.pool.Start(pipeCtx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.disp.Run(a.replyCh)
	}()

	if err := a.engine.Start(pipeCtx); err != nil {
		cancel()
		return fmt.Errorf("app: start session engine: %w", err)
	}

	a.httpErr = a.http.Start(pipeCtx)

	a.logger.Info("app: pipeline running",
		"discovery_addr", loadedCfg.Settings.DiscoveryAddr,
		"protocol_addr", loadedCfg.Settings.ProtocolAddr,
		"http_addr", loadedCfg.Settings.HTTPAddr,
		"webhook_workers", loadedCfg.Settings.WebhookWorkers,
	)
	return nil
}

// Stop performs a graceful shutdown.
//
// Shutdown order:
//  1. Cancel the pipeline context and stop the HTTP server.
//  2. Stop the session engine (closes both UDP sockets, waits for its
//     goroutines, which are the only writers to replyCh).
//  3. Close replyCh so the dispatcher goroutine returns.
//  4. Drain the webhook worker pool.
//  5. Close the capture sink.
func (a *App) Stop() {
	a.logger.Info("app: shutting down")

	if a.cancel != nil {
		a.cancel()
	}
	if a.http != nil {
		_ = a.http.Stop(context.Background())
	}
	if a.engine != nil {
		a.engine.Stop()
	}
	if a.replyCh != nil {
		close(a.replyCh)
	}
	a.wg.Wait()
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.capSink != nil {
		if err := a.capSink.Close(); err != nil {
			a.logger.Error("app: capture sink close error", "error", err.Error())
		}
	}

	a.logger.Info("app: shutdown complete")
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
