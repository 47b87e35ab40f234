// Command gateway is the main IntelliVue Gateway binary.
//
// It loads YAML configuration from files specified by environment variables
// (or command-line flags), builds the full pipeline — UDP discovery and
// association, poll scheduling, observation dispatch, and the HTTP control
// surface — and runs until interrupted (SIGINT / SIGTERM).
//
// Usage:
//
//	gateway [flags]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vpbank/intellivue-gateway/pkg/gateway/app"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logLevel string
		logFmt   string
		bufSize  int

		cfgSettings      string
		cfgSubscriptions string
	)

	flag.StringVar(&logLevel, "log.level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&logFmt, "log.fmt", "json", "Log format: json, text")
	flag.IntVar(&bufSize, "pipeline.buffer.size", 1000, "Poll-reply channel buffer size")

	flag.StringVar(&cfgSettings, "config.settings", "", "Override GATEWAY_SETTINGS_FILE_PATH")
	flag.StringVar(&cfgSubscriptions, "config.subscriptions", "", "Override GATEWAY_SUBSCRIPTIONS_FILE_PATH")

	flag.Parse()

	logger, err := buildLogger(logLevel, logFmt)
	if err != nil {
		return err
	}

	paths := config.PathsFromEnv()
	applyPathOverrides(&paths, cfgSettings, cfgSubscriptions)

	cfg := app.Config{
		ConfigPaths:     paths,
		ReplyBufferSize: bufSize,
	}

	application := app.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	logger.Info("gateway: running — press Ctrl-C to stop")

	<-ctx.Done()
	logger.Info("gateway: received shutdown signal")

	application.Stop()
	return nil
}

func buildLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json|text)", format)
	}

	return slog.New(handler), nil
}

func applyPathOverrides(p *config.Paths, settings, subscriptions string) {
	if settings != "" {
		p.Settings = settings
	}
	if subscriptions != "" {
		p.Subscriptions = subscriptions
	}
}
