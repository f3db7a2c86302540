// Package main provides the entry point for safeword-echo.
//
// safeword-echo is a Unix domain socket echo server wrapped in the
// safeword runner: it serves until SIGINT or SIGTERM arrives, and deletes
// its socket path only when the shutdown was signal-driven. Any other way
// of stopping leaves the socket in place and exits non-zero with the real
// cause.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/safeword-go/internal/echo"
	"github.com/yndnr/safeword-go/internal/infra/buildinfo"
	"github.com/yndnr/safeword-go/internal/infra/confloader"
	"github.com/yndnr/safeword-go/internal/telemetry/logger"
	"github.com/yndnr/safeword-go/pkg/safeword"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp creates the CLI application.
func newApp() *cli.App {
	return &cli.App{
		Name:    "safeword-echo",
		Usage:   "echo server that cleans up its socket only on signal-driven shutdown",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"SAFEWORD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "socket",
				Aliases: []string{"s"},
				Usage:   "Unix socket path to bind",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json, text",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Listen address for Prometheus /metrics (empty disables)",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting safeword-echo",
		"version", buildinfo.Get().Version,
		"socket", cfg.Socket.Path)

	registry := prometheus.NewRegistry()
	if cfg.Metrics.Addr != "" {
		serveMetrics(cfg.Metrics.Addr, registry, log)
	}

	if path := c.String("config"); path != "" {
		if w := watchConfig(path, log); w != nil {
			defer w.Stop()
		}
	}

	srv := echo.New(*cfg, log, echo.NewMetrics(registry))

	out := safeword.Default[struct{}]().Run(
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, srv.Serve(ctx)
		})

	if out.Stopped() {
		if err := os.Remove(cfg.Socket.Path); err != nil {
			log.Warn("could not remove socket", "path", cfg.Socket.Path, "error", err)
		}
		log.Info("stopped cleanly", "signal", fmt.Sprint(out.Signal))
		return nil
	}

	// Not a clean shutdown: keep the socket for inspection and surface
	// the classified cause.
	log.Error("stopped unexpectedly",
		"reason", out.Reason.String(),
		"error", out.Err)
	return out.Failure()
}

// loadConfig builds the configuration: defaults, then file, then
// environment, then flag overrides.
func loadConfig(c *cli.Context) (*echo.Config, error) {
	cfg := echo.Default()

	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	overrides := map[string]any{}
	if c.IsSet("socket") {
		overrides["socket.path"] = c.String("socket")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		overrides["log.format"] = c.String("log-format")
	}
	if c.IsSet("metrics-addr") {
		overrides["metrics.addr"] = c.String("metrics-addr")
	}
	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	if err := echo.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// package default.
func initLogger(cfg *echo.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// serveMetrics exposes the Prometheus registry over HTTP. The endpoint
// lives and dies with the process; it takes no part in the shutdown race.
func serveMetrics(addr string, registry *prometheus.Registry, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics endpoint failed", "error", err)
		}
	}()
}

// watchConfig reloads the log level when the configuration file changes.
// Returns the started watcher for the caller to stop, or nil when watching
// is unavailable.
func watchConfig(path string, log logger.Logger) *confloader.Watcher {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
		return nil
	}

	w.OnChange(reloadLogLevel(path, log))

	if err := w.Watch(path); err != nil {
		log.Warn("config watcher unavailable", "path", path, "error", err)
		_ = w.Stop()
		return nil
	}
	w.StartAsync()
	return w
}

// reloadLogLevel returns the change callback for watchConfig: it re-reads
// the configuration file and applies a changed log level.
func reloadLogLevel(path string, log logger.Logger) func(string) {
	return func(changed string) {
		if filepath.Base(changed) != filepath.Base(path) {
			return
		}
		var cfg echo.Config
		l := confloader.NewLoader(confloader.WithConfigFile(path))
		if err := l.Load(&cfg); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != "" && cfg.Log.Level != logger.Level() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	}
}
