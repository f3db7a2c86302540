// Package echo provides the Unix socket echo server.
package echo

import "errors"

// Default configuration values.
const (
	DefaultSocketPath = "echo.sock"
	DefaultMaxConns   = 128

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Config is the root configuration for safeword-echo.
type Config struct {
	Socket  SocketSection  `koanf:"socket"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// SocketSection configures the echo listener.
type SocketSection struct {
	// Path is the Unix socket path to bind.
	Path string `koanf:"path"`
	// MaxConns bounds concurrently served connections. Zero means no bound.
	MaxConns int `koanf:"max_conns"`
	// AcceptRate throttles accepted connections per second. Zero disables
	// throttling.
	AcceptRate float64 `koanf:"accept_rate"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the optional Prometheus endpoint.
type MetricsSection struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `koanf:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Socket: SocketSection{
			Path:     DefaultSocketPath,
			MaxConns: DefaultMaxConns,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if cfg.Socket.Path == "" {
		return errors.New("socket.path is required")
	}
	if cfg.Socket.MaxConns < 0 {
		return errors.New("socket.max_conns must not be negative")
	}
	if cfg.Socket.AcceptRate < 0 {
		return errors.New("socket.accept_rate must not be negative")
	}
	return nil
}
