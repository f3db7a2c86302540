package echo

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/safeword-go/internal/telemetry/logger"
)

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, string) {
	t.Helper()

	cfg := Default()
	cfg.Socket.Path = filepath.Join(t.TempDir(), "echo.sock")
	if mutate != nil {
		mutate(cfg)
	}

	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}

	return New(*cfg, log, NewMetrics(prometheus.NewRegistry())), cfg.Socket.Path
}

func startServer(t *testing.T, s *Server) (context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() {
		errC <- s.Serve(ctx)
	}()

	// Wait for the socket to appear.
	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == nil {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("server did not bind in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return cancel, errC
}

func TestServe_EchoesBytes(t *testing.T) {
	s, path := newTestServer(t, nil)
	cancel, errC := startServer(t, s)
	defer cancel()

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	msg := []byte("ping pong")
	if _, err := conn.Write(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := make([]byte, len(msg))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("echoed %q, want %q", got, msg)
	}

	conn.Close()
	cancel()

	select {
	case err := <-errC:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	s, _ := newTestServer(t, nil)
	cancel, errC := startServer(t, s)

	cancel()

	select {
	case err := <-errC:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServe_BindFailure(t *testing.T) {
	s, path := newTestServer(t, nil)
	cancel, errC := startServer(t, s)
	defer cancel()

	// Second bind on the same path must fail.
	other, _ := newTestServer(t, func(cfg *Config) {
		cfg.Socket.Path = path
	})
	if err := other.Serve(context.Background()); err == nil {
		t.Error("Serve() should fail when the socket path is taken")
	}

	cancel()
	<-errC
}

func TestServe_CountsConnections(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := Default()
	cfg.Socket.Path = filepath.Join(t.TempDir(), "echo.sock")
	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	s := New(*cfg, log, NewMetrics(reg))

	cancel, errC := startServer(t, s)
	defer cancel()

	for i := 0; i < 3; i++ {
		conn, err := net.Dial("unix", cfg.Socket.Path)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conn.Write([]byte("x"))
		conn.Close()
	}

	// Connection accounting is asynchronous to Close; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		families, err := reg.Gather()
		if err != nil {
			t.Fatalf("gather: %v", err)
		}
		total := 0.0
		for _, mf := range families {
			if mf.GetName() == "safeword_echo_connections_total" {
				total = mf.GetMetric()[0].GetCounter().GetValue()
			}
		}
		if total == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("connections_total = %v, want 3", total)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-errC
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", nil, false},
		{"empty path", func(c *Config) { c.Socket.Path = "" }, true},
		{"negative max conns", func(c *Config) { c.Socket.MaxConns = -1 }, true},
		{"negative accept rate", func(c *Config) { c.Socket.AcceptRate = -0.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewConnID(t *testing.T) {
	a, b := newConnID(), newConnID()
	if a == "unknown" || b == "unknown" {
		t.Fatal("newConnID failed to generate")
	}
	if a == b {
		t.Errorf("connection IDs should differ: %s", a)
	}
}
