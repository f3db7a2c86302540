package echo

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/safeword-go/internal/telemetry/logger"
)

// Server is the Unix socket echo server.
//
// Serve is the workload handed to the safeword runner: it runs until its
// context is cancelled or the listener fails. The server never deletes its
// socket path; whether the path should survive is decided by whoever
// classified the shutdown.
type Server struct {
	cfg     Config
	log     logger.Logger
	metrics *Metrics

	listener net.Listener
	running  atomic.Bool
	limiter  *rate.Limiter
}

// New creates a new echo server.
func New(cfg Config, log logger.Logger, metrics *Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
	}
	if cfg.Socket.AcceptRate > 0 {
		// Burst of one: connections are admitted strictly at the
		// configured rate.
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Socket.AcceptRate), 1)
	}
	return s
}

// Serve binds the socket and accepts connections until ctx is done or the
// listener fails. A handler error never stops the server; it is logged and
// the connection dropped. Returns nil after a context-driven stop once all
// in-flight connections drained.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("unix", s.cfg.Socket.Path)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Socket.Path, err)
	}
	s.listener = ln
	s.running.Store(true)

	s.log.Info("echo server listening", "socket", s.cfg.Socket.Path)

	// Close the listener when the context ends so Accept unblocks.
	go func() {
		<-ctx.Done()
		s.running.Store(false)
		_ = ln.Close()
	}()

	ctx = logger.WithLogger(ctx, s.log)

	g := new(errgroup.Group)
	if s.cfg.Socket.MaxConns > 0 {
		g.SetLimit(s.cfg.Socket.MaxConns)
	}

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				break
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			// Shutting down: the close above races the accept.
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				break
			}
			_ = g.Wait()
			return fmt.Errorf("accept: %w", err)
		}

		g.Go(func() error {
			s.handleConn(ctx, conn)
			return nil
		})
	}

	_ = g.Wait()
	s.log.Info("echo server stopped", "socket", s.cfg.Socket.Path)
	return nil
}

// Addr returns the bound listener address, or nil before Serve bound it.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	ctx = logger.WithConnID(ctx, newConnID())
	log := logger.L(ctx)

	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ConnectionsActive.Inc()
	defer s.metrics.ConnectionsActive.Dec()

	log.Debug("connection accepted")

	n, err := io.Copy(conn, conn)
	s.metrics.BytesEchoed.Add(float64(n))

	if err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warn("echo interrupted", "bytes", n, "error", err)
		return
	}
	log.Debug("connection closed", "bytes", n)
}

// newConnID returns a ULID used to correlate log lines of one connection.
func newConnID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "unknown"
	}
	return id.String()
}
