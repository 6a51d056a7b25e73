package redisserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/memkv-go/internal/core/domain"
	"github.com/yndnr/memkv-go/internal/core/service"
	"github.com/yndnr/memkv-go/internal/protocol/resp"
	"github.com/yndnr/memkv-go/internal/telemetry/logger"
	"github.com/yndnr/memkv-go/internal/telemetry/metric"
)

// Config holds the Redis server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// MaxConnections caps concurrent client connections (0 = unlimited).
	MaxConnections int
	// IdleTimeout closes connections that send nothing for this long (0 = never).
	IdleTimeout time.Duration
	// WriteTimeout bounds flushing the replies of one batch (default: 30s).
	WriteTimeout time.Duration
	// RateLimit is the maximum number of commands per second per client IP.
	// Set to 0 to disable rate limiting.
	RateLimit int
	// ReadBufferSize is the size of the per-connection socket read buffer.
	ReadBufferSize int
	// TLS, when set, wraps the listener in TLS.
	TLS *tls.Config
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:6379",
		WriteTimeout:   30 * time.Second,
		ReadBufferSize: 4096,
	}
}

// Executor runs decoded commands.
type Executor interface {
	Execute(ctx context.Context, cmd domain.Command) domain.Reply
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics sets the metrics registry for connection and error counters.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = r
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg      *Config
	handler  *CommandHandler
	logger   logger.Logger
	metrics  *metric.Registry
	limiters *service.RateLimiterRegistry

	mu    sync.Mutex
	ln    net.Listener
	conns map[*Conn]struct{}

	running atomic.Bool
	wg      sync.WaitGroup
}

// Conn represents a single Redis client connection.
type Conn struct {
	id      string
	netConn net.Conn
	bw      *bufio.Writer

	closed atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		id:      ulid.Make().String(),
		netConn: c,
		bw:      bufio.NewWriter(c),
	}
}

// ID returns the connection ID.
func (c *Conn) ID() string {
	return c.id
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the client address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// New creates a new Redis protocol server.
func New(cfg *Config, exec Executor, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger.Default(),
		conns:  make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "redis")

	if cfg.RateLimit > 0 {
		s.limiters = service.NewRateLimiterRegistry(cfg.RateLimit)
	}
	s.handler = NewCommandHandler(exec, s.logger, s.metrics)

	return s
}

// Start binds the listen address and starts accepting connections in
// the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	if s.cfg.TLS != nil {
		ln = tls.NewListener(ln, s.cfg.TLS)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	rateLimit := 0
	if s.limiters != nil {
		rateLimit = s.limiters.Limit()
	}
	s.logger.Info("redis server listening",
		"address", ln.Addr().String(),
		"tls", s.cfg.TLS != nil,
		"rate_limit", rateLimit,
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("redis accept loop stopped", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, closes live connections, and waits for
// their handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error

	s.mu.Lock()
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Warn("accept timeout, retrying", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		c := newConn(nc)
		if !s.track(c) {
			s.reject(c)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(ctx, c)
		}()
	}
}

// track registers c, refusing it when the server is at capacity or
// shutting down.
func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}
	if s.cfg.MaxConnections > 0 && len(s.conns) >= s.cfg.MaxConnections {
		return false
	}
	s.conns[c] = struct{}{}
	if s.metrics != nil {
		s.metrics.ConnOpened()
	}
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ConnClosed()
	}
}

func (s *Server) reject(c *Conn) {
	defer c.Close()

	if s.metrics != nil {
		s.metrics.IncConnRejected()
	}
	if !s.running.Load() {
		return
	}

	s.logger.Warn("connection rejected", "remote", c.RemoteAddr().String(), "max_connections", s.cfg.MaxConnections)
	_ = c.netConn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = resp.WriteReply(c.bw, domain.ErrorReply(domain.ErrMaxClients))
	_ = c.bw.Flush()
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	remote := c.RemoteAddr().String()
	ctx = logger.WithConnID(ctx, c.id)
	log := s.logger.With("conn_id", c.id, "remote", remote)
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	var limiter *rate.Limiter
	if s.limiters != nil {
		ip := clientIP(c.RemoteAddr())
		limiter = s.limiters.Acquire(ip)
		defer s.limiters.Release(ip)
	}

	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	bufSize := s.cfg.ReadBufferSize
	if bufSize <= 0 {
		bufSize = 4096
	}

	p := resp.NewParser()
	buf := make([]byte, bufSize)

	for {
		if s.cfg.IdleTimeout > 0 {
			if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		n, err := c.netConn.Read(buf)
		if n > 0 {
			p.Feed(buf[:n])
		}

		eof := false
		if err != nil {
			if !errors.Is(err, io.EOF) {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					log.Debug("connection idle timeout", "in_frame", p.InFrame(), "buffered", p.Buffered())
				} else if !c.closed.Load() {
					log.Debug("connection read error", "error", err)
				}
				return
			}
			eof = true
		} else if n == 0 {
			eof = true
		}
		if eof {
			// The peer closed its write side: a trailing unterminated
			// line is still a token.
			p.Finish()
		}

		if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		keepOpen := s.handler.Handle(ctx, c, p, limiter, log)
		if err := c.bw.Flush(); err != nil {
			log.Debug("connection write error", "error", err)
			return
		}
		if eof && keepOpen && (p.InFrame() || p.Buffered() > 0) {
			log.Debug("peer closed mid-frame", "buffered", p.Buffered())
		}
		if !keepOpen || eof {
			return
		}
	}
}

// clientIP returns the host part of addr.
func clientIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
