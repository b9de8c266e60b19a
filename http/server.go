package http

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var ErrServerClosed = errors.New("http: server closed")

type Server struct {
	Name       string
	Router     Router
	Pool       *WorkerPool
	Compressor Compressor
	Logger     *slog.Logger

	// ReadBufferSize bounds a request: each request is taken from a single read of this size.
	ReadBufferSize int
	ReusePort      bool

	handlerOnce sync.Once
	handler     Handler

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   atomic.Bool
	active   atomic.Int64

	accepted    metric.Int64Counter
	connections metric.Int64UpDownCounter
}

type Stats struct {
	Workers     int `json:"workers"`
	Queued      int `json:"queued"`
	Connections int `json:"connections"`
}

func NewServer(name string, workers int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		Name:           name,
		Router:         NewRouter(),
		Pool:           NewWorkerPool(workers, logger),
		Compressor:     NewGzipCompressor(6),
		Logger:         logger,
		ReadBufferSize: DefaultReadBufferSize,
		conns:          make(map[net.Conn]struct{}),
	}
	s.registerMetrics(otel.Meter(name))

	return s
}

func (s *Server) registerMetrics(meter metric.Meter) {
	var err error

	s.accepted, err = meter.Int64Counter("httpd.server.connections.accepted",
		metric.WithDescription("The number of accepted TCP connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		otel.Handle(err)
	}

	s.connections, err = meter.Int64UpDownCounter("httpd.server.connections.active",
		metric.WithDescription("The number of connections owned by a worker"),
		metric.WithUnit("{connection}"))
	if err != nil {
		otel.Handle(err)
	}

	_, err = meter.Int64ObservableGauge("httpd.pool.queued",
		metric.WithDescription("Connections waiting for a free worker"),
		metric.WithUnit("{connection}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.Pool.Len()))
			return nil
		}))
	if err != nil {
		otel.Handle(err)
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := listen(ctx, addr, s.ReusePort)
	if err != nil {
		return err
	}

	s.Logger.Info("listening", "server", s.Name, "addr", listener.Addr().String(), "workers", s.Pool.Size())
	return s.Serve(listener)
}

// Serve accepts connections and hands each one to the worker pool. Accepting never waits for a
// free worker.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	if s.closed.Load() {
		listener.Close()
		return ErrServerClosed
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 5 * time.Millisecond
	retry.MaxInterval = time.Second
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			wait := retry.NextBackOff()
			s.Logger.Error("failed to accept connection", "error", err, "retry_in", wait)
			time.Sleep(wait)
			continue
		}
		retry.Reset()

		if s.accepted != nil {
			s.accepted.Add(context.Background(), 1)
		}

		s.trackConn(conn, true)
		if s.closed.Load() {
			s.trackConn(conn, false)
			conn.Close()
			return ErrServerClosed
		}
		if err := s.Pool.Execute(func() { s.ServeConn(conn) }); err != nil {
			s.Logger.Warn("dropping connection", "remote", remoteAddr(conn), "error", err)
			s.trackConn(conn, false)
			conn.Close()
		}
	}
}

// ServeConn runs the read, parse, route, respond loop until the peer goes away, an I/O error
// occurs or the last request asked for "Connection: close".
func (s *Server) ServeConn(conn net.Conn) {
	connID := uuid.NewString()
	logger := s.Logger.With("conn", connID, "remote", remoteAddr(conn))

	s.active.Add(1)
	if s.connections != nil {
		s.connections.Add(context.Background(), 1)
	}

	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("closing connection failed", "error", err)
		}
		s.trackConn(conn, false)
		s.active.Add(-1)
		if s.connections != nil {
			s.connections.Add(context.Background(), -1)
		}
	}()

	handler := s.routeHandler()

	size := s.ReadBufferSize
	if size <= 0 {
		size = DefaultReadBufferSize
	}
	buf := make([]byte, size)
	bw := bufio.NewWriterSize(conn, DefaultWriteBufferSize)

	reqCtx := RequestCtx{ConnID: connID}

	for {
		n, err := conn.Read(buf)
		if n == 0 {
			switch {
			case err == nil, errors.Is(err, io.EOF):
			case errors.Is(err, net.ErrClosed):
				logger.Debug("connection closed during read")
			default:
				logger.Error("reading request failed", "error", err)
			}
			return
		}

		reqCtx.Reset()

		if err := reqCtx.Request.Parse(buf[:n]); err != nil {
			logger.Warn("rejecting unparseable request", "error", err)

			reqCtx.Response.WithStatus(StatusBadRequest).WithText("")
			reqCtx.Response.Close = true
			if err := reqCtx.Response.WriteTo(bw); err != nil {
				logger.Error("writing response failed", "error", err)
			}
			return
		}

		handler(&reqCtx)

		reqCtx.Response.Close = reqCtx.Request.WantsClose()
		reqCtx.Response.Negotiate(&reqCtx.Request, s.Compressor, logger)

		if err := reqCtx.Response.WriteTo(bw); err != nil {
			logger.Error("writing response failed", "error", err)
			return
		}

		logger.Debug("served request",
			"method", reqCtx.Request.Method,
			"path", reqCtx.Request.Path,
			"status", reqCtx.Response.Status,
			"bytes", len(reqCtx.Response.Body))

		if reqCtx.Response.Close {
			return
		}
	}
}

// Shutdown stops the accept loop, closes every open or queued connection and waits for the
// workers to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closed.Store(true)

	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.Pool.Close()

	done := make(chan struct{})
	go func() {
		s.Pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) Stats() Stats {
	return Stats{
		Workers:     s.Pool.Size(),
		Queued:      s.Pool.Len(),
		Connections: int(s.active.Load()),
	}
}

func (s *Server) routeHandler() Handler {
	s.handlerOnce.Do(func() {
		s.handler = s.Router.Handler()
	})
	return s.handler
}

func (s *Server) trackConn(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
