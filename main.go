package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"time"

	"github.com/freekieb7/gravel-httpd/filesystem"
	"github.com/freekieb7/gravel-httpd/handlers"
	"github.com/freekieb7/gravel-httpd/http"
	"github.com/freekieb7/gravel-httpd/ops"
	"github.com/freekieb7/gravel-httpd/telemetry"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const name = "github.com/freekieb7/gravel-httpd"

type config struct {
	addr       string
	opsAddr    string
	directory  string
	workers    int
	readBuffer int
	reusePort  bool
	debug      bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.addr, "addr", "127.0.0.1:4221", "address to listen on")
	flag.StringVar(&cfg.opsAddr, "ops-addr", "", "address for the health and stats endpoint, disabled when empty")
	flag.StringVar(&cfg.directory, "directory", ".", "directory the /files route reads from and writes to")
	flag.IntVar(&cfg.workers, "workers", http.DefaultWorkerPoolSize, "number of connection workers")
	flag.IntVar(&cfg.readBuffer, "read-buffer", http.DefaultReadBufferSize, "bytes read per request")
	flag.BoolVar(&cfg.reusePort, "reuse-port", false, "set SO_REUSEPORT on the listener")
	flag.BoolVar(&cfg.debug, "debug", false, "log every served request")
	flag.Parse()

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config) (err error) {
	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if telemetry.Enabled() {
		shutdown, setupErr := telemetry.Setup(ctx, "gravel-httpd")
		if setupErr != nil {
			return setupErr
		}
		defer func() {
			err = errors.Join(err, shutdown(context.Background()))
		}()

		logger = otelslog.NewLogger(name)
	}

	server := http.NewServer("gravel-httpd", cfg.workers, logger)
	server.ReadBufferSize = cfg.readBuffer
	server.ReusePort = cfg.reusePort
	server.Router.Use(
		http.RecoverMiddleware(logger),
		http.TraceMiddleware(otel.Tracer(name), otel.Meter(name)),
	)
	handlers.Register(&server.Router, filesystem.NewStore(cfg.directory), logger)

	serverErrorChannel := make(chan error, 2)
	go func() {
		serverErrorChannel <- server.ListenAndServe(ctx, cfg.addr)
	}()

	var opsServer *nethttp.Server
	if cfg.opsAddr != "" {
		opsServer = &nethttp.Server{
			Addr:              cfg.opsAddr,
			Handler:           ops.NewHandler(server, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("ops endpoint listening", "addr", cfg.opsAddr)
			if err := opsServer.ListenAndServe(); !errors.Is(err, nethttp.ErrServerClosed) {
				serverErrorChannel <- err
			}
		}()
	}

	// Wait for interruption.
	select {
	case err := <-serverErrorChannel:
		return err
	case <-ctx.Done():
		// Stop receiving signal notifications as soon as possible.
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if opsServer != nil {
		err = errors.Join(err, opsServer.Shutdown(shutdownCtx))
	}
	return errors.Join(err, server.Shutdown(shutdownCtx))
}
