// Command correlation-demo runs a small two hop service. /hello calls /echo
// through a correlating client, so both hops report the same correlation ID.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lstoll/correlation"
	"github.com/lstoll/correlation/slogctx"
	"github.com/lstoll/correlation/zerologctx"
)

var (
	addr       = flag.String("addr", "localhost:8080", "Address to listen on")
	configPath = flag.String("config", "", "Path to a YAML correlation config")
	logFormat  = flag.String("log-format", "text", "Log output format: text, json or zerolog")
	downstream = flag.String("downstream", "", "Base URL /hello calls /echo on. Defaults to this server")
)

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		slog.Error("correlation-demo failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg *correlation.Config
	if *configPath != "" {
		var err error
		cfg, err = correlation.LoadConfigFile(*configPath)
		if err != nil {
			return err
		}
	}

	opts, err := loggingOpts(*logFormat, os.Stderr)
	if err != nil {
		return err
	}
	opts.cfg = cfg
	slog.SetDefault(opts.logger)

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	a.Downstream = *downstream
	if a.Downstream == "" {
		a.Downstream = "http://" + *addr
	}

	svr := &http.Server{
		Addr:              *addr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		opts.logger.Info("listening", slog.String("addr", *addr), slog.Any("clients", a.clients.Names()))
		errc <- svr.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	opts.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svr.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loggingOpts builds the loggers and log scoper for format. Slog output is
// wrapped so records carry the correlation scope.
func loggingOpts(format string, w io.Writer) (appOpts, error) {
	var o appOpts
	switch format {
	case "text":
		o.logger = slog.New(slogctx.NewContextHandler(slog.NewTextHandler(w, nil)))
	case "json":
		o.logger = slog.New(slogctx.NewContextHandler(slog.NewJSONHandler(w, nil)))
	case "zerolog":
		zl := zerolog.New(w).With().Timestamp().Logger()
		o.zlogger = &zl
		o.scoper = &zerologctx.Scoper{Logger: &zl}
		o.logger = slog.New(slogctx.NewContextHandler(slog.NewJSONHandler(w, nil)))
	default:
		return o, fmt.Errorf("unknown log format %q", format)
	}
	return o, nil
}
