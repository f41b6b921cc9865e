package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// server couples an http.Server with its lifecycle hooks.
type server struct {
	http *http.Server
	cfg  *runConfig
	log  *slog.Logger
}

func newServer(addr string, h http.Handler, cfg *runConfig) *server {
	if addr == "" {
		addr = ":8080"
	}
	return &server{
		http: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
		},
		cfg: cfg,
		log: cfg.logger,
	}
}

// run blocks until the base context is cancelled, SIGINT or SIGTERM
// arrives, or the listener fails. Then it drains the server and runs
// the shutdown hooks.
func (s *server) run() error {
	ctx, stop := signal.NotifyContext(s.cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, h := range s.cfg.onStart {
		if err := h(ctx); err != nil {
			// Hooks that already started, such as the routes watcher, are
			// released through the stop hooks.
			return errors.Join(fmt.Errorf("startup hook %d: %w", i, err), s.shutdown())
		}
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Join(err, s.shutdown())
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("server starting", slog.String("address", ln.Addr().String()))
		serveErr <- s.http.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(err, s.shutdown())
		}
		return s.shutdown()
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown drains in-flight requests and runs every shutdown hook within
// one timeout.
func (s *server) shutdown() error {
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, h := range s.cfg.onStop {
		if err := h(ctx); err != nil {
			s.log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.log.Info("shutdown completed")
	return nil
}
