package relay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ifttt-relay/internal/config"
)

const shutdownTimeout = 15 * time.Second

// Server runs the inbound HTTP listener and drains in-flight dispatches on shutdown.
type Server struct {
	http    *http.Server
	service *Service
	logger  *slog.Logger
}

// NewServer builds the HTTP server for handler using the configured address and timeouts.
func NewServer(cfg *config.Config, handler http.Handler, service *Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	read, write, idle := cfg.ServerTimeouts()
	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: read,
			ReadTimeout:       read,
			WriteTimeout:      write,
			IdleTimeout:       idle,
			MaxHeaderBytes:    1 << 20,
		},
		service: service,
		logger:  logger,
	}
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down and waits for dispatched events to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("relay listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown", "error", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warn("http serve", "error", err)
	}
	if s.service != nil {
		if err := s.service.Wait(shutdownCtx); err != nil {
			s.logger.Warn("pending notifications abandoned", "error", err)
		}
	}
	return nil
}
