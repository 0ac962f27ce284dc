package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults for server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            8080,
		ReadTimeout:     5 * time.Minute, // Uploads can be large
		WriteTimeout:    5 * time.Minute, // Video playback streams whole files
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server wraps the HTTP server with graceful shutdown support
type Server struct {
	server *http.Server
	logger *slog.Logger
	config ServerConfig
}

// NewServer creates a new HTTP server for handler
func NewServer(handler http.Handler, config ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort(config.Host, fmt.Sprint(config.Port)),
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      config.WriteTimeout,
		},
		logger: logger,
		config: config,
	}
}

// Run serves on l until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("addr", l.Addr().String()))
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}
