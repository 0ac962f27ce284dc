package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/videocollect/internal/api"
	"github.com/mcoot/videocollect/internal/config"
	"github.com/mcoot/videocollect/internal/factory"
	"github.com/mcoot/videocollect/internal/web"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load(envFile())
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, cfg.Factory(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	if cfg.HasBootstrapUser() {
		user, err := app.EnsureUser(ctx, cfg.BootstrapName, cfg.BootstrapUsername, cfg.BootstrapPassword)
		if err != nil {
			logger.Error("failed to create bootstrap user", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("bootstrap user ready", slog.String("username", user.Username))
	}

	go sweepSessions(ctx, app, logger)

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.RouterConfig{Logger: logger, App: app}))
	mux.Handle("/", web.NewRouter(web.RouterConfig{Logger: logger, App: app}))

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	listener, err := net.Listen("tcp", server.Addr())
	if err != nil {
		logger.Error("failed to listen", slog.String("addr", server.Addr()), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := server.Run(ctx, listener); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// sweepSessions drops expired sessions from stores that do not expire
// keys on their own
func sweepSessions(ctx context.Context, app *factory.App, logger *slog.Logger) {
	sweeper, ok := app.Sessions.Store().(interface{ CleanExpired() int })
	if !ok {
		return
	}

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sweeper.CleanExpired(); n > 0 {
				logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
