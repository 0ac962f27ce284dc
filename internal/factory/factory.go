package factory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/videocollect/internal/dependencies/clock"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/auth"
	"github.com/mcoot/videocollect/internal/services/capture"
	"github.com/mcoot/videocollect/internal/services/participant"
	"github.com/mcoot/videocollect/internal/services/video"
	"github.com/mcoot/videocollect/internal/session"
	sessionmemory "github.com/mcoot/videocollect/internal/session/memory"
	redissession "github.com/mcoot/videocollect/internal/session/redis"
	"github.com/mcoot/videocollect/internal/storage"
	"github.com/mcoot/videocollect/internal/storage/memory"
	"github.com/mcoot/videocollect/internal/storage/postgres"
	"github.com/mcoot/videocollect/internal/videostore"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
)

// Session store constants
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// DefaultMaxUploadBytes caps a single upload request body
const DefaultMaxUploadBytes int64 = 512 << 20

// App contains all wired application components
type App struct {
	// Persistence
	Storage  storage.Storage
	Sessions *session.Manager
	Videos   *videostore.Store

	// External dependencies
	Clock  clock.Clock
	Logger *slog.Logger

	// Services
	AuthService        *auth.Service
	ParticipantService *participant.Service
	CaptureService     *capture.Service
	VideoService       *video.Service

	// MaxUploadBytes bounds the upload request body
	MaxUploadBytes int64
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the relational backend ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// PostgresConfig is required if StorageType is "postgres"
	PostgresConfig *postgres.Config
	// AutoMigrate applies the schema on startup (postgres only)
	AutoMigrate bool
	// SessionStore selects the session backend ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionStore string
	// RedisConfig is required if SessionStore is "redis"
	RedisConfig *redissession.Config
	// SessionConfig configures session cookies; an empty secret is
	// replaced with a random one, which invalidates sessions on restart
	SessionConfig session.Config
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// VideoDir is where uploaded files are stored
	VideoDir string
	// MaxUploadBytes bounds uploads; zero means DefaultMaxUploadBytes
	MaxUploadBytes int64
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if cfg.VideoDir == "" {
		cfg.VideoDir = "videos"
	}
	videos, err := videostore.New(cfg.VideoDir)
	if err != nil {
		_ = store.Close()
		_ = sessionStore.Close()
		return nil, err
	}

	sessionCfg := cfg.SessionConfig
	if len(sessionCfg.Secret) == 0 {
		logger.Warn("SESSION_SECRET not set; using a random secret, sessions will not survive restart")
		sessionCfg.Secret = make([]byte, 32)
		if _, err := rand.Read(sessionCfg.Secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}

	deps := dependencies{
		store:        store,
		sessionStore: sessionStore,
		videos:       videos,
		clock:        clock.New(),
		sessionCfg:   sessionCfg,
		authCfg:      cfg.AuthConfig,
		maxUpload:    cfg.MaxUploadBytes,
		logger:       logger,
	}
	return newWithDependencies(deps), nil
}

func newStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pg, err := postgres.New(ctx, *cfg.PostgresConfig, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		return pg, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'postgres'")
	}
}

func newSessionStore(cfg Config) (session.Store, error) {
	storeType := cfg.SessionStore
	if storeType == "" {
		storeType = SessionStoreMemory
	}

	switch storeType {
	case SessionStoreMemory:
		return sessionmemory.New(clock.New()), nil
	case SessionStoreRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionStore is redis")
		}
		return redissession.New(*cfg.RedisConfig)
	default:
		return nil, errors.New("invalid SessionStore: must be 'memory' or 'redis'")
	}
}

type dependencies struct {
	store        storage.Storage
	sessionStore session.Store
	videos       *videostore.Store
	clock        clock.Clock
	sessionCfg   session.Config
	authCfg      auth.Config
	maxUpload    int64
	logger       *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d dependencies) *App {
	if d.maxUpload <= 0 {
		d.maxUpload = DefaultMaxUploadBytes
	}
	return &App{
		Storage:            d.store,
		Sessions:           session.NewManager(d.sessionStore, d.clock, d.sessionCfg, d.logger),
		Videos:             d.videos,
		Clock:              d.clock,
		Logger:             d.logger,
		AuthService:        auth.New(d.store, d.logger, d.authCfg),
		ParticipantService: participant.New(d.store, d.videos, d.clock, d.logger),
		CaptureService:     capture.New(d.store, d.videos, d.clock, d.logger),
		VideoService:       video.New(d.store, d.logger),
		MaxUploadBytes:     d.maxUpload,
	}
}

// EnsureUser creates the account unless the username is already taken
func (a *App) EnsureUser(ctx context.Context, name, username, password string) (*model.User, error) {
	if name == "" {
		name = username
	}
	user, err := a.AuthService.CreateUser(ctx, name, username, password)
	if errors.Is(err, auth.ErrUsernameExists) {
		return a.Storage.GetUserByUsername(ctx, username)
	}
	return user, err
}

// Health pings the relational store and the session store
func (a *App) Health(ctx context.Context) error {
	if err := a.Storage.Ping(ctx); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := a.Sessions.Store().Ping(ctx); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// Close releases backend connections
func (a *App) Close() error {
	return errors.Join(a.Storage.Close(), a.Sessions.Store().Close())
}
