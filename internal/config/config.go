package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/videocollect/internal/factory"
	"github.com/mcoot/videocollect/internal/session"
	redissession "github.com/mcoot/videocollect/internal/session/redis"
	"github.com/mcoot/videocollect/internal/storage/postgres"
)

// Config is the process configuration read from the environment
type Config struct {
	Host string
	Port int

	StorageType    string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	AutoMigrate    bool

	SessionStore  string
	RedisURL      string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	VideoDir    string
	MaxUploadMB int64

	LogLevel  slog.Level
	LogFormat string

	BootstrapName     string
	BootstrapUsername string
	BootstrapPassword string
}

// Load reads envFile (if it exists) into the process environment and
// parses the configuration. Variables already set take precedence.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup parses configuration using lookup to read variables
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}
	cfg := &Config{
		Host:              p.str("HOST", "0.0.0.0"),
		Port:              p.int("PORT", 8080),
		StorageType:       p.str("STORAGE_TYPE", factory.StorageTypeMemory),
		DatabaseURL:       p.str("DATABASE_URL", postgres.DefaultConfig().DSN),
		DBMaxOpenConns:    p.int("DB_MAX_OPEN_CONNS", postgres.DefaultConfig().MaxOpenConns),
		DBMaxIdleConns:    p.int("DB_MAX_IDLE_CONNS", postgres.DefaultConfig().MaxIdleConns),
		AutoMigrate:       p.bool("AUTO_MIGRATE", true),
		SessionStore:      p.str("SESSION_STORE", factory.SessionStoreMemory),
		RedisURL:          p.str("REDIS_URL", redissession.DefaultConfig().URL),
		SessionSecret:     p.str("SESSION_SECRET", ""),
		SessionTTL:        p.duration("SESSION_TTL", session.DefaultConfig().TTL),
		CookieSecure:      p.bool("COOKIE_SECURE", true),
		VideoDir:          p.str("VIDEO_DIR", "videos"),
		MaxUploadMB:       int64(p.int("MAX_UPLOAD_MB", 512)),
		LogLevel:          p.level("LOG_LEVEL", slog.LevelInfo),
		LogFormat:         strings.ToLower(p.str("LOG_FORMAT", "json")),
		BootstrapName:     p.str("BOOTSTRAP_NAME", ""),
		BootstrapUsername: p.str("BOOTSTRAP_USERNAME", ""),
		BootstrapPassword: p.str("BOOTSTRAP_PASSWORD", ""),
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasBootstrapUser reports whether a bootstrap account is configured
func (c *Config) HasBootstrapUser() bool {
	return c.BootstrapUsername != "" && c.BootstrapPassword != ""
}

// Factory converts the configuration into the wiring contract
func (c *Config) Factory(logger *slog.Logger) factory.Config {
	pgCfg := postgres.DefaultConfig()
	pgCfg.DSN = c.DatabaseURL
	pgCfg.MaxOpenConns = c.DBMaxOpenConns
	pgCfg.MaxIdleConns = c.DBMaxIdleConns

	redisCfg := redissession.DefaultConfig()
	redisCfg.URL = c.RedisURL

	return factory.Config{
		Logger:         logger,
		StorageType:    c.StorageType,
		PostgresConfig: &pgCfg,
		AutoMigrate:    c.AutoMigrate,
		SessionStore:   c.SessionStore,
		RedisConfig:    &redisCfg,
		SessionConfig: session.Config{
			Secret: []byte(c.SessionSecret),
			TTL:    c.SessionTTL,
			Secure: c.CookieSecure,
		},
		VideoDir:       c.VideoDir,
		MaxUploadBytes: c.MaxUploadMB << 20,
	}
}

func (c *Config) validate() error {
	switch c.StorageType {
	case factory.StorageTypeMemory, factory.StorageTypePostgres:
	default:
		return fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q",
			factory.StorageTypeMemory, factory.StorageTypePostgres, c.StorageType)
	}
	switch c.SessionStore {
	case factory.SessionStoreMemory, factory.SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q",
			factory.SessionStoreMemory, factory.SessionStoreRedis, c.SessionStore)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a log level", key, v))
		return def
	}
	return lvl
}
