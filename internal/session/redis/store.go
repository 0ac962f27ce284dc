package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/videocollect/internal/session"
)

// Store is a Redis-backed session store; expiry is delegated to key TTLs
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis session store and verifies the connection
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis session store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

// sessionKey returns the Redis key for a session id
func (s *Store) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.cfg.KeyPrefix, id)
}

func (s *Store) Load(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(sess.ID), data, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.sessionKey(id)).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
