package redis

// Config holds Redis connection settings for the session store
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// KeyPrefix namespaces session keys when the instance is shared
	KeyPrefix string
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    "videocollect",
	}
}
