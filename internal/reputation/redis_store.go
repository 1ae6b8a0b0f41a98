package reputation

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Config configures the Redis-backed reputation store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

// Store reads the known-bad IP set maintained by external threat feeds
// from a Redis set. The set is loaded once at startup and merged with
// the statically configured list; predicates only ever see the merged,
// immutable membership set.
type Store struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewStore creates a reputation store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		cfg.Key = "bunasiem:suspicious_ips"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Store{client: client, key: cfg.Key, timeout: cfg.Timeout}, nil
}

// Load returns every address in the reputation set.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load reputation set %s: %w", s.key, err)
	}
	return members, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
