package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/andressep95/estate-admin/internal/repository"
)

// Store keeps session keys in Redis under storage:<namespace>:<key>, so
// several consoles on different machines can share one login.
type Store struct {
	redis     *redis.Client
	namespace string
}

// NewStore creates a Redis-backed key-value store
func NewStore(redisClient *redis.Client, namespace string) *Store {
	return &Store{
		redis:     redisClient,
		namespace: namespace,
	}
}

var _ repository.KeyValueStore = (*Store)(nil)

func (s *Store) key(key string) string {
	return fmt.Sprintf("storage:%s:%s", s.namespace, key)
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key without expiry; the session manager decides
// when a token is stale
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Clear removes every key of the namespace
func (s *Store) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("storage:%s:*", escapeGlob(s.namespace))

	var keys []string
	iter := s.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan namespace: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear namespace: %w", err)
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob makes a namespace match only itself in a SCAN pattern
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
