// Package redisstore persists sessions in Redis, one JSON blob per
// session under "sessions:<id>", refreshed with a sliding TTL on every
// save.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/storefront/internal/session"
)

const keyPrefix = "sessions:"

// Store is the Redis-backed session.Store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

var _ session.Store = (*Store)(nil)

// New wraps an existing Redis client. ttl bounds how long an idle
// session survives.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Open connects to Redis at addr and returns a Store over the
// connection.
func Open(addr string, ttl time.Duration) *Store {
	return New(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

func (s *Store) Load(ctx context.Context, id string) (*session.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: load session %q: %w", id, err)
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("redisstore: decode session %q: %w", id, err)
	}
	return session.Restore(id, values), nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	raw, err := json.Marshal(sess.Values())
	if err != nil {
		return fmt.Errorf("redisstore: encode session %q: %w", sess.ID(), err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: save session %q: %w", sess.ID(), err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
