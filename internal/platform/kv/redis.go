// Package kv stores small JSON documents in Redis.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("kv: key not found")

// ErrContended is returned when UpdateJSON keeps losing to other writers.
var ErrContended = errors.New("kv: key kept changing during update")

const maxUpdateAttempts = 20

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/kv: ping: %w", err)
	}

	return client, nil
}

// Store namespaces JSON values under a key prefix.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore wraps client. Keys are stored as prefix + ":" + key.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// GetJSON decodes the value stored under key into dest.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("platform/kv: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("platform/kv: decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value under key. A zero ttl keeps the key forever.
func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("platform/kv: encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("platform/kv: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("platform/kv: delete %s: %w", key, err)
	}
	return nil
}

// UpdateJSON applies fn to the value stored under key and writes the result
// back with ttl, unless another writer changed key in between, in which case
// the read-modify-write is retried. fn may run several times and must not
// have side effects. Missing keys yield ErrMiss; an error from fn aborts.
func UpdateJSON[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fn func(*T) error) (T, error) {
	full := s.key(key)
	var out T
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, full).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrMiss
			}
			return fmt.Errorf("platform/kv: get %s: %w", key, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("platform/kv: decode %s: %w", key, err)
		}
		if err := fn(&v); err != nil {
			return err
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("platform/kv: encode %s: %w", key, err)
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, enc, ttl)
			return nil
		}); err != nil {
			return err
		}
		out = v
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, full)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return out, fmt.Errorf("platform/kv: update %s: %w", key, ErrContended)
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}
