package session

import (
	"context"
	"errors"
	"time"

	"github.com/africanut/holding-admin/internal/platform/kv"
)

const tokenKey = "token"

type storedToken struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// RedisStore persists the token as a JSON document in Redis.
type RedisStore struct {
	kv *kv.Store
}

// NewRedisStore wraps a kv store namespaced for the session.
func NewRedisStore(store *kv.Store) *RedisStore {
	return &RedisStore{kv: store}
}

// Load returns the persisted token or ErrNoToken.
func (s *RedisStore) Load(ctx context.Context) (string, error) {
	var doc storedToken
	if err := s.kv.GetJSON(ctx, tokenKey, &doc); err != nil {
		if errors.Is(err, kv.ErrMiss) {
			return "", ErrNoToken
		}
		return "", err
	}
	if doc.Token == "" {
		return "", ErrNoToken
	}
	return doc.Token, nil
}

// Save persists token without expiry; the backend decides validity.
func (s *RedisStore) Save(ctx context.Context, token string) error {
	return s.kv.SetJSON(ctx, tokenKey, storedToken{Token: token, SavedAt: time.Now().UTC()}, 0)
}

// Clear removes the persisted token.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, tokenKey)
}
