package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/africanut/holding-admin/internal/platform/httpx"
	"github.com/africanut/holding-admin/internal/platform/kv"
)

// ErrCartBusy is returned when a cart kept changing under an update.
var ErrCartBusy = fmt.Errorf("shop: cart is being changed elsewhere, retry: %w", httpx.ErrConflict)

// Draft is the persisted state of a cart between requests.
type Draft struct {
	ID        string       `json:"id"`
	Cart      Cart         `json:"cart"`
	Customer  CustomerInfo `json:"customer"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// DraftStore persists cart drafts.
type DraftStore interface {
	Load(ctx context.Context, id string) (Draft, error)
	Save(ctx context.Context, d Draft) error
	// Update applies fn to the stored draft atomically with respect to
	// other updates of the same id.
	Update(ctx context.Context, id string, fn func(*Draft) error) (Draft, error)
	Delete(ctx context.Context, id string) error
}

// RedisDrafts keeps drafts in Redis with a sliding TTL.
type RedisDrafts struct {
	kv  *kv.Store
	ttl time.Duration
}

// NewRedisDrafts builds a draft store. Every save renews ttl.
func NewRedisDrafts(store *kv.Store, ttl time.Duration) *RedisDrafts {
	return &RedisDrafts{kv: store, ttl: ttl}
}

// Load returns the draft or ErrCartNotFound.
func (s *RedisDrafts) Load(ctx context.Context, id string) (Draft, error) {
	var d Draft
	if err := s.kv.GetJSON(ctx, id, &d); err != nil {
		if errors.Is(err, kv.ErrMiss) {
			return Draft{}, ErrCartNotFound
		}
		return Draft{}, err
	}
	return d, nil
}

// Save stores d under its id.
func (s *RedisDrafts) Save(ctx context.Context, d Draft) error {
	return s.kv.SetJSON(ctx, d.ID, d, s.ttl)
}

// Update re-reads and retries when another request changed the draft
// between read and write, so concurrent edits of one cart never drop lines.
func (s *RedisDrafts) Update(ctx context.Context, id string, fn func(*Draft) error) (Draft, error) {
	d, err := kv.UpdateJSON(ctx, s.kv, id, s.ttl, fn)
	switch {
	case errors.Is(err, kv.ErrMiss):
		return Draft{}, ErrCartNotFound
	case errors.Is(err, kv.ErrContended):
		return Draft{}, ErrCartBusy
	}
	return d, err
}

// Delete forgets the draft.
func (s *RedisDrafts) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, id)
}
