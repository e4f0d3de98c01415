// Package session holds the process-wide bearer session used against the
// remote backend.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the backend role of the signed-in user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// User is the identity returned by the backend for the current token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// Store persists the bearer token across restarts.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ErrNoToken is returned by Store.Load when nothing was persisted.
var ErrNoToken = errors.New("session: no persisted token")

// Holder is the single holder of the bearer token and the cached user.
// It is safe for concurrent use.
type Holder struct {
	mu     sync.RWMutex
	token  string
	user   *User
	store  Store
	logger *slog.Logger
}

// NewHolder builds an empty Holder. store may be nil for an in-memory
// session.
func NewHolder(store Store, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{store: store, logger: logger}
}

// SetToken replaces the token and persists it. An empty token clears the
// session, including the cached user. The in-memory state changes even
// when persistence fails.
func (h *Holder) SetToken(ctx context.Context, token string) error {
	h.mu.Lock()
	changed := h.token != token
	h.token = token
	if token == "" || changed {
		h.user = nil
	}
	h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	var err error
	if token == "" {
		err = h.store.Clear(ctx)
	} else {
		err = h.store.Save(ctx, token)
	}
	if err != nil {
		h.logger.Warn("persist session token", slog.Any("error", err))
	}
	return err
}

// Clear drops the token and the cached user.
func (h *Holder) Clear(ctx context.Context) error {
	return h.SetToken(ctx, "")
}

// ClearIf drops the session only while it still holds token, so a rejection
// of an older token never wipes a newer sign-in. It reports whether the
// session was cleared.
func (h *Holder) ClearIf(ctx context.Context, token string) (bool, error) {
	h.mu.Lock()
	if token == "" || h.token != token {
		h.mu.Unlock()
		return false, nil
	}
	h.token = ""
	h.user = nil
	h.mu.Unlock()

	if h.store == nil {
		return true, nil
	}
	err := h.store.Clear(ctx)
	if err != nil {
		h.logger.Warn("persist session token", slog.Any("error", err))
	}
	return true, err
}

// Token returns the current token, empty when signed out.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// SetUser caches the identity attached to the current token. It is a no-op
// when no token is held.
func (h *Holder) SetUser(u User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.token == "" {
		return
	}
	h.user = &u
}

// User returns the cached user.
func (h *Holder) User() (User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return User{}, false
	}
	return *h.user, true
}

// Authenticated reports whether a usable token is held at now. Tokens that
// carry a JWT exp claim in the past are treated as absent.
func (h *Holder) Authenticated(now time.Time) bool {
	token := h.Token()
	if token == "" {
		return false
	}
	exp, ok := Expiry(token)
	return !ok || now.Before(exp)
}

// Restore loads a persisted token into memory. It reports whether a token
// was found. The user is not known until the caller validates the token.
func (h *Holder) Restore(ctx context.Context) (bool, error) {
	if h.store == nil {
		return false, nil
	}
	token, err := h.store.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	h.mu.Lock()
	h.token = token
	h.user = nil
	h.mu.Unlock()
	return token != "", nil
}

// Expiry reads the exp claim of a JWT without verifying its signature; the
// backend remains the verifier. ok is false for opaque tokens.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
