package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/africanut/holding-admin/internal/platform/kv"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(kv.NewStore(client, "holding:session")), mr
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestClearingTokenDropsUser(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(nil, nil)
	require.NoError(t, h.SetToken(ctx, "opaque"))
	h.SetUser(User{ID: "u-1", Email: "admin@africanut.cm", Role: RoleAdmin})

	_, ok := h.User()
	require.True(t, ok)

	require.NoError(t, h.SetToken(ctx, ""))
	require.Empty(t, h.Token())
	_, ok = h.User()
	require.False(t, ok)
	require.False(t, h.Authenticated(time.Now()))
}

func TestClearIfOnlyDropsMatchingToken(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	h := NewHolder(store, nil)
	require.NoError(t, h.SetToken(ctx, "fresh"))
	h.SetUser(User{ID: "u-2"})

	cleared, err := h.ClearIf(ctx, "old")
	require.NoError(t, err)
	require.False(t, cleared)
	require.Equal(t, "fresh", h.Token())
	_, ok := h.User()
	require.True(t, ok)

	cleared, err = h.ClearIf(ctx, "")
	require.NoError(t, err)
	require.False(t, cleared)

	cleared, err = h.ClearIf(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, cleared)
	require.Empty(t, h.Token())
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoToken)
}

func TestSetUserWithoutTokenIsIgnored(t *testing.T) {
	h := NewHolder(nil, nil)
	h.SetUser(User{ID: "u-1"})
	_, ok := h.User()
	require.False(t, ok)
}

func TestReplacingTokenDropsUser(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(nil, nil)
	require.NoError(t, h.SetToken(ctx, "first"))
	h.SetUser(User{ID: "u-1"})
	require.NoError(t, h.SetToken(ctx, "second"))
	_, ok := h.User()
	require.False(t, ok)
}

func TestAuthenticatedHonoursJWTExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewHolder(nil, nil)

	require.NoError(t, h.SetToken(ctx, signed(t, now.Add(time.Hour))))
	require.True(t, h.Authenticated(now))
	require.False(t, h.Authenticated(now.Add(2*time.Hour)))

	require.NoError(t, h.SetToken(ctx, "not-a-jwt"))
	require.True(t, h.Authenticated(now))
}

func TestExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, ok := Expiry(signed(t, exp))
	require.True(t, ok)
	require.True(t, got.Equal(exp))

	_, ok = Expiry("abc.def")
	require.False(t, ok)
}

func TestTokenSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	first := NewHolder(store, nil)
	require.NoError(t, first.SetToken(ctx, "persisted"))
	require.True(t, mr.Exists("holding:session:token"))

	second := NewHolder(store, nil)
	found, err := second.Restore(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "persisted", second.Token())

	require.NoError(t, second.Clear(ctx))
	require.False(t, mr.Exists("holding:session:token"))

	third := NewHolder(store, nil)
	found, err = third.Restore(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSetTokenKeepsMemoryWhenStoreFails(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	h := NewHolder(store, nil)
	err := h.SetToken(context.Background(), "tok")
	require.Error(t, err)
	require.Equal(t, "tok", h.Token())
}

func TestHolderConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = h.SetToken(ctx, "tok")
			h.SetUser(User{ID: "u"})
		}()
		go func() {
			defer wg.Done()
			_ = h.Token()
			_, _ = h.User()
			_ = h.Authenticated(time.Now())
		}()
	}
	wg.Wait()
	require.Equal(t, "tok", h.Token())
}

func TestUserContext(t *testing.T) {
	ctx := ContextWithUser(context.Background(), User{ID: "u-9", Role: RoleManager})
	u, ok := UserFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, RoleManager, u.Role)

	_, ok = UserFromContext(context.Background())
	require.False(t, ok)
}
