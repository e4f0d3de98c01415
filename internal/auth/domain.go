package auth

import (
	"context"
	"fmt"

	"github.com/africanut/holding-admin/internal/platform/httpx"
	"github.com/africanut/holding-admin/internal/session"
)

// ErrNotSignedIn is returned when no usable backend session is held.
var ErrNotSignedIn = fmt.Errorf("auth: not signed in: %w", httpx.ErrUnauthorized)

// ErrBadCredential is returned when the caller does not present the held token.
var ErrBadCredential = fmt.Errorf("auth: missing or wrong bearer token: %w", httpx.ErrUnauthorized)

// Backend is the remote authentication API.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, session.User, error)
	Me(ctx context.Context) (session.User, error)
}
