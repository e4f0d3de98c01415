package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/africanut/holding-admin/internal/platform/httpx"
	"github.com/africanut/holding-admin/internal/session"
)

// Service signs the gateway in and out of the backend.
type Service struct {
	backend Backend
	holder  *session.Holder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs an auth service.
func NewService(backend Backend, holder *session.Holder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, holder: holder, logger: logger, now: time.Now}
}

// Login exchanges credentials for a token and stores it with its user. The
// token is returned so the caller can present it on guarded routes.
func (s *Service) Login(ctx context.Context, email, password string) (session.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	token, user, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return session.User{}, "", err
	}
	if err := s.holder.SetToken(ctx, token); err != nil {
		// The session still works in memory; it will not survive a restart.
		s.logger.Warn("session not persisted", slog.Any("error", err))
	}
	s.holder.SetUser(user)
	s.logger.Info("signed in", slog.String("user", user.Email), slog.String("role", string(user.Role)))
	return user, token, nil
}

// Logout drops the session.
func (s *Service) Logout(ctx context.Context) error {
	if u, ok := s.holder.User(); ok {
		s.logger.Info("signed out", slog.String("user", u.Email))
	}
	return s.holder.Clear(ctx)
}

// Restore reloads a persisted token and validates it against the backend.
// An expired or rejected token is cleared; transport failures keep it so
// the next call can retry.
func (s *Service) Restore(ctx context.Context) (session.User, bool, error) {
	found, err := s.holder.Restore(ctx)
	if err != nil || !found {
		return session.User{}, false, err
	}
	if !s.holder.Authenticated(s.now()) {
		s.logger.Info("persisted token expired")
		return session.User{}, false, s.holder.Clear(ctx)
	}
	user, err := s.backend.Me(ctx)
	if err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			// the backend client already cleared the holder
			return session.User{}, false, nil
		}
		return session.User{}, false, err
	}
	s.holder.SetUser(user)
	return user, true, nil
}

// Me returns the signed-in user, asking the backend when not cached.
func (s *Service) Me(ctx context.Context) (session.User, error) {
	if !s.holder.Authenticated(s.now()) {
		return session.User{}, ErrNotSignedIn
	}
	if u, ok := s.holder.User(); ok {
		return u, nil
	}
	user, err := s.backend.Me(ctx)
	if err != nil {
		return session.User{}, err
	}
	s.holder.SetUser(user)
	return user, nil
}

// Ensure makes sure a session is held, restoring the persisted one or
// signing in with the given credentials. Used by unattended processes.
func (s *Service) Ensure(ctx context.Context, email, password string) error {
	if s.holder.Authenticated(s.now()) {
		return nil
	}
	if _, ok, err := s.Restore(ctx); err != nil || ok {
		return err
	}
	if email == "" {
		return ErrNotSignedIn
	}
	_, _, err := s.Login(ctx, email, password)
	return err
}
