package backend

import (
	"context"
	"net/http"

	"github.com/africanut/holding-admin/internal/session"
)

type userWire struct {
	ID    flexID `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (w userWire) user() session.User {
	return session.User{ID: string(w.ID), Email: w.Email, Name: w.Name, Role: session.Role(w.Role)}
}

type loginReply struct {
	Token string   `json:"token"`
	User  userWire `json:"user"`
}

// Login exchanges credentials for a bearer token. The holder is not
// modified; callers store the token.
func (c *Client) Login(ctx context.Context, email, password string) (string, session.User, error) {
	body := map[string]string{"email": email, "password": password}
	var reply loginReply
	if err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/api/auth/login", body: body, out: &reply}); err != nil {
		return "", session.User{}, err
	}
	if reply.Token == "" {
		return "", session.User{}, &Error{Kind: KindServer, Status: http.StatusOK, Op: "login", Message: "backend returned no token"}
	}
	return reply.Token, reply.User.user(), nil
}

// Me validates the held token and returns its user.
func (c *Client) Me(ctx context.Context) (session.User, error) {
	var reply struct {
		User userWire `json:"user"`
	}
	if err := c.do(ctx, call{op: "me", method: http.MethodGet, path: "/api/auth/me", out: &reply, protected: true}); err != nil {
		return session.User{}, err
	}
	return reply.User.user(), nil
}
