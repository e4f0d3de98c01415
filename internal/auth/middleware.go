package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/africanut/holding-admin/internal/platform/httpx"
	"github.com/africanut/holding-admin/internal/session"
)

// RequireSession answers 401 without touching the backend unless the
// gateway holds a usable token and the caller presents that same token as
// its bearer. Holding a session alone does not open the guarded routes.
func RequireSession(holder *session.Holder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !holder.Authenticated(time.Now()) {
				httpx.RespondError(w, ErrNotSignedIn)
				return
			}
			if !presents(r, holder.Token()) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="holding"`)
				httpx.RespondError(w, ErrBadCredential)
				return
			}
			ctx := r.Context()
			if u, ok := holder.User(); ok {
				ctx = session.ContextWithUser(ctx, u)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func presents(r *http.Request, token string) bool {
	scheme, given, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return false
	}
	given = strings.TrimSpace(given)
	return subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1
}
