package auth

import (
	"context"
	"errors"
	"net/http"

	"ShadesStore/pkg/kit"
)

const TokenParam = "accessToken"

type ctxKey string

const sessionKey ctxKey = "session"

type Resolver interface {
	Resolve(ctx context.Context, token string) (Session, error)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// RequireToken resolves the accessToken query parameter and rejects the
// request with 401 and msg when it is missing, unknown or expired. Other
// resolver failures are 500.
func RequireToken(v Resolver, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := v.Resolve(r.Context(), r.URL.Query().Get(TokenParam))
			switch {
			case errors.Is(err, ErrUnauthorized):
				kit.WriteError(w, r, http.StatusUnauthorized, msg, nil)
				return
			case err != nil:
				kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), s)))
		})
	}
}
