package middleware

import (
	"context"
	"net/http"
	"strings"

	apperr "github.com/Veysel440/go-auth-smoke/internal/errors"
	"github.com/Veysel440/go-auth-smoke/internal/jwtauth"
)

type ctxKey string

const userKey ctxKey = "username"

func Username(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userKey).(string)
	return v, ok
}

// RequireSession accepts the session id either as a Bearer token or bare in
// the Authorization header.
func RequireSession(keys jwtauth.KeyProvider, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if raw == "" {
				apperr.Write(w, r, apperr.E(http.StatusUnauthorized, "unauthorized", "missing session", nil, nil))
				return
			}
			c, err := jwtauth.Parse(keys, issuer, raw)
			if err != nil {
				apperr.Write(w, r, apperr.E(http.StatusUnauthorized, "unauthorized", "invalid session", err, nil))
				return
			}
			ctx := context.WithValue(r.Context(), userKey, c.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
