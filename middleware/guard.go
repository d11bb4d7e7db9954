package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authcore "github.com/dev-priyanshu15/authcore"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the validation result attached by [Guard].
func AuthResultFromContext(ctx context.Context) (*authcore.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authcore.AuthResult)
	return res, ok
}

// Guard wraps a protected handler: it extracts the bearer token, runs it
// through Engine.Validate (revocation list first, fail-closed on store
// error), and attaches the resolved subject to the request context.
// Every failure answers 401; a coordination-store outage answers 503
// rather than letting a possibly-revoked token through.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Validate(r.Context(), token)
			if err != nil {
				if isStoreUnavailable(err) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func isStoreUnavailable(err error) bool {
	return errors.Is(err, authcore.ErrStoreUnavailable)
}
