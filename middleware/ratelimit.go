package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	authcore "github.com/dev-priyanshu15/authcore"
)

// RateLimitAPI wraps a handler with the general request budget
// (100 points / 60s by default).
func RateLimitAPI(engine *authcore.Engine, trustProxy bool) func(http.Handler) http.Handler {
	return rateLimit(engine, trustProxy, func(ctx context.Context, identity string) error {
		return engine.ConsumeAPI(ctx, identity)
	}, nil)
}

// RateLimitAuth wraps a login/register handler with the sensitive budget
// (5 points / 60s with a 300s block by default). The point drawn here is
// the request's only draw: the wrapped context carries the charged marker,
// so Engine.Login and Engine.Register inside the handler do not consume a
// second point for the same request.
func RateLimitAuth(engine *authcore.Engine, trustProxy bool) func(http.Handler) http.Handler {
	return rateLimit(engine, trustProxy, func(ctx context.Context, identity string) error {
		return engine.ConsumeAuth(ctx, identity)
	}, authcore.WithAuthCharged)
}

func rateLimit(engine *authcore.Engine, trustProxy bool, consume func(context.Context, string) error, stamp func(context.Context) context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			identity := ClientIP(r, trustProxy)
			ctx := authcore.WithClientIP(r.Context(), identity)

			if err := consume(ctx, identity); err != nil {
				var limited *authcore.RateLimitError
				if errors.As(err, &limited) {
					w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfterSeconds()))
					http.Error(w, "too many requests", http.StatusTooManyRequests)
					return
				}
				// Store outage: reject rather than open an abuse window.
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			if stamp != nil {
				ctx = stamp(ctx)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP derives the limiter identity for a request: the connection's
// remote address, or the first entry of X-Forwarded-For when the caller
// declared the proxy in front of it trusted. Spoofable identities without
// a trusted proxy are an accepted limitation of address-keyed limiting.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
			if first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
