package authcore

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller’s network identity to ctx. The Engine
// uses it as the rate-limiter key for login and register, and stamps it on
// audit events. An empty identity falls back to a shared bucket.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

type authChargedContextKey struct{}

// WithAuthCharged marks the request as already charged against the
// sensitive-class budget. [Engine.Login] and [Engine.Register] skip their
// internal ConsumeAuth call when the marker is present, so an outer gate
// that has drawn the point does not cause a second draw for the same
// request. The rate-limit middleware sets this after a successful consume.
func WithAuthCharged(ctx context.Context) context.Context {
	return context.WithValue(ctx, authChargedContextKey{}, true)
}

func authChargedFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	charged, _ := ctx.Value(authChargedContextKey{}).(bool)
	return charged
}
