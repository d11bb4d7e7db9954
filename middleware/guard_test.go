package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/dev-priyanshu15/authcore"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// memoryProvider is the minimal user store the middleware tests need.
type memoryProvider struct {
	mu    sync.Mutex
	users map[string]authcore.UserRecord
	byID  map[string]authcore.UserRecord
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{
		users: make(map[string]authcore.UserRecord),
		byID:  make(map[string]authcore.UserRecord),
	}
}

func (p *memoryProvider) GetUserByIdentifier(_ context.Context, identifier string) (authcore.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.users[identifier]
	if !ok {
		return authcore.UserRecord{}, authcore.ErrUserNotFound
	}
	return rec, nil
}

func (p *memoryProvider) CreateUser(_ context.Context, input authcore.CreateUserInput) (authcore.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.users[input.Identifier]; ok {
		return authcore.UserRecord{}, authcore.ErrAccountExists
	}

	rec := authcore.UserRecord{
		UserID:       fmt.Sprintf("user-%d", len(p.users)+1),
		Identifier:   input.Identifier,
		PasswordHash: input.PasswordHash,
	}
	p.users[input.Identifier] = rec
	p.byID[rec.UserID] = rec
	return rec, nil
}

func (p *memoryProvider) SaveLockout(_ context.Context, userID string, state authcore.LockoutState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.byID[userID]
	if !ok {
		return authcore.ErrUserNotFound
	}
	rec.FailedAttempts = state.FailedAttempts
	if state.Phase == authcore.PhaseLocked {
		rec.LockedUntil = state.Until
	} else {
		rec.LockedUntil = time.Time{}
	}
	p.byID[userID] = rec
	p.users[rec.Identifier] = rec
	return nil
}

func newTestEngine(t *testing.T) (*authcore.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine, err := authcore.New().
		WithSecret(testSecret).
		WithRedis(rdb).
		WithUserProvider(newMemoryProvider()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, mr
}

func issueToken(t *testing.T, engine *authcore.Engine, userID string) string {
	t.Helper()

	ctx := authcore.WithClientIP(context.Background(), "10.0.0.1")
	res, err := engine.Register(ctx, userID+"@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return res.Token
}

func TestGuard_MissingToken(t *testing.T) {
	engine, _ := newTestEngine(t)

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestGuard_ValidToken(t *testing.T) {
	engine, _ := newTestEngine(t)
	token := issueToken(t, engine, "alice")

	var seen *authcore.AuthResult
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := AuthResultFromContext(r.Context())
		if !ok {
			t.Fatal("expected auth result on request context")
		}
		seen = res
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.SubjectID == "" {
		t.Fatalf("expected a resolved subject, got %+v", seen)
	}
}

func TestGuard_RevokedToken(t *testing.T) {
	engine, _ := newTestEngine(t)
	token := issueToken(t, engine, "alice")

	if err := engine.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	handler := Guard(engine)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with a revoked token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuard_StoreOutage(t *testing.T) {
	engine, mr := newTestEngine(t)
	token := issueToken(t, engine, "alice")

	mr.Close()

	handler := Guard(engine)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run during a store outage")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
