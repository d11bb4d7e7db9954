package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dev-priyanshu15/authcore/jwt"
)

func TestLogout_RevokesToken(t *testing.T) {
	engine, _, provider := newTestEngine(t, loginTestConfig())
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	seedUser(t, engine, provider, "alice@example.com", "correct-horse")

	res, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.Validate(ctx, res.Token); err != nil {
		t.Fatalf("expected token to validate before logout, got %v", err)
	}

	if err := engine.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	_, err = engine.Validate(ctx, res.Token)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestLogout_IsIdempotentPerToken(t *testing.T) {
	engine, _, provider := newTestEngine(t, loginTestConfig())
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	seedUser(t, engine, provider, "alice@example.com", "correct-horse")

	res, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := engine.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// A second logout finds the token already revoked.
	err = engine.Logout(ctx, res.Token)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on second logout, got %v", err)
	}
}

func TestLogout_RejectsInvalidToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	if err := engine.Logout(ctx, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if err := engine.Logout(ctx, "not.a.token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestLogout_ExpiredTokenWritesNothing(t *testing.T) {
	engine, mr, _ := newTestEngine(t, engineTestConfig())

	short, err := jwt.NewManager(jwt.Config{
		Secret:   cloneBytes(testSecret),
		TokenTTL: time.Millisecond,
		Issuer:   "authcore",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := short.Issue("user-7")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	err = engine.Logout(context.Background(), token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no revocation entries for an expired token, got %v", keys)
	}
}
