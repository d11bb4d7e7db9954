package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	mgr, err := NewManager(Config{
		Secret:   testSecret,
		TokenTTL: ttl,
		Issuer:   "authcore-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return mgr
}

func TestManager_IssueParseRoundTrip(t *testing.T) {
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := mgr.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UID != "user-42" {
		t.Fatalf("expected subject user-42, got %q", claims.UID)
	}
	if claims.ID == "" {
		t.Fatal("expected a non-empty jti")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected exp and iat claims to be set")
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != time.Hour {
		t.Fatalf("expected 1h lifetime, got %s", ttl)
	}
}

func TestManager_ParseExpired(t *testing.T) {
	mgr := newTestManager(t, time.Millisecond)

	token, err := mgr.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := mgr.Parse(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_ParseWrongSecret(t *testing.T) {
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other, err := NewManager(Config{
		Secret:   []byte("ffffffffffffffffffffffffffffffff"),
		TokenTTL: time.Hour,
		Issuer:   "authcore-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := other.Parse(token); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestManager_ParseMalformed(t *testing.T) {
	mgr := newTestManager(t, time.Hour)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := mgr.Parse(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestManager_ParseTamperedPayload(t *testing.T) {
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	// Flip the payload; the original signature must no longer verify.
	tampered := parts[0] + ".eyJ1aWQiOiJhdHRhY2tlciJ9." + parts[2]
	if _, err := mgr.Parse(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestManager_RemainingLifetime(t *testing.T) {
	mgr := newTestManager(t, time.Hour)

	token, err := mgr.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	remaining, err := mgr.RemainingLifetime(token)
	if err != nil {
		t.Fatalf("RemainingLifetime failed: %v", err)
	}
	if remaining <= 59*time.Minute || remaining > time.Hour {
		t.Fatalf("expected remaining lifetime close to 1h, got %s", remaining)
	}
}

func TestManager_RemainingLifetimeClampsToZero(t *testing.T) {
	mgr := newTestManager(t, time.Millisecond)

	token, err := mgr.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	remaining, err := mgr.RemainingLifetime(token)
	if err != nil {
		t.Fatalf("RemainingLifetime failed: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected clamped zero lifetime, got %s", remaining)
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(Config{TokenTTL: time.Hour}); err == nil {
		t.Fatal("expected missing secret to be rejected")
	}
	if _, err := NewManager(Config{Secret: testSecret}); err == nil {
		t.Fatal("expected zero TTL to be rejected")
	}
	if _, err := NewManager(Config{Secret: testSecret, TokenTTL: time.Hour, Leeway: 5 * time.Minute}); err == nil {
		t.Fatal("expected oversized leeway to be rejected")
	}
}
