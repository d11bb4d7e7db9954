package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMetrics_IncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricTokenRevoked)

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Fatalf("expected 2 login successes, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricTokenRevoked] != 1 {
		t.Fatalf("expected 1 revocation, got %d", snap.Counters[MetricTokenRevoked])
	}
	if snap.Counters[MetricLoginFailure] != 0 {
		t.Fatalf("expected untouched counter to be zero, got %d", snap.Counters[MetricLoginFailure])
	}
}

func TestMetrics_DisabledIsInert(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot when disabled, got %v", snap.Counters)
	}
}

func TestMetrics_ConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricValidateSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().Counters[MetricValidateSuccess]; got != 8000 {
		t.Fatalf("expected 8000 increments, got %d", got)
	}
}

func TestEngine_MetricsTrackOutcomes(t *testing.T) {
	cfg := loginTestConfig()
	cfg.Metrics.Enabled = true

	engine, _, provider := newTestEngine(t, cfg)
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	seedUser(t, engine, provider, "alice@example.com", "correct-horse")

	if _, err := engine.Login(ctx, "alice@example.com", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	res, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := engine.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("expected 1 login failure, got %d", snap.Counters[MetricLoginFailure])
	}
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected 1 logout, got %d", snap.Counters[MetricLogout])
	}
}
