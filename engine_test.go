package wsession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/x-ordo/WPaymentManager-sub005/credentials"
	"github.com/x-ordo/WPaymentManager-sub005/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestVerifier(t *testing.T) credentials.Verifier {
	t.Helper()

	verifier, err := credentials.NewStatic(map[string]string{
		"alice": "correct-password-123",
		"bob":   "another-password-456",
	})
	if err != nil {
		t.Fatalf("NewStatic failed: %v", err)
	}

	return verifier
}

func buildTestEngine(t *testing.T, mutate func(*Builder)) *Engine {
	t.Helper()

	builder := New().
		WithSecret(testSecret).
		WithVerifier(newTestVerifier(t))
	if mutate != nil {
		mutate(builder)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func TestLoginAndVerifyRoundTrip(t *testing.T) {
	engine := buildTestEngine(t, nil)

	res, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if res.Identity.Username != "alice" {
		t.Fatalf("expected identity alice, got %q", res.Identity.Username)
	}

	payload, err := engine.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	user, ok := payload.(token.UserPayload)
	if !ok {
		t.Fatalf("expected UserPayload, got %T", payload)
	}
	if user.Username != "alice" {
		t.Fatalf("expected username alice, got %q", user.Username)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	engine := buildTestEngine(t, nil)

	if _, err := engine.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricLoginFailure]; got != 1 {
		t.Fatalf("expected 1 login failure, got %d", got)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	engine := buildTestEngine(t, nil)

	if _, err := engine.Login(context.Background(), "mallory", "whatever-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	engine := buildTestEngine(t, nil)

	for _, tc := range []struct{ user, pass string }{
		{"", "correct-password-123"},
		{"alice", ""},
		{"", ""},
	} {
		if _, err := engine.Login(context.Background(), tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("user=%q pass=%q: expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestLoginRateLimited(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxLoginAttempts = 2
	cfg.RateLimit.LoginCooldown = 15 * time.Minute

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithRedis(rdb)
	})

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Budget exhausted: even the correct password is refused.
	if _, err := engine.Login(ctx, "alice", "correct-password-123"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricLoginRateLimited]; got != 1 {
		t.Fatalf("expected 1 rate limited login, got %d", got)
	}
}

func TestLoginRateLimitWindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxLoginAttempts = 1
	cfg.RateLimit.LoginCooldown = time.Minute

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithRedis(rdb)
	})

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "correct-password-123"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := engine.Login(ctx, "alice", "correct-password-123"); err != nil {
		t.Fatalf("expected login after window expiry, got %v", err)
	}
}

func TestLoginSuccessResetsBudget(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxLoginAttempts = 2
	cfg.RateLimit.LoginCooldown = 15 * time.Minute

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithRedis(rdb)
	})

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "correct-password-123"); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}

	// The counter was reset, so the full budget is available again.
	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
}

func TestLoginRateLimiterUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.RateLimit.Enabled = true

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithRedis(rdb)
	})

	mr.Close()

	if _, err := engine.Login(context.Background(), "alice", "correct-password-123"); !errors.Is(err, ErrRateLimiterUnavailable) {
		t.Fatalf("expected ErrRateLimiterUnavailable, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithClock(clock)
	})

	res, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	mu.Lock()
	now = now.Add(8*time.Hour + time.Second)
	mu.Unlock()

	if _, err := engine.Verify(res.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricVerifyExpired]; got != 1 {
		t.Fatalf("expected 1 expired verification, got %d", got)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	engine := buildTestEngine(t, nil)

	res, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	tampered := "x" + res.Token[1:]
	if _, err := engine.Verify(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricVerifyRejected]; got != 1 {
		t.Fatalf("expected 1 rejected verification, got %d", got)
	}
}

func TestVerifyGarbage(t *testing.T) {
	engine := buildTestEngine(t, nil)

	for _, tok := range []string{"", "abc", "a:b:c", "alice:123"} {
		if _, err := engine.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", tok, err)
		}
	}
}

func TestLoginLegacyPayloadMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.Session.PayloadMode = PayloadModeLegacy

	verifier, err := credentials.NewStatic(map[string]string{"u100": "pay-pass-1"})
	if err != nil {
		t.Fatalf("NewStatic failed: %v", err)
	}

	engine, err := New().
		WithConfig(cfg).
		WithVerifier(verifier).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	res, err := engine.Login(context.Background(), "u100", "pay-pass-1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	payload, err := engine.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	legacy, ok := payload.(token.LegacyPayload)
	if !ok {
		t.Fatalf("expected LegacyPayload, got %T", payload)
	}
	if legacy.UserID != "u100" {
		t.Fatalf("expected user id u100, got %q", legacy.UserID)
	}
	// The legacy backend replays the password on every downstream call.
	if legacy.Pass != "pay-pass-1" {
		t.Fatalf("expected password carried in payload, got %q", legacy.Pass)
	}
}

func TestLogoutEmitsAudit(t *testing.T) {
	sink := NewChannelSink(8)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.Audit.Enabled = true

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithAuditSink(sink)
	})

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	res, err := engine.Login(ctx, "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	engine.Logout(ctx, res.Token)

	var events []AuditEvent
	deadline := time.After(2 * time.Second)
	for len(events) < 2 {
		select {
		case event := <-sink.Events():
			events = append(events, event)
		case <-deadline:
			t.Fatalf("timed out waiting for audit events, got %d", len(events))
		}
	}

	if events[0].EventType != "session.login" || !events[0].Success {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].EventType != "session.logout" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[1].Username != "alice" {
		t.Fatalf("expected logout username alice, got %q", events[1].Username)
	}
	if events[0].EventID == "" || events[0].EventID == events[1].EventID {
		t.Fatal("expected unique non-empty event ids")
	}
	if events[1].IP != "203.0.113.7" {
		t.Fatalf("expected client ip on event, got %q", events[1].IP)
	}
}

func TestLoginFailureEmitsAudit(t *testing.T) {
	sink := NewChannelSink(8)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.Audit.Enabled = true

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithAuditSink(sink)
	})

	if _, err := engine.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "session.login_failed" || event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}

func TestVerifyRejectEmitsAudit(t *testing.T) {
	sink := NewChannelSink(8)

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.Audit.Enabled = true

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithAuditSink(sink)
	})

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	if _, err := engine.VerifyContext(ctx, "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "session.verify_rejected" || event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.IP != "203.0.113.7" {
			t.Fatalf("expected client ip on event, got %q", event.IP)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}

func TestVerifyExpiredEmitsAudit(t *testing.T) {
	sink := NewChannelSink(8)

	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.Audit.Enabled = true

	engine := buildTestEngine(t, func(b *Builder) {
		b.WithConfig(cfg).WithAuditSink(sink).WithClock(clock)
	})

	res, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	mu.Lock()
	now = now.Add(8*time.Hour + time.Second)
	mu.Unlock()

	if _, err := engine.Verify(res.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	var sawExpired bool
	deadline := time.After(2 * time.Second)
	for !sawExpired {
		select {
		case event := <-sink.Events():
			// The login event arrives first; skip past it.
			if event.EventType == "session.verify_expired" {
				if event.Success {
					t.Fatalf("expected failed event, got %+v", event)
				}
				sawExpired = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for expiry audit event")
		}
	}
}

func TestEngineMetricsCounts(t *testing.T) {
	engine := buildTestEngine(t, nil)

	res, err := engine.Login(context.Background(), "alice", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Verify(res.Token); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	engine.Logout(context.Background(), res.Token)

	snapshot := engine.MetricsSnapshot()
	for id, want := range map[MetricID]uint64{
		MetricLoginSuccess: 1,
		MetricTokenIssued:  1,
		MetricVerifyOK:     1,
		MetricLogout:       1,
	} {
		if got := snapshot.Counters[id]; got != want {
			t.Fatalf("metric %d: expected %d, got %d", id, want, got)
		}
	}
}

func TestEngineNotReady(t *testing.T) {
	var engine Engine

	if _, err := engine.Login(context.Background(), "alice", "pass"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.Verify("token"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

func TestBuilderRequiresVerifier(t *testing.T) {
	if _, err := New().WithSecret(testSecret).Build(); !errors.Is(err, ErrVerifierMissing) {
		t.Fatalf("expected ErrVerifierMissing, got %v", err)
	}
}

func TestBuilderRequiresSecret(t *testing.T) {
	if _, err := New().WithVerifier(newTestVerifier(t)).Build(); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestBuilderRequiresRedisForRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.RateLimit.Enabled = true

	if _, err := New().WithConfig(cfg).WithVerifier(newTestVerifier(t)).Build(); err == nil {
		t.Fatal("expected error building rate-limited engine without redis")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	builder := New().
		WithSecret(testSecret).
		WithVerifier(newTestVerifier(t))

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
