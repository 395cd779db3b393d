package wsession

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/x-ordo/WPaymentManager-sub005/credentials"
	"github.com/x-ordo/WPaymentManager-sub005/internal/rate"
)

// Builder defines a public type used by wsession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	verifier  credentials.Verifier
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret describes the withsecret operation and its observable behavior.
//
// WithSecret does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Secret = append([]byte(nil), secret...)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithVerifier describes the withverifier operation and its observable behavior.
//
// WithVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithVerifier(v credentials.Verifier) *Builder {
	b.verifier = v
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the time source used for issuance and expiry checks.
// Intended for tests; production engines use time.Now.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.verifier == nil {
		return nil, ErrVerifierMissing
	}
	if b.config.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("rate limiting enabled without redis client")
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	engine := &Engine{
		config:   b.config,
		verifier: b.verifier,
		metrics:  NewMetrics(b.config.Metrics),
		clock:    clock,
	}

	if b.config.RateLimit.Enabled {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: b.config.RateLimit.EnableIPThrottle,
			MaxLoginAttempts: b.config.RateLimit.MaxLoginAttempts,
			LoginCooldown:    b.config.RateLimit.LoginCooldown,
		})
	}

	engine.audit = newAuditDispatcher(b.config.Audit, b.auditSink, clock)
	engine.ready = true

	b.built = true

	return engine, nil
}
