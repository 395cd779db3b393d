package wsession

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/x-ordo/WPaymentManager-sub005/token"
)

// PayloadMode selects which token payload shape Login mints.
//
// PayloadMode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PayloadMode string

const (
	// PayloadModeUser is an exported constant or variable used by the session engine.
	PayloadModeUser PayloadMode = "user"
	// PayloadModeLegacy is an exported constant or variable used by the session engine.
	PayloadModeLegacy PayloadMode = "legacy"
)

// Environment variables consumed by [ConfigFromEnv].
const (
	// EnvSecret is an exported constant or variable used by the session engine.
	EnvSecret = "AUTH_SECRET"
	// EnvSessionMaxAge is an exported constant or variable used by the session engine.
	EnvSessionMaxAge = "SESSION_MAX_AGE"
)

const (
	// DefaultCookieName is an exported constant or variable used by the session engine.
	DefaultCookieName = "session_token"

	// Deployment profiles enforce one of these two secret minimums.
	secretMinStandard = 16
	secretMinStrict   = 32
)

// Config defines a public type used by wsession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Secret is the process-wide HMAC key, loaded once at startup.
	Secret []byte

	Session   SessionConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by wsession APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	CookieName string
	// MaxAge is the absolute session lifetime. There is no sliding renewal:
	// expiry is fixed at issuance and checked against the wall clock.
	MaxAge time.Duration
	// CookieSecure marks the cookie Secure; enable whenever the deployment
	// is served over HTTPS.
	CookieSecure bool
	// PayloadMode selects "user" (single username field) or "legacy"
	// (five-field payload carrying downstream credentials).
	PayloadMode PayloadMode
	// MinSecretLength is the startup-enforced secret minimum: 16 or 32
	// depending on deployment profile.
	MinSecretLength int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by wsession APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by wsession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by wsession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			CookieName:      DefaultCookieName,
			MaxAge:          token.DefaultMaxAge,
			CookieSecure:    true,
			PayloadMode:     PayloadModeUser,
			MinSecretLength: secretMinStrict,
		},
		RateLimit: RateLimitConfig{
			Enabled:          false,
			EnableIPThrottle: true,
			MaxLoginAttempts: 10,
			LoginCooldown:    15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// ConfigFromEnv loads the configuration surface from environment variables:
// AUTH_SECRET (required) and SESSION_MAX_AGE (optional override, seconds).
// A missing or too-short secret is a startup failure by design — proceeding
// would make every subsequent token forgeable.
//
// ConfigFromEnv may return an error when input validation, dependency calls, or security checks fail.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	secret := os.Getenv(EnvSecret)
	if secret == "" {
		return Config{}, fmt.Errorf("%w: %s not set", ErrSecretMissing, EnvSecret)
	}
	cfg.Secret = []byte(secret)

	if raw := os.Getenv(EnvSessionMaxAge); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid %s value %q", EnvSessionMaxAge, raw)
		}
		cfg.Session.MaxAge = time.Duration(seconds) * time.Second
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Secret = append([]byte(nil), cfg.Secret...)
	return out
}

func validateConfig(cfg Config) error {
	if len(cfg.Secret) == 0 {
		return ErrSecretMissing
	}

	minLen := cfg.Session.MinSecretLength
	if minLen != secretMinStandard && minLen != secretMinStrict {
		return errors.New("invalid minimum secret length: must be 16 or 32")
	}
	if len(cfg.Secret) < minLen {
		return fmt.Errorf("%w: got %d bytes, need %d", ErrSecretTooShort, len(cfg.Secret), minLen)
	}

	if cfg.Session.MaxAge <= 0 {
		return errors.New("invalid session max age")
	}

	name := cfg.Session.CookieName
	if name == "" || strings.ContainsAny(name, " ;,=") {
		return errors.New("invalid session cookie name")
	}

	switch cfg.Session.PayloadMode {
	case PayloadModeUser, PayloadModeLegacy:
	default:
		return errors.New("invalid payload mode")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.MaxLoginAttempts <= 0 {
			return errors.New("invalid max login attempts")
		}
		if cfg.RateLimit.LoginCooldown <= 0 {
			return errors.New("invalid login cooldown")
		}
	}

	if cfg.Audit.Enabled && cfg.Audit.BufferSize < 0 {
		return errors.New("invalid audit buffer size")
	}

	return nil
}
