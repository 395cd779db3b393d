package wsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/x-ordo/WPaymentManager-sub005/credentials"
	"github.com/x-ordo/WPaymentManager-sub005/internal/rate"
	"github.com/x-ordo/WPaymentManager-sub005/token"
)

// Audit event names emitted by the Engine.
const (
	eventLogin         = "session.login"
	eventLoginFailed   = "session.login_failed"
	eventLoginThrottle = "session.login_rate_limited"
	eventLogout        = "session.logout"
	eventVerifyExpired = "session.verify_expired"
	eventVerifyReject  = "session.verify_rejected"
)

// Engine defines a public type used by wsession APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	verifier credentials.Verifier
	limiter  *rate.Limiter
	metrics  *Metrics
	audit    *auditDispatcher
	clock    func() time.Time
	ready    bool
}

// LoginResult defines a public type used by wsession APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	// Token is the signed session token, ready to be set as a cookie.
	Token string
	// Identity is the verified account the credential store returned.
	Identity credentials.Identity
	// ExpiresAt is the absolute wall-clock expiry of the token.
	ExpiresAt time.Time
}

// Login verifies the username/password pair against the configured
// credential store and, on success, mints a signed session token carrying
// the payload shape selected by [SessionConfig.PayloadMode]. Failed
// attempts count against the Redis login budget when rate limiting is
// enabled; the caller's IP is taken from the context via [WithClientIP].
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, username, pass string) (*LoginResult, error) {
	if e == nil || !e.ready {
		return nil, ErrEngineNotReady
	}
	if username == "" || pass == "" {
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	ip := clientIPFromContext(ctx)

	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, username, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metrics.Inc(MetricLoginRateLimited)
				e.audit.Record(ctx, eventLoginThrottle, username, ip, false, ErrLoginRateLimited.Error())
				return nil, ErrLoginRateLimited
			}
			return nil, fmt.Errorf("%w: %v", ErrRateLimiterUnavailable, err)
		}
	}

	identity, err := e.verifier.Verify(ctx, username, pass)
	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrInvalidCredentials):
			if e.limiter != nil {
				// Best effort: a failed counter write must not mask the
				// credential rejection.
				_ = e.limiter.IncrementLogin(ctx, username, ip)
			}
			e.metrics.Inc(MetricLoginFailure)
			e.audit.Record(ctx, eventLoginFailed, username, ip, false, ErrInvalidCredentials.Error())
			return nil, ErrInvalidCredentials
		case errors.Is(err, credentials.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
		default:
			return nil, fmt.Errorf("credential verification: %w", err)
		}
	}

	if e.limiter != nil {
		_ = e.limiter.ResetLogin(ctx, username, ip)
	}

	payload, err := e.buildPayload(identity, pass)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	tok, err := token.Create(payload, e.config.Secret, e.config.Session.MaxAge, now)
	if err != nil {
		if errors.Is(err, token.ErrFieldDelimiter) {
			return nil, fmt.Errorf("%w: %v", ErrPayloadField, err)
		}
		return nil, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.metrics.Inc(MetricTokenIssued)
	e.audit.Record(ctx, eventLogin, username, ip, true, "")

	return &LoginResult{
		Token:     tok,
		Identity:  identity,
		ExpiresAt: now.Add(e.config.Session.MaxAge),
	}, nil
}

// Verify checks a presented session token and returns its payload. Every
// rejection collapses to [ErrTokenInvalid] except an otherwise-valid token
// past its expiry, which returns [ErrTokenExpired] so callers can render
// "session expired" instead of "please log in". Both are equally
// unauthenticated.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Verify(tok string) (token.Payload, error) {
	return e.VerifyContext(context.Background(), tok)
}

// VerifyContext is [Engine.Verify] with a caller context so the audit trail
// of rejected and expired tokens carries the client IP from [WithClientIP].
//
// VerifyContext may return an error when input validation, dependency calls, or security checks fail.
// VerifyContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyContext(ctx context.Context, tok string) (token.Payload, error) {
	if e == nil || !e.ready {
		return nil, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)

	payload, err := token.VerifyToken(tok, e.config.Secret, e.clock())
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			e.metrics.Inc(MetricVerifyExpired)
			e.audit.Record(ctx, eventVerifyExpired, "", ip, false, ErrTokenExpired.Error())
			return nil, ErrTokenExpired
		}
		e.metrics.Inc(MetricVerifyRejected)
		e.audit.Record(ctx, eventVerifyReject, "", ip, false, ErrTokenInvalid.Error())
		return nil, ErrTokenInvalid
	}

	e.metrics.Inc(MetricVerifyOK)

	return payload, nil
}

// Logout records the end of a session. Tokens are stateless, so there is
// nothing to revoke server-side: the caller clears the cookie and the token
// simply ages out. Logout exists for the audit trail and metrics.
//
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, tok string) {
	if e == nil || !e.ready {
		return
	}

	username := ""
	if payload, err := token.VerifyToken(tok, e.config.Secret, e.clock()); err == nil {
		switch p := payload.(type) {
		case token.UserPayload:
			username = p.Username
		case token.LegacyPayload:
			username = p.UserID
		}
	}

	e.metrics.Inc(MetricLogout)
	e.audit.Record(ctx, eventLogout, username, clientIPFromContext(ctx), true, "")
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close drains the audit dispatcher. The Engine must not be used after Close.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

func (e *Engine) buildPayload(identity credentials.Identity, pass string) (token.Payload, error) {
	switch e.config.Session.PayloadMode {
	case PayloadModeLegacy:
		// The legacy payment backend has no session concept and demands
		// id+password+connection-id on every call, so the token carries them.
		return token.LegacyPayload{
			UserID:       identity.UserID,
			Pass:         pass,
			ConnectionID: identity.ConnectionID,
			UserName:     identity.DisplayName,
			UserClass:    identity.AccountClass,
		}, nil
	case PayloadModeUser:
		return token.UserPayload{Username: identity.Username}, nil
	default:
		return nil, fmt.Errorf("unknown payload mode %q", e.config.Session.PayloadMode)
	}
}
