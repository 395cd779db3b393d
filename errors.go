package wsession

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrVerifierUnavailable is an exported constant or variable used by the session engine.
	ErrVerifierUnavailable = errors.New("credential backend unavailable")
	// ErrRateLimiterUnavailable is an exported constant or variable used by the session engine.
	ErrRateLimiterUnavailable = errors.New("rate limit backend unavailable")
	// ErrTokenInvalid is an exported constant or variable used by the session engine.
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrTokenExpired is an exported constant or variable used by the session engine.
	ErrTokenExpired = errors.New("session token expired")
	// ErrNoSessionCookie is an exported constant or variable used by the session engine.
	ErrNoSessionCookie = errors.New("session cookie missing")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSecretMissing is an exported constant or variable used by the session engine.
	ErrSecretMissing = errors.New("auth secret missing")
	// ErrSecretTooShort is an exported constant or variable used by the session engine.
	ErrSecretTooShort = errors.New("auth secret below minimum length")
	// ErrVerifierMissing is an exported constant or variable used by the session engine.
	ErrVerifierMissing = errors.New("credential verifier missing")
	// ErrPayloadField is an exported constant or variable used by the session engine.
	ErrPayloadField = errors.New("identity field not encodable in token payload")
)
