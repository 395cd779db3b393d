// Package wsession provides the stateless session-token subsystem shared by
// the case-management web application and the payment admin panel: HMAC-signed
// colon-delimited bearer tokens minted at login and verified on every request,
// with no server-side session store.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// wsession is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginResult, AuditEvent, MetricsSnapshot). Token encoding
// and signing live in the token subpackage; credential-store adapters in
// credentials; Redis rate-limit primitives under internal/.
//
// # What this package must NOT do
//
//   - Persist sessions anywhere. A token is a pure function of payload,
//     secret, and issuance time; verification reads only the token, the
//     secret, and the clock.
//   - Expose Redis clients or rate-limit key layouts in its public API.
//   - Reveal to callers which part of a presented token failed verification.
//
// # Performance contract
//
// Verify is the hot path. It performs one HMAC computation and no I/O; it
// must not allocate beyond the returned payload value.
package wsession
