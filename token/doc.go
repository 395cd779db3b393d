// Package token implements the stateless colon-delimited session-token scheme:
// a positional pipe-joined payload, an absolute Unix expiry, and a lowercase-hex
// HMAC-SHA256 signature over the first two parts.
//
// # Wire format
//
//	<field1|field2|...>:<expiry-unix-seconds>:<hex-hmac-sha256>
//
// The payload encoding is purely positional; field order is part of the wire
// format. Two payload shapes share one codec: [UserPayload] (one field) and
// [LegacyPayload] (five fields carrying the credentials the legacy payment
// backend requires on every call).
//
// # Architecture boundaries
//
// This package owns encoding, signing, and verification of the token string.
// It does NOT read cookies, consult credential stores, or load configuration —
// those responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Panic on attacker-controlled input (every decode path returns an error).
//   - Leak which part of a presented token failed verification.
//   - Hold any mutable state (every function is pure given payload, secret, time).
package token
