package token

import (
	"errors"
	"strconv"
	"time"
)

var (
	// ErrMalformed reports a token that does not match the three-part wire format.
	ErrMalformed = errors.New("malformed session token")
	// ErrSignature reports a signature that does not verify under the secret.
	ErrSignature = errors.New("session token signature mismatch")
	// ErrExpired reports a token whose expiry lies in the past.
	ErrExpired = errors.New("session token expired")
	// ErrFieldDelimiter reports a payload field containing a delimiter character.
	ErrFieldDelimiter = errors.New("payload field contains delimiter character")
	// ErrSecretEmpty reports a sign or verify attempt with no secret configured.
	ErrSecretEmpty = errors.New("empty signing secret")
)

// DefaultMaxAge is the default absolute session lifetime.
const DefaultMaxAge = 8 * time.Hour

// Create serializes and signs a session token with expiry = now + maxAge.
// The signature covers "<payloadEncoding>:<expiry>" so that a change to any
// field or to the expiry invalidates the token.
func Create(p Payload, secret []byte, maxAge time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrSecretEmpty
	}

	encoded, err := encodeFields(p)
	if err != nil {
		return "", err
	}

	expiry := now.Add(maxAge).Unix()
	signingInput := encoded + partSep + strconv.FormatInt(expiry, 10)

	return signingInput + partSep + Sign(signingInput, secret), nil
}

// VerifyToken checks a presented token string and returns its payload.
// Evaluation order: split into three parts, verify the signature over the
// reconstructed signing input, decode the payload fields, check expiry
// against now. Every rejection is terminal and equivalent for callers;
// expiry alone is distinguishable via errors.Is(err, ErrExpired) for callers
// that want to render "session expired" instead of "please log in".
//
// VerifyToken never panics on attacker-controlled input.
func VerifyToken(tok string, secret []byte, now time.Time) (Payload, error) {
	if len(secret) == 0 {
		return nil, ErrSecretEmpty
	}

	pts, err := splitToken(tok)
	if err != nil {
		return nil, err
	}

	// Reconstruct the exact signed string. A token whose expiry segment was
	// re-encoded differently (leading zeros, plus sign) will not match.
	signingInput := pts.payload + partSep + strconv.FormatInt(pts.expiry, 10)
	if !Verify(signingInput, pts.signature, secret) {
		return nil, ErrSignature
	}

	payload, err := decodeFields(pts.payload)
	if err != nil {
		return nil, err
	}

	if now.Unix() > pts.expiry {
		return nil, ErrExpired
	}

	return payload, nil
}

// ExpiresAt extracts the expiry timestamp from a token without verifying it.
// Only for diagnostics; never use the result to grant access.
func ExpiresAt(tok string) (time.Time, error) {
	pts, err := splitToken(tok)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(pts.expiry, 0), nil
}
