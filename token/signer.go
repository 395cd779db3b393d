package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Sign computes the lowercase-hex HMAC-SHA256 of payload under secret.
// Deterministic: verification recomputes the same value.
func Sign(payload string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the HMAC over payload and compares the presented
// signature to the canonical lowercase-hex encoding in constant time.
// Malformed hex, wrong length, or non-canonical case all fail closed: the
// result is false, never a panic, because the signature arrives untrusted
// from a cookie.
func Verify(payload string, signature string, secret []byte) bool {
	expected := Sign(payload, secret)
	if len(signature) != len(expected) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}
