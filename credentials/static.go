package credentials

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"github.com/x-ordo/WPaymentManager-sub005/password"
)

// EnvCredentials is the environment variable holding the static credential
// table as comma-separated "user:pass" pairs.
const EnvCredentials = "AUTH_CREDENTIALS"

// Static is a fixed in-memory credential table. Entries whose stored value
// is an Argon2id PHC hash are verified through the password package;
// plaintext entries are compared in constant time.
//
// Static instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Static struct {
	entries map[string]string
}

// NewStatic builds a static verifier from a username -> stored-credential map.
//
// NewStatic may return an error when input validation, dependency calls, or security checks fail.
func NewStatic(entries map[string]string) (*Static, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("static credential table is empty")
	}

	cloned := make(map[string]string, len(entries))
	for user, stored := range entries {
		if user == "" {
			return nil, fmt.Errorf("static credential table contains empty username")
		}
		if stored == "" {
			return nil, fmt.Errorf("static credential entry for %q is empty", user)
		}
		cloned[user] = stored
	}

	return &Static{entries: cloned}, nil
}

// ParseEnv parses the AUTH_CREDENTIALS list format: comma-separated
// "user:pass" pairs. The password part may itself contain colons (PHC
// hashes do), so only the first colon separates user from pass. Stored
// values may also contain commas: the Argon2id PHC parameter section is
// "m=...,t=...,p=...", so a comma chunk without a colon continues the
// previous entry's value instead of starting a new pair.
//
// ParseEnv may return an error when input validation, dependency calls, or security checks fail.
func ParseEnv(raw string) (*Static, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%s is empty", EnvCredentials)
	}

	entries := make(map[string]string)
	lastUser := ""
	for _, chunk := range strings.Split(raw, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		user, pass, found := strings.Cut(chunk, ":")
		if !found {
			if lastUser == "" {
				return nil, fmt.Errorf("malformed %s entry %q", EnvCredentials, chunk)
			}
			entries[lastUser] += "," + chunk
			continue
		}
		if user == "" || pass == "" {
			return nil, fmt.Errorf("malformed %s entry %q", EnvCredentials, chunk)
		}
		if _, dup := entries[user]; dup {
			return nil, fmt.Errorf("duplicate %s entry for user %q", EnvCredentials, user)
		}
		entries[user] = pass
		lastUser = user
	}

	return NewStatic(entries)
}

// FromEnv builds a static verifier from the AUTH_CREDENTIALS environment
// variable. A missing or malformed variable is a configuration error meant
// to fail at startup, not per request.
//
// FromEnv may return an error when input validation, dependency calls, or security checks fail.
func FromEnv() (*Static, error) {
	return ParseEnv(os.Getenv(EnvCredentials))
}

// Verify checks the presented pair against the table. Unknown users and
// wrong passwords are indistinguishable to the caller.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Static) Verify(_ context.Context, username, pass string) (Identity, error) {
	stored, ok := s.entries[username]
	if !ok {
		// Burn comparable work for unknown users so lookup timing does not
		// reveal account existence.
		subtle.ConstantTimeCompare([]byte(pass), []byte(pass))
		return Identity{}, ErrInvalidCredentials
	}

	if password.IsPHC(stored) {
		match, err := password.Verify(pass, stored)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: corrupt stored hash for %q", ErrUnavailable, username)
		}
		if !match {
			return Identity{}, ErrInvalidCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(stored), []byte(pass)) != 1 {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{
		UserID:   username,
		Username: username,
	}, nil
}
