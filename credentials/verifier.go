package credentials

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials reports a username/password pair that did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnavailable reports a credential backend that could not be reached.
	ErrUnavailable = errors.New("credential backend unavailable")
)

// Identity is the authenticated account a Verifier returns on success. The
// legacy fields are zero for stores that do not carry them; the Engine maps
// the populated fields onto the configured payload shape.
type Identity struct {
	UserID       string
	Username     string
	DisplayName  string
	ConnectionID string
	AccountClass string
}

// Verifier maps a presented username/password pair to a stored identity.
//
// Implementations must treat unknown users and wrong passwords identically
// (return [ErrInvalidCredentials] for both) so that login does not reveal
// account existence.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (Identity, error)
}
