package token

// Payload is the authenticated identity carried inside a session token.
// Implementations expose their wire fields in the fixed positional order
// that the codec joins with "|".
type Payload interface {
	Fields() []string
}

// UserPayload is the minimal payload shape: a single username field.
type UserPayload struct {
	Username string
}

// Fields returns the positional wire fields of the payload.
func (p UserPayload) Fields() []string {
	return []string{p.Username}
}

// LegacyPayload is the extended payload shape used when every authenticated
// call must re-present credentials to the legacy payment backend, which has
// no session concept of its own.
type LegacyPayload struct {
	UserID       string
	Pass         string
	ConnectionID string
	UserName     string
	UserClass    string
}

// Fields returns the positional wire fields of the payload. The order is
// part of the wire format and must never change.
func (p LegacyPayload) Fields() []string {
	return []string{p.UserID, p.Pass, p.ConnectionID, p.UserName, p.UserClass}
}

const (
	userFieldCount   = 1
	legacyFieldCount = 5
)

// payloadFromFields maps decoded positional fields back into a named payload
// shape. A field count matching neither shape is malformed, indistinguishable
// from a forged token as far as callers are concerned.
func payloadFromFields(fields []string) (Payload, error) {
	switch len(fields) {
	case userFieldCount:
		return UserPayload{Username: fields[0]}, nil
	case legacyFieldCount:
		return LegacyPayload{
			UserID:       fields[0],
			Pass:         fields[1],
			ConnectionID: fields[2],
			UserName:     fields[3],
			UserClass:    fields[4],
		}, nil
	default:
		return nil, ErrMalformed
	}
}
