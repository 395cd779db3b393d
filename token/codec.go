package token

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	fieldSep = "|"
	partSep  = ":"
)

// encodeFields joins the payload's wire fields after checking that no field
// carries a delimiter character. Delimiters inside a field would silently
// misalign positional decoding, so they are rejected at construction time.
func encodeFields(p Payload) (string, error) {
	fields := p.Fields()
	for _, field := range fields {
		if strings.ContainsAny(field, fieldSep+partSep) {
			return "", fmt.Errorf("%w: %q", ErrFieldDelimiter, field)
		}
	}

	return strings.Join(fields, fieldSep), nil
}

type parts struct {
	payload   string
	expiry    int64
	signature string
}

// splitToken splits a presented token into its three logical parts without
// trusting any of them. Exactly three colon-separated segments are required
// and the expiry must parse as a non-negative integer.
func splitToken(tok string) (parts, error) {
	if tok == "" {
		return parts{}, ErrMalformed
	}

	segments := strings.Split(tok, partSep)
	if len(segments) != 3 {
		return parts{}, ErrMalformed
	}

	expiry, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil || expiry < 0 {
		return parts{}, ErrMalformed
	}

	return parts{
		payload:   segments[0],
		expiry:    expiry,
		signature: segments[2],
	}, nil
}

func decodeFields(payload string) (Payload, error) {
	return payloadFromFields(strings.Split(payload, fieldSep))
}
