package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test-secret-key-0123456789abcdef")

func TestRoundTripUserPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := Create(UserPayload{Username: "alice"}, testSecret, 8*time.Hour, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := VerifyToken(tok, testSecret, now.Add(time.Second))
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	payload, ok := got.(UserPayload)
	if !ok {
		t.Fatalf("payload type = %T, want UserPayload", got)
	}
	if payload.Username != "alice" {
		t.Errorf("Username = %q, want %q", payload.Username, "alice")
	}
}

func TestRoundTripLegacyPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)
	in := LegacyPayload{
		UserID:       "u1",
		Pass:         "p1",
		ConnectionID: "c1",
		UserName:     "Kim",
		UserClass:    "100",
	}

	tok, err := Create(in, testSecret, time.Hour, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := VerifyToken(tok, testSecret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	// Positional decode must not transpose fields.
	payload, ok := got.(LegacyPayload)
	if !ok {
		t.Fatalf("payload type = %T, want LegacyPayload", got)
	}
	if payload != in {
		t.Errorf("payload = %+v, want %+v", payload, in)
	}
}

func TestExpiryEnforcement(t *testing.T) {
	issued := time.Unix(1700000000, 0)

	tok, err := Create(UserPayload{Username: "alice"}, testSecret, 8*time.Hour, issued)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := VerifyToken(tok, testSecret, issued.Add(time.Second)); err != nil {
		t.Fatalf("verify 1s after issue: %v", err)
	}

	_, err = VerifyToken(tok, testSecret, issued.Add(8*time.Hour+time.Second))
	if !errors.Is(err, ErrExpired) {
		t.Errorf("verify after max age: err = %v, want ErrExpired", err)
	}
}

func TestNegativeMaxAgeFailsVerification(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := Create(UserPayload{Username: "alice"}, testSecret, -time.Second, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Correct signature, expiry already in the past.
	if _, err := VerifyToken(tok, testSecret, now); !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := Create(UserPayload{Username: "alice"}, testSecret, time.Hour, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := []byte("another-secret-key-fedcba98765432")
	if _, err := VerifyToken(tok, other, now); !errors.Is(err, ErrSignature) {
		t.Errorf("err = %v, want ErrSignature", err)
	}
}

func TestTamperDetection(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := Create(LegacyPayload{
		UserID:       "u1",
		Pass:         "p1",
		ConnectionID: "c1",
		UserName:     "Kim",
		UserClass:    "100",
	}, testSecret, time.Hour, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Flip every character in the payload and expiry segments one at a
	// time. Each mutation must be rejected.
	lastColon := strings.LastIndex(tok, ":")
	for i := 0; i < lastColon; i++ {
		mutated := []byte(tok)
		if mutated[i] == 'x' {
			mutated[i] = 'y'
		} else {
			mutated[i] = 'x'
		}

		if _, err := VerifyToken(string(mutated), testSecret, now); err == nil {
			t.Errorf("flipped byte %d: verification unexpectedly succeeded", i)
		}
	}
}

func TestZeroSignatureForgery(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := Create(UserPayload{Username: "bob"}, testSecret, time.Hour, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Keep the first two parts of the real token, append an all-zero hex
	// signature of the same length.
	segments := strings.Split(tok, ":")
	if len(segments) != 3 {
		t.Fatalf("token has %d segments, want 3", len(segments))
	}
	forged := segments[0] + ":" + segments[1] + ":" + strings.Repeat("0", len(segments[2]))

	if _, err := VerifyToken(forged, testSecret, now); !errors.Is(err, ErrSignature) {
		t.Errorf("err = %v, want ErrSignature", err)
	}
}

func TestMalformedInputs(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		tok  string
	}{
		{name: "empty", tok: ""},
		{name: "no colon", tok: "alice"},
		{name: "one colon", tok: "alice:1700003600"},
		{name: "three colons", tok: "alice:1700003600:aabb:cc"},
		{name: "non-numeric expiry", tok: "alice:tomorrow:aabbcc"},
		{name: "negative expiry", tok: "alice:-5:aabbcc"},
		{name: "float expiry", tok: "alice:1700003600.5:aabbcc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := VerifyToken(tt.tok, testSecret, now)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
			if payload != nil {
				t.Errorf("payload = %+v, want nil", payload)
			}
		})
	}
}

func TestWrongFieldCountRejected(t *testing.T) {
	now := time.Unix(1700000000, 0)

	// Correctly signed token whose payload holds a field count matching
	// neither shape. Signature verifies, decode must still reject it.
	signingInput := "a|b|c:" + "1700003600"
	tok := signingInput + ":" + Sign(signingInput, testSecret)

	if _, err := VerifyToken(tok, testSecret, now); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestDelimiterInFieldRejectedAtCreate(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name    string
		payload Payload
	}{
		{name: "pipe in username", payload: UserPayload{Username: "ali|ce"}},
		{name: "colon in username", payload: UserPayload{Username: "ali:ce"}},
		{name: "pipe in legacy display name", payload: LegacyPayload{
			UserID: "u1", Pass: "p1", ConnectionID: "c1", UserName: "K|m", UserClass: "100",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Create(tt.payload, testSecret, time.Hour, now); !errors.Is(err, ErrFieldDelimiter) {
				t.Errorf("err = %v, want ErrFieldDelimiter", err)
			}
		})
	}
}

func TestEmptySecretRejected(t *testing.T) {
	now := time.Unix(1700000000, 0)

	if _, err := Create(UserPayload{Username: "alice"}, nil, time.Hour, now); !errors.Is(err, ErrSecretEmpty) {
		t.Errorf("Create err = %v, want ErrSecretEmpty", err)
	}
	if _, err := VerifyToken("a:1:bb", nil, now); !errors.Is(err, ErrSecretEmpty) {
		t.Errorf("VerifyToken err = %v, want ErrSecretEmpty", err)
	}
}

func TestExpiresAt(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := Create(UserPayload{Username: "alice"}, testSecret, 8*time.Hour, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	exp, err := ExpiresAt(tok)
	if err != nil {
		t.Fatalf("ExpiresAt: %v", err)
	}
	if want := now.Add(8 * time.Hour); !exp.Equal(want) {
		t.Errorf("expiry = %v, want %v", exp, want)
	}
}
