// Package capability implements the shareable contract token: an
// unguessable string whose possession alone authorizes viewing and
// signing a contract. Because the raw value is a credential, the type
// redacts itself in logs and JSON; code that genuinely needs the raw
// value must call Raw.
package capability

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Capability is a 256-bit random token rendered as 64 hex characters,
// safe for use as a URL path segment without escaping.
type Capability string

// TokenLen is the length of the hex form.
const TokenLen = 64

const randBytes = 32

// reader is swapped in tests to simulate randomness failure.
var reader io.Reader = rand.Reader

// ErrRandomness means the system randomness source failed repeatedly.
// There is no weaker fallback; contract creation must fail.
var ErrRandomness = errors.New("capability: randomness source unavailable")

// New generates a fresh capability. The randomness source is retried a
// small bounded number of times before giving up.
func New() (Capability, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		buf := make([]byte, randBytes)
		if _, err := io.ReadFull(reader, buf); err != nil {
			lastErr = err
			continue
		}
		return Capability(hex.EncodeToString(buf)), nil
	}
	return "", fmt.Errorf("%w: %v", ErrRandomness, lastErr)
}

// Parse validates an incoming path segment. It is deliberately loose:
// a malformed token is treated the same as an unknown one by callers,
// so enumeration attempts cannot distinguish format errors from misses.
func Parse(s string) Capability { return Capability(s) }

// Raw returns the raw token string for persistence and URL building.
func (c Capability) Raw() string { return string(c) }

// IsZero reports whether the capability is unset.
func (c Capability) IsZero() bool { return c == "" }

// String implements fmt.Stringer with a redacted rendering so that
// accidental logging never leaks the credential.
func (c Capability) String() string {
	if c == "" {
		return "capability()"
	}
	return "capability(" + string(c[:4]) + "…)"
}

// MarshalJSON redacts the token. API responses that must expose it
// (the admin create response) build the shareable URL from Raw instead
// of serializing the field.
func (c Capability) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}
