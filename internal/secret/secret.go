// Package secret holds credential material acquired for a single run.
package secret

import (
	"encoding/json"
	"fmt"
	"io"
)

// Redacted replaces secret values in every printed or encoded form.
const Redacted = "[SECRET]"

// Secret wraps sensitive bytes (passwords, enable secrets). Every formatting
// and encoding path is redacted so a Secret can travel through logs, errors
// and JSON output without revealing its value.
type Secret []byte

// FromString creates a Secret holding a copy of s.
func FromString(s string) Secret { return Secret([]byte(s)) }

// FromBytes creates a Secret holding a copy of b.
func FromBytes(b []byte) Secret {
	out := make([]byte, len(b))
	copy(out, b)
	return Secret(out)
}

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return Redacted }

// Format implements fmt.Formatter so that %v, %s, %q and %#v are redacted.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, Redacted)
}

// MarshalJSON redacts secrets in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(Redacted) }

// MarshalText redacts secrets for text encoders (YAML included).
func (s Secret) MarshalText() ([]byte, error) { return []byte(Redacted), nil }

// Empty reports whether no secret material is held.
func (s Secret) Empty() bool { return len(s) == 0 }

// Reveal returns the plaintext. It is meant for the hand-off to the
// consumer that actually authenticates, never for display.
func (s Secret) Reveal() string { return string(s) }

// Equal compares two secrets without exposing either.
func (s Secret) Equal(other Secret) bool {
	if len(s) != len(other) {
		return false
	}
	var diff byte
	for i := range s {
		diff |= s[i] ^ other[i]
	}
	return diff == 0
}

// Zero overwrites the underlying bytes.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}
