// Package credential acquires the secret fields of a resolved profile:
// embedded plaintext, encoded values, the OS keyring or an operator prompt.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xabinapal/shunctl/internal/profile"
)

var (
	// ErrCredentialDecode is returned when an encoded secret is malformed.
	ErrCredentialDecode = errors.New("credential decode error")
	// ErrMissingCredential is returned when a required secret could not be
	// obtained from any source.
	ErrMissingCredential = errors.New("missing credential")
)

// Spec tags how a secret field is obtained for a profile.
type Spec int

const (
	// SpecNone means the field is not required and was not acquired.
	SpecNone Spec = iota
	// SpecEmbedded is a plaintext value taken verbatim from the profile.
	SpecEmbedded
	// SpecEncoded is an encoded value decoded in memory.
	SpecEncoded
	// SpecKeyring is a value looked up in the operator's keyring.
	SpecKeyring
	// SpecPrompt is a value entered by the operator at run time.
	SpecPrompt
	// SpecSSHKey means key-based authentication replaces the password.
	SpecSSHKey
)

var specNames = map[Spec]string{
	SpecNone:     "none",
	SpecEmbedded: "embedded",
	SpecEncoded:  "encoded",
	SpecKeyring:  "keyring",
	SpecPrompt:   "prompt",
	SpecSSHKey:   "ssh-key",
}

func (s Spec) String() string {
	if name, ok := specNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Spec(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Spec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Base64Prefix marks an inline base64-encoded secret, e.g.
// password = base64:dGVzdHBhc3N3b3Jk.
const Base64Prefix = "base64:"

// Supported values of the <field>_encoding companion option.
const (
	EncodingBase64 = "base64"
	EncodingPlain  = "plain"
)

// InheritEncoding returns v with an encoding flag added for every secret
// field that declares none and whose raw value is only a placeholder for an
// option that does. With password_encoding = base64 and
// enable_password = %(password)s, both fields decode the same way. raw is
// the profile before interpolation; v is returned unchanged when nothing is
// inherited.
func InheritEncoding(raw, v profile.Values) profile.Values {
	out, cloned := v, false
	for _, field := range profile.SecretOptions {
		flag := field + profile.EncodingSuffix
		if _, ok := raw.Lookup(flag); ok {
			continue
		}
		enc, ok := referencedEncoding(raw, field)
		if !ok {
			continue
		}
		if !cloned {
			out, cloned = v.Clone(), true
		}
		out[flag] = enc
	}
	return out
}

// referencedEncoding follows bare placeholders from key to the first option
// carrying an encoding flag.
func referencedEncoding(raw profile.Values, key string) (string, bool) {
	seen := make(map[string]bool)
	for !seen[key] {
		seen[key] = true
		ref, ok := profile.BareReference(raw.Get(key))
		if !ok {
			return "", false
		}
		if enc, ok := raw.Lookup(ref + profile.EncodingSuffix); ok {
			return enc, true
		}
		key = ref
	}
	return "", false
}

// encoding returns the declared encoding of field: "base64" or "" for
// plaintext.
func encoding(v profile.Values, field string) (string, error) {
	value := v.Get(field)
	if strings.HasPrefix(value, Base64Prefix) {
		return EncodingBase64, nil
	}
	declared := strings.ToLower(strings.TrimSpace(v.Get(field + profile.EncodingSuffix)))
	switch declared {
	case "", EncodingPlain, "none":
		return "", nil
	case EncodingBase64:
		return EncodingBase64, nil
	default:
		return "", fmt.Errorf("%w: %s%s %q is not a supported encoding", ErrCredentialDecode, field, profile.EncodingSuffix, declared)
	}
}

// Classify applies the acquisition policy to one secret field without
// performing any I/O. useKeyring reports whether a keyring lookup is allowed
// for the profile. The result for an empty field is SpecKeyring or SpecPrompt;
// Provide falls back from the keyring to a prompt when nothing is stored.
func Classify(v profile.Values, field string, useKeyring bool) (Spec, error) {
	field = strings.ToLower(field)
	if field == profile.OptPassword && usesSSHKey(v) {
		return SpecSSHKey, nil
	}

	value, present := v.Lookup(field)
	if field != profile.OptPassword && !present {
		return SpecNone, nil
	}

	if value != "" {
		enc, err := encoding(v, field)
		if err != nil {
			return SpecNone, err
		}
		if enc == EncodingBase64 {
			return SpecEncoded, nil
		}
		return SpecEmbedded, nil
	}

	if useKeyring {
		return SpecKeyring, nil
	}
	return SpecPrompt, nil
}

// usesSSHKey reads use_ssh_key. An unparsable flag counts as false here; the
// validator reports it.
func usesSSHKey(v profile.Values) bool {
	on, err := profile.ParseBool(v.Get(profile.OptUseSSHKey))
	return err == nil && on
}

// keyringRequested reports whether the profile opts into keyring lookups.
func keyringRequested(v profile.Values) bool {
	return strings.EqualFold(strings.TrimSpace(v.Get(profile.OptCredentialStore)), "keyring")
}
