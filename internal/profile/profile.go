// Package profile turns raw store sections into usable device profiles:
// default/target overlay, placeholder interpolation and validation.
package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Recognized option names.
const (
	OptAddress         = "address"
	OptPort            = "port"
	OptUsername        = "username"
	OptPassword        = "password"
	OptEnablePassword  = "enable_password"
	OptUseSSHKey       = "use_ssh_key"
	OptBlacklist       = "blacklist"
	OptKnownHosts      = "ssh_known_hosts"
	OptTimeout         = "timeout"
	OptDebug           = "debug"
	OptVerbose         = "verbose"
	OptCredentialStore = "credential_store"
)

// EncodingSuffix is appended to a secret option name to declare its encoding,
// e.g. password_encoding = base64.
const EncodingSuffix = "_encoding"

// SecretOptions lists the options acquired by the credential layer.
var SecretOptions = []string{OptPassword, OptEnablePassword}

// IsSecretOption reports whether key holds secret material or describes it.
func IsSecretOption(key string) bool {
	key = strings.ToLower(key)
	for _, s := range SecretOptions {
		if key == s || key == s+EncodingSuffix {
			return true
		}
	}
	return false
}

// Values is a flattened profile: option name to string value. Keys are
// lower-case. Before interpolation it is a resolved profile.
type Values map[string]string

// Get returns the value for key or "" when absent.
func (v Values) Get(key string) string {
	return v[strings.ToLower(key)]
}

// Lookup returns the value for key and whether it is present.
func (v Values) Lookup(key string) (string, bool) {
	val, ok := v[strings.ToLower(key)]
	return val, ok
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Keys returns option names in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseBool parses an option flag. It accepts 1/yes/true/on and
// 0/no/false/off in any case; an empty value is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "", "0", "no", "false", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
