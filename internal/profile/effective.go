package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xabinapal/shunctl/internal/secret"
)

// Effective is a fully interpolated profile with credentials materialized.
// It is built per run and must not be cached across runs.
type Effective struct {
	Target string `json:"target"`
	// Options holds every non-secret option after interpolation.
	Options Values `json:"options"`
	// Password is empty when key-based authentication is selected.
	Password       secret.Secret `json:"password,omitempty"`
	EnablePassword secret.Secret `json:"enable_password,omitempty"`
	// Sources names how each secret field was obtained.
	Sources map[string]string `json:"credential_sources,omitempty"`
	// Sensitive marks options whose values embed secret material, such as
	// login = admin:%(password)s. They stay usable in Options but are
	// redacted whenever the profile is displayed or encoded.
	Sensitive map[string]bool `json:"-"`
}

// NewEffective builds an effective profile from interpolated values and
// acquired secrets. Secret options are removed from Options; sensitive
// names options derived from them.
func NewEffective(target string, v Values, password, enablePassword secret.Secret, sensitive ...string) *Effective {
	opts := make(Values, len(v))
	for k, val := range v {
		if IsSecretOption(k) {
			continue
		}
		opts[k] = val
	}
	marked := make(map[string]bool, len(sensitive))
	for _, k := range sensitive {
		marked[strings.ToLower(k)] = true
	}
	return &Effective{
		Target:         target,
		Options:        opts,
		Password:       password,
		EnablePassword: enablePassword,
		Sources:        map[string]string{},
		Sensitive:      marked,
	}
}

// Display returns an option value fit for output.
func (e *Effective) Display(key string) string {
	key = strings.ToLower(key)
	if e.Sensitive[key] {
		return secret.Redacted
	}
	return e.Options[key]
}

// MarshalJSON encodes the profile with secrets and sensitive options
// redacted.
func (e Effective) MarshalJSON() ([]byte, error) {
	type plain Effective
	out := plain(e)
	out.Options = make(Values, len(e.Options))
	for k := range e.Options {
		out.Options[k] = e.Display(k)
	}
	return json.Marshal(out)
}

// Address returns the device management address.
func (e *Effective) Address() string {
	return strings.TrimSpace(e.Options.Get(OptAddress))
}

// Port parses the management port.
func (e *Effective) Port() (int, error) {
	return ParsePort(e.Options.Get(OptPort))
}

// Username returns the login name, empty when it is acquired downstream.
func (e *Effective) Username() string {
	return e.Options.Get(OptUsername)
}

// UseSSHKey reports whether key-based authentication is selected.
func (e *Effective) UseSSHKey() (bool, error) {
	return ParseBool(e.Options.Get(OptUseSSHKey))
}

// Blacklist returns the blacklist source identifier.
func (e *Effective) Blacklist() string {
	return strings.TrimSpace(e.Options.Get(OptBlacklist))
}

// KnownHostsPath returns the configured known_hosts path, if any.
func (e *Effective) KnownHostsPath() string {
	return strings.TrimSpace(e.Options.Get(OptKnownHosts))
}

// Timeout returns the session timeout, zero when unset.
func (e *Effective) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(e.Options.Get(OptTimeout))
	if raw == "" {
		return 0, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be a non-negative number of seconds", raw)
	}
	return time.Duration(secs) * time.Second, nil
}

// Debug reports the downstream debug flag.
func (e *Effective) Debug() (bool, error) {
	return ParseBool(e.Options.Get(OptDebug))
}

// Verbose reports the downstream verbose flag.
func (e *Effective) Verbose() (bool, error) {
	return ParseBool(e.Options.Get(OptVerbose))
}

// Zero wipes the secret material held by the profile.
func (e *Effective) Zero() {
	e.Password.Zero()
	e.EnablePassword.Zero()
}

// ParsePort parses a TCP port in [1, 65535].
func ParsePort(s string) (int, error) {
	raw := strings.TrimSpace(s)
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("port %q is not an integer", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d is out of range 1-65535", port)
	}
	return port, nil
}
