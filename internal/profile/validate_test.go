package profile

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/shunctl/internal/secret"
)

func validProfile() *Effective {
	return NewEffective("OtherASA", Values{
		"address":   "1.2.3.4",
		"port":      "22",
		"blacklist": "internal_blacklist",
	}, secret.FromString("testpassword"), secret.FromString("testpassword"))
}

func issueKinds(r *Result) []error {
	kinds := make([]error, 0, len(r.Issues))
	for _, is := range r.Issues {
		kinds = append(kinds, is.Kind)
	}
	return kinds
}

func TestValidateOK(t *testing.T) {
	res := Validate(validProfile())
	assert.True(t, res.OK())
	assert.NoError(t, res.Err())
}

func TestValidateInvalidPortDoesNotSkipChecks(t *testing.T) {
	e := validProfile()
	e.Options["port"] = "abc"
	delete(e.Options, "blacklist")

	res := Validate(e)
	require.False(t, res.OK())
	assert.Equal(t, []error{ErrInvalidPort, ErrMissingBlacklistSource}, issueKinds(res))
	assert.Equal(t, "InvalidPort", res.Issues[0].Code)
}

func TestValidatePortRange(t *testing.T) {
	for _, port := range []string{"0", "65536", "-1", "", " "} {
		e := validProfile()
		e.Options["port"] = port
		res := Validate(e)
		assert.Equal(t, []error{ErrInvalidPort}, issueKinds(res), "port %q", port)
	}
	for _, port := range []string{"1", "65535", " 22 "} {
		e := validProfile()
		e.Options["port"] = port
		assert.True(t, Validate(e).OK(), "port %q", port)
	}
}

func TestValidateReportsAllFailures(t *testing.T) {
	e := NewEffective("Broken", Values{"port": "abc"}, nil, nil)

	res := Validate(e)
	assert.Equal(t, []error{
		ErrMissingAddress,
		ErrInvalidPort,
		ErrMissingPassword,
		ErrMissingBlacklistSource,
	}, issueKinds(res))

	err := res.Err()
	require.Error(t, err)
	for _, kind := range []error{ErrMissingAddress, ErrInvalidPort, ErrMissingPassword, ErrMissingBlacklistSource} {
		assert.ErrorIs(t, err, kind)
	}

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Broken", verr.Target)
	assert.Len(t, verr.Issues, 4)
}

func TestValidateMissingPasswordWithMissingBlacklist(t *testing.T) {
	e := validProfile()
	e.Password = nil
	delete(e.Options, "blacklist")

	res := Validate(e)
	assert.Equal(t, []error{ErrMissingPassword, ErrMissingBlacklistSource}, issueKinds(res))
}

func TestValidateSSHKeySkipsPassword(t *testing.T) {
	e := validProfile()
	e.Password = nil
	e.Options["use_ssh_key"] = "yes"

	assert.True(t, Validate(e).OK())
}

func TestValidateInvalidOptions(t *testing.T) {
	e := validProfile()
	e.Options["use_ssh_key"] = "perhaps"
	e.Options["timeout"] = "soon"
	e.Options["debug"] = "loud"

	res := Validate(e)
	assert.Equal(t, []error{ErrInvalidOption, ErrInvalidOption, ErrInvalidOption}, issueKinds(res))
	assert.Equal(t, "use_ssh_key", res.Issues[0].Option)
	assert.Equal(t, "timeout", res.Issues[1].Option)
	assert.Equal(t, "debug", res.Issues[2].Option)
}

func TestNewEffectiveStripsSecrets(t *testing.T) {
	e := NewEffective("A", Values{
		"address":           "1.2.3.4",
		"password":          "plain",
		"enable_password":   "plain",
		"password_encoding": "base64",
	}, secret.FromString("plain"), nil)

	assert.Equal(t, Values{"address": "1.2.3.4"}, e.Options)
	assert.Equal(t, "plain", e.Password.Reveal())
}

func TestEffectiveAccessors(t *testing.T) {
	e := validProfile()
	e.Options["timeout"] = "30"
	e.Options["username"] = "admin"
	e.Options["ssh_known_hosts"] = " /etc/ssh/known_hosts "
	e.Options["verbose"] = "on"

	port, err := e.Port()
	require.NoError(t, err)
	assert.Equal(t, 22, port)

	timeout, err := e.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	verbose, err := e.Verbose()
	require.NoError(t, err)
	assert.True(t, verbose)

	assert.Equal(t, "admin", e.Username())
	assert.Equal(t, "/etc/ssh/known_hosts", e.KnownHostsPath())

	e.Zero()
	for _, b := range e.Password {
		assert.Zero(t, b)
	}
}

func TestEffectiveRedactsSensitiveOptions(t *testing.T) {
	e := NewEffective("A", Values{
		"address":   "1.2.3.4",
		"port":      "22",
		"blacklist": "b",
		"login":     "admin:testpassword",
		"timeout":   "testpassword",
	}, secret.FromString("testpassword"), nil, "login", "timeout")

	// Downstream code still sees the real value.
	assert.Equal(t, "admin:testpassword", e.Options.Get("login"))
	assert.Equal(t, secret.Redacted, e.Display("login"))
	assert.Equal(t, "1.2.3.4", e.Display("address"))

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "testpassword")
	assert.Contains(t, string(data), `"address":"1.2.3.4"`)

	res := Validate(e)
	require.Equal(t, []error{ErrInvalidOption}, issueKinds(res))
	assert.NotContains(t, res.Issues[0].Message, "testpassword")
	assert.NotContains(t, res.Err().Error(), "testpassword")
}
