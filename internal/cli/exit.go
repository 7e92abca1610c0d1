package cli

import (
	"errors"

	"github.com/xabinapal/shunctl/internal/config"
	"github.com/xabinapal/shunctl/internal/credential"
	"github.com/xabinapal/shunctl/internal/profile"
	"github.com/xabinapal/shunctl/internal/store"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitTarget     = 3
	ExitCredential = 4
	ExitProfile    = 5
)

// errorKinds maps failure kinds to their stable names and exit codes, most
// specific first.
var errorKinds = []struct {
	err  error
	code string
	exit int
}{
	{store.ErrMalformedConfig, "MalformedConfig", ExitConfig},
	{config.ErrInvalidConfig, "InvalidConfig", ExitConfig},
	{store.ErrUnknownTarget, "UnknownTarget", ExitTarget},
	{credential.ErrCredentialDecode, "CredentialDecodeError", ExitCredential},
	{credential.ErrMissingCredential, "MissingCredential", ExitCredential},
	{profile.ErrInterpolationCycle, "InterpolationCycle", ExitProfile},
	{profile.ErrUnresolvedReference, "UnresolvedReference", ExitProfile},
	{profile.ErrMissingAddress, "MissingAddress", ExitProfile},
	{profile.ErrInvalidPort, "InvalidPort", ExitProfile},
	{profile.ErrMissingPassword, "MissingPassword", ExitProfile},
	{profile.ErrMissingBlacklistSource, "MissingBlacklistSource", ExitProfile},
	{profile.ErrInvalidOption, "InvalidOption", ExitProfile},
	{errValidationFailed, "ValidationFailed", ExitProfile},
}

// ErrorCode returns the stable name of an error's kind, or "" when it is not
// one of the known kinds.
func ErrorCode(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return ""
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.exit
		}
	}
	return ExitFailure
}
