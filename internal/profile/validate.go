package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failure kinds.
var (
	ErrMissingAddress         = errors.New("missing address")
	ErrInvalidPort            = errors.New("invalid port")
	ErrMissingPassword        = errors.New("missing password")
	ErrMissingBlacklistSource = errors.New("missing blacklist source")
	ErrInvalidOption          = errors.New("invalid option")
)

var issueCodes = map[error]string{
	ErrMissingAddress:         "MissingAddress",
	ErrInvalidPort:            "InvalidPort",
	ErrMissingPassword:        "MissingPassword",
	ErrMissingBlacklistSource: "MissingBlacklistSource",
	ErrInvalidOption:          "InvalidOption",
}

// Issue is one failed check.
type Issue struct {
	Kind    error  `json:"-"`
	Code    string `json:"code"`
	Option  string `json:"option"`
	Message string `json:"message"`
}

func newIssue(kind error, option, format string, args ...any) Issue {
	return Issue{
		Kind:    kind,
		Code:    issueCodes[kind],
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	}
}

// Result holds every failing check for one profile, in check order.
type Result struct {
	Target string  `json:"target"`
	Issues []Issue `json:"issues,omitempty"`
}

// OK reports whether all checks passed.
func (r *Result) OK() bool {
	return len(r.Issues) == 0
}

// Err returns nil for a passing result and a *ValidationError otherwise.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Target: r.Target, Issues: r.Issues}
}

// ValidationError aggregates all failed checks of a profile.
type ValidationError struct {
	Target string
	Issues []Issue
}

// Error implements error.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.Message
	}
	return fmt.Sprintf("profile %q is not usable: %s", e.Target, strings.Join(msgs, "; "))
}

// Unwrap exposes every failure kind to errors.Is.
func (e *ValidationError) Unwrap() []error {
	kinds := make([]error, len(e.Issues))
	for i, is := range e.Issues {
		kinds[i] = is.Kind
	}
	return kinds
}

// Validate checks that a profile carries what a connection attempt needs.
// It never stops at the first failure.
func Validate(e *Effective) *Result {
	res := &Result{Target: e.Target}
	add := func(is Issue) { res.Issues = append(res.Issues, is) }

	if e.Address() == "" {
		add(newIssue(ErrMissingAddress, OptAddress, "address is not set"))
	}

	if _, err := e.Port(); err != nil {
		add(newIssue(ErrInvalidPort, OptPort, "%v", err))
	}

	useKey, err := e.UseSSHKey()
	if err != nil {
		add(newIssue(ErrInvalidOption, OptUseSSHKey, "use_ssh_key: %v", err))
	}
	if !useKey && e.Password.Empty() {
		add(newIssue(ErrMissingPassword, OptPassword, "password is empty and use_ssh_key is off"))
	}

	if e.Blacklist() == "" {
		add(newIssue(ErrMissingBlacklistSource, OptBlacklist, "blacklist is not set"))
	}

	if _, err := e.Timeout(); err != nil {
		add(newIssue(ErrInvalidOption, OptTimeout, "%v", err))
	}
	for _, flag := range []string{OptDebug, OptVerbose} {
		if _, err := ParseBool(e.Options.Get(flag)); err != nil {
			add(newIssue(ErrInvalidOption, flag, "%s: %v", flag, err))
		}
	}

	// Parse errors quote the value; hide it when it embeds a secret.
	for i, is := range res.Issues {
		if e.Sensitive[is.Option] && (is.Kind == ErrInvalidPort || is.Kind == ErrInvalidOption) {
			res.Issues[i].Message = fmt.Sprintf("%s has an invalid value (hidden, it embeds a secret)", is.Option)
		}
	}

	return res
}
