package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/config"
	"github.com/xabinapal/shunctl/internal/credential"
	"github.com/xabinapal/shunctl/internal/engine"
	"github.com/xabinapal/shunctl/internal/hostkeys"
	"github.com/xabinapal/shunctl/internal/keyring"
	"github.com/xabinapal/shunctl/internal/notify"
	"github.com/xabinapal/shunctl/internal/profile"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status name.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the status icon for display.
func (s CheckStatus) Icon() string {
	switch s {
	case CheckOK:
		return "[OK]"
	case CheckWarning:
		return "[!!]"
	case CheckError:
		return "[XX]"
	case CheckSkipped:
		return "[--]"
	default:
		return "[??]"
	}
}

// MarshalJSON implements json.Marshaler.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DoctorOutput represents the doctor command output for JSON.
type DoctorOutput struct {
	Checks      []CheckResult `json:"checks"`
	HasErrors   bool          `json:"has_errors"`
	HasWarnings bool          `json:"has_warnings"`
}

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the configuration and every target",
		Long: `Run diagnostic checks over the whole setup without prompting:

  - configuration file validity
  - profile store syntax and load warnings
  - keyring availability
  - every target: expansion, credentials and validation
  - known_hosts pinning for targets that set ssh_known_hosts

Use --verbose for suggested fixes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			results := cli.runDiagnostics(ctx)

			output := DoctorOutput{Checks: results}
			for _, r := range results {
				switch r.Status {
				case CheckError:
					output.HasErrors = true
				case CheckWarning:
					output.HasWarnings = true
				}
			}

			writer := NewOutputWriter(cli.format(), cmd.OutOrStdout())
			writeErr := writer.Write(output, func(out io.Writer) {
				fmt.Fprintln(out, "shunctl diagnostics")
				fmt.Fprintln(out, "===================")
				fmt.Fprintln(out)

				for _, r := range results {
					fmt.Fprintf(out, "%s %s", r.Status.Icon(), r.Name)
					if r.Message != "" {
						fmt.Fprintf(out, ": %s", r.Message)
					}
					fmt.Fprintln(out)

					if (r.Status == CheckError || r.Status == CheckWarning) && r.Fix != "" && cli.verboseFlag {
						fmt.Fprintf(out, "      -> %s\n", r.Fix)
					}
				}

				fmt.Fprintln(out)
				switch {
				case output.HasErrors:
					fmt.Fprintln(out, "Some checks failed. Run with --verbose for suggested fixes.")
				case output.HasWarnings:
					fmt.Fprintln(out, "All critical checks passed with some warnings.")
				default:
					fmt.Fprintln(out, "All checks passed!")
				}
			})

			if writeErr != nil {
				return writeErr
			}
			if output.HasErrors {
				return errors.New("diagnostics failed")
			}
			return nil
		},
	}
}

func (cli *CLI) runDiagnostics(ctx context.Context) []CheckResult {
	results := []CheckResult{cli.checkConfigFile()}

	eng, storeResults := cli.checkProfileStore()
	results = append(results, storeResults...)

	results = append(results, cli.checkKeyring(eng))

	if eng != nil {
		results = append(results, cli.checkTargets(ctx, eng)...)
		results = append(results, cli.checkKnownHosts(eng)...)
	}

	return results
}

func (cli *CLI) checkConfigFile() CheckResult {
	path := cli.Config.FilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckOK,
			Message: "not found, using defaults",
		}
	}

	if _, err := config.LoadFrom(path); err != nil {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckError,
			Message: fmt.Sprintf("invalid: %v", err),
			Fix:     fmt.Sprintf("Fix or remove %s", path),
		}
	}

	return CheckResult{
		Name:    "Configuration file",
		Status:  CheckOK,
		Message: path,
	}
}

func (cli *CLI) checkProfileStore() (*engine.Engine, []CheckResult) {
	const name = "Profile store"

	// Diagnostics must never block on a prompt or raise desktop alerts.
	eng, err := cli.buildEngine(credential.NoPrompter(), notify.Nop())
	if err != nil {
		fix := "Correct the reported line"
		if errors.Is(err, os.ErrNotExist) {
			fix = "Run 'shunctl config init' or pass --profiles"
		}
		return nil, []CheckResult{{
			Name:    name,
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fix,
		}}
	}

	results := []CheckResult{{
		Name:    name,
		Status:  CheckOK,
		Message: fmt.Sprintf("%s (%d targets)", eng.Document().Source(), len(eng.Targets())),
	}}
	if len(eng.Targets()) == 0 {
		results[0].Status = CheckWarning
		results[0].Fix = "Add a [TargetName] section for each device"
	}
	for _, w := range eng.Document().Warnings() {
		results = append(results, CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: w,
			Fix:     "Use the canonical option name",
		})
	}
	return eng, results
}

// keyringInUse reports whether any credential could come from the keyring.
func (cli *CLI) keyringInUse(eng *engine.Engine) bool {
	if cli.Config.Credentials.Keyring {
		return true
	}
	if eng == nil {
		return false
	}
	for _, t := range eng.Targets() {
		res, err := eng.Resolve(t)
		if err == nil && strings.EqualFold(res.Values.Get(profile.OptCredentialStore), "keyring") {
			return true
		}
	}
	return false
}

func (cli *CLI) checkKeyring(eng *engine.Engine) CheckResult {
	inUse := cli.keyringInUse(eng)

	if err := cli.Keyring.IsAvailable(); err != nil {
		status := CheckWarning
		if inUse {
			status = CheckError
		}
		return CheckResult{
			Name:    "Keyring",
			Status:  status,
			Message: fmt.Sprintf("unavailable: %v", err),
			Fix:     "Install and configure a keyring service (gnome-keyring, kwallet, or macOS Keychain)",
		}
	}

	keyringType := "OS keyring"
	if _, ok := cli.Keyring.(*keyring.FileStore); ok {
		keyringType = "file-based (test mode)"
	}
	if !inUse {
		keyringType += ", not used by any target"
	}

	return CheckResult{
		Name:    "Keyring",
		Status:  CheckOK,
		Message: keyringType,
	}
}

func (cli *CLI) checkTargets(ctx context.Context, eng *engine.Engine) []CheckResult {
	var results []CheckResult

	for _, r := range eng.GetEffectiveProfiles(ctx, eng.Targets()) {
		name := "Target " + r.Target
		switch {
		case r.OK():
			r.Profile.Zero()
			results = append(results, CheckResult{Name: name, Status: CheckOK, Message: "usable"})
		case errors.Is(r.Err, credential.ErrMissingCredential):
			results = append(results, CheckResult{
				Name:    name,
				Status:  CheckWarning,
				Message: "credentials will be asked for at run time",
				Fix:     fmt.Sprintf("Run 'shunctl credential set %s' to store them in the keyring", r.Target),
			})
		default:
			results = append(results, CheckResult{
				Name:    name,
				Status:  CheckError,
				Message: r.Err.Error(),
				Fix:     fmt.Sprintf("Run 'shunctl show %s --origin' to inspect the resolved options", r.Target),
			})
		}
	}
	return results
}

func (cli *CLI) checkKnownHosts(eng *engine.Engine) []CheckResult {
	var results []CheckResult

	for _, t := range eng.Targets() {
		res, err := eng.Resolve(t)
		if err != nil {
			continue
		}
		path := config.ExpandHome(strings.TrimSpace(res.Values.Get(profile.OptKnownHosts)))
		if path == "" {
			continue
		}
		name := "Host key " + t
		if sensitive := res.Sensitive(); sensitive[profile.OptAddress] || sensitive[profile.OptKnownHosts] {
			results = append(results, CheckResult{Name: name, Status: CheckSkipped, Message: "address or ssh_known_hosts embeds a secret"})
			continue
		}
		address := strings.TrimSpace(res.Values.Get(profile.OptAddress))
		port, err := profile.ParsePort(res.Values.Get(profile.OptPort))
		if err != nil || address == "" {
			results = append(results, CheckResult{Name: name, Status: CheckSkipped, Message: "address or port not usable"})
			continue
		}

		found, err := hostkeys.Check(path, address, port)
		switch {
		case err == nil:
			results = append(results, CheckResult{
				Name:    name,
				Status:  CheckOK,
				Message: fmt.Sprintf("%s pinned (%s)", found.Host, strings.Join(found.KeyTypes, ", ")),
			})
		case errors.Is(err, hostkeys.ErrUnknownHost):
			results = append(results, CheckResult{
				Name:    name,
				Status:  CheckWarning,
				Message: err.Error(),
				Fix:     fmt.Sprintf("Run 'ssh-keyscan -p %d %s >> %s' after verifying the fingerprint", port, address, path),
			})
		default:
			results = append(results, CheckResult{
				Name:    name,
				Status:  CheckError,
				Message: err.Error(),
				Fix:     "Check the ssh_known_hosts path and file contents",
			})
		}
	}
	return results
}
