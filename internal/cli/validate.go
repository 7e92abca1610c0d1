package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/profile"
)

// errValidationFailed is returned when at least one target is not usable.
var errValidationFailed = errors.New("one or more targets failed validation")

// TargetValidation is the outcome for one target.
type TargetValidation struct {
	Target  string            `json:"target"`
	Valid   bool              `json:"valid"`
	Code    string            `json:"code,omitempty"`
	Error   string            `json:"error,omitempty"`
	Issues  []profile.Issue   `json:"issues,omitempty"`
	Sources map[string]string `json:"credential_sources,omitempty"`
}

// ValidateOutput represents validate output for JSON.
type ValidateOutput struct {
	Valid   bool               `json:"valid"`
	Targets []TargetValidation `json:"targets"`
}

// newValidateCmd creates the validate command.
func (cli *CLI) newValidateCmd() *cobra.Command {
	var all, noPrompt bool

	cmd := &cobra.Command{
		Use:   "validate [targets...]",
		Short: "Check that targets resolve to usable profiles",
		Long: `Run the full resolution pipeline for one or more targets: overlay,
placeholder expansion, credential acquisition and validation. Every failing
check of a target is reported, not only the first.

Targets are resolved concurrently. Use --no-prompt in batch jobs so that a
missing credential is reported instead of asked for.

Examples:
  shunctl validate OtherASA
  shunctl validate --all --no-prompt -o json`,
		ValidArgsFunction: cli.completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all cannot be combined with target names")
			}

			eng, err := cli.openEngine(cmd, noPrompt)
			if err != nil {
				return err
			}

			targets := args
			switch {
			case all:
				targets = eng.Targets()
			case len(targets) == 0:
				target, err := cli.target(nil)
				if err != nil {
					return err
				}
				targets = []string{target}
			}

			reports := eng.GetEffectiveProfiles(cmd.Context(), targets)

			output := ValidateOutput{Valid: true, Targets: make([]TargetValidation, 0, len(reports))}
			for _, r := range reports {
				tv := TargetValidation{Target: r.Target, Valid: r.OK()}
				if r.OK() {
					tv.Sources = r.Profile.Sources
					r.Profile.Zero()
				} else {
					output.Valid = false
					tv.Code = ErrorCode(r.Err)
					var verr *profile.ValidationError
					if errors.As(r.Err, &verr) {
						tv.Issues = verr.Issues
					} else {
						tv.Error = r.Err.Error()
					}
				}
				output.Targets = append(output.Targets, tv)
			}

			writer := NewOutputWriter(cli.format(), cmd.OutOrStdout())
			if err := writer.Write(output, func(out io.Writer) { writeValidation(out, output) }); err != nil {
				return err
			}

			if !output.Valid {
				if len(reports) == 1 {
					return reports[0].Err
				}
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Validate every target in the profile store")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Never ask for credentials; report them as missing")

	return cmd
}

func writeValidation(out io.Writer, output ValidateOutput) {
	failed := 0
	for _, tv := range output.Targets {
		if tv.Valid {
			fmt.Fprintf(out, "[OK] %s\n", tv.Target)
			continue
		}
		failed++
		fmt.Fprintf(out, "[XX] %s\n", tv.Target)
		if tv.Error != "" {
			fmt.Fprintf(out, "      %s: %s\n", orDefault(tv.Code, "Error"), tv.Error)
		}
		for _, is := range tv.Issues {
			fmt.Fprintf(out, "      %s: %s\n", is.Code, is.Message)
		}
	}

	fmt.Fprintln(out)
	if failed == 0 {
		fmt.Fprintf(out, "%d target(s) valid.\n", len(output.Targets))
	} else {
		fmt.Fprintf(out, "%d of %d target(s) failed.\n", failed, len(output.Targets))
	}
}
