package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/profile"
	"github.com/xabinapal/shunctl/internal/secret"
)

const redacted = secret.Redacted

// ShowOption is one resolved option as displayed by show.
type ShowOption struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Origin string `json:"origin,omitempty"`
}

// ShowOutput represents show output for JSON.
type ShowOutput struct {
	Target  string       `json:"target"`
	Options []ShowOption `json:"options"`
}

// newShowCmd creates the show command.
func (cli *CLI) newShowCmd() *cobra.Command {
	var origin, effective bool

	cmd := &cobra.Command{
		Use:   "show [target]",
		Short: "Show the resolved options of a target",
		Long: `Show a target's options after the [DEFAULT] overlay and placeholder
expansion. Secret options, and options whose values are built from them,
are always redacted.

With --effective the full pipeline runs, including credential acquisition
and validation, exactly as an automation job would see it.

Examples:
  shunctl show OtherASA
  shunctl show OtherASA --origin
  shunctl show -t OtherASA --effective -o json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cli.completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := cli.target(args)
			if err != nil {
				return err
			}

			eng, err := cli.openEngine(cmd, false)
			if err != nil {
				return err
			}
			writer := NewOutputWriter(cli.format(), cmd.OutOrStdout())

			if effective {
				eff, err := eng.GetEffectiveProfile(cmd.Context(), target)
				if err != nil {
					return err
				}
				defer eff.Zero()
				return writer.Write(eff, func(out io.Writer) { writeEffective(out, eff) })
			}

			res, err := eng.Resolve(target)
			if err != nil {
				return err
			}

			sensitive := res.Sensitive()
			output := ShowOutput{Target: target}
			for _, k := range res.Values.Keys() {
				opt := ShowOption{Name: k, Value: res.Values[k]}
				if (sensitive[k] || profile.IsSecretOption(k) && !isEncodingOption(k)) && opt.Value != "" {
					opt.Value = redacted
				}
				if origin {
					opt.Origin = res.Origin[k].String()
				}
				output.Options = append(output.Options, opt)
			}

			return writer.Write(output, func(out io.Writer) {
				fmt.Fprintf(out, "[%s]\n", target)
				w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
				for _, opt := range output.Options {
					if origin {
						fmt.Fprintf(w, "%s\t= %s\t(%s)\n", opt.Name, opt.Value, opt.Origin)
					} else {
						fmt.Fprintf(w, "%s\t= %s\n", opt.Name, opt.Value)
					}
				}
				_ = w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&origin, "origin", false, "Show whether each value comes from [DEFAULT] or the target")
	cmd.Flags().BoolVar(&effective, "effective", false, "Acquire credentials and validate")

	return cmd
}

func isEncodingOption(k string) bool {
	for _, s := range profile.SecretOptions {
		if k == s+profile.EncodingSuffix {
			return true
		}
	}
	return false
}

func writeEffective(out io.Writer, eff *profile.Effective) {
	fmt.Fprintf(out, "[%s]\n", eff.Target)
	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	for _, k := range eff.Options.Keys() {
		fmt.Fprintf(w, "%s\t= %s\n", k, eff.Display(k))
	}
	for _, field := range profile.SecretOptions {
		source := eff.Sources[field]
		if source == "" || source == "none" || source == "ssh-key" {
			fmt.Fprintf(w, "%s\t(%s)\n", field, orDefault(source, "none"))
			continue
		}
		fmt.Fprintf(w, "%s\t= %s (%s)\n", field, redacted, source)
	}
	_ = w.Flush()
	fmt.Fprintln(out, "\nProfile is valid.")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// completeTargets offers target names from the profile store.
func (cli *CLI) completeTargets(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cli.Config == nil {
		if err := cli.initialize(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
	eng, err := cli.openEngine(cmd, true)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return eng.Targets(), cobra.ShellCompDirectiveNoFileComp
}
