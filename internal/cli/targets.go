package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/profile"
)

// TargetSummary represents one target in the targets listing.
type TargetSummary struct {
	Name      string `json:"name"`
	Default   bool   `json:"default,omitempty"`
	Address   string `json:"address,omitempty"`
	Port      string `json:"port,omitempty"`
	Blacklist string `json:"blacklist,omitempty"`
	Error     string `json:"error,omitempty"`
}

// newTargetsCmd creates the targets command.
func (cli *CLI) newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "targets",
		Aliases: []string{"ls", "list"},
		Short:   "List the targets declared in the profile store",
		Long: `List every target section of the profile store in file order, with
its resolved address, port and blacklist source. Credentials are not
acquired, so this never prompts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := cli.openEngine(cmd, true)
			if err != nil {
				return err
			}

			summaries := make([]TargetSummary, 0, len(eng.Targets()))
			for _, name := range eng.Targets() {
				s := TargetSummary{Name: name, Default: name == cli.Config.DefaultTarget}
				res, err := eng.Resolve(name)
				if err != nil {
					s.Error = err.Error()
				} else {
					sensitive := res.Sensitive()
					shown := func(key string) string {
						if sensitive[key] {
							return redacted
						}
						return res.Values.Get(key)
					}
					s.Address = shown(profile.OptAddress)
					s.Port = shown(profile.OptPort)
					s.Blacklist = shown(profile.OptBlacklist)
				}
				summaries = append(summaries, s)
			}

			writer := NewOutputWriter(cli.format(), cmd.OutOrStdout())
			return writer.Write(summaries, func(out io.Writer) {
				if len(summaries) == 0 {
					fmt.Fprintf(out, "No targets in %s\n", eng.Document().Source())
					return
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TARGET\tADDRESS\tPORT\tBLACKLIST")
				for _, s := range summaries {
					name := s.Name
					if s.Default {
						name = "* " + name
					}
					if s.Error != "" {
						fmt.Fprintf(w, "%s\t(error: %s)\t\t\n", name, s.Error)
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.Address, s.Port, s.Blacklist)
				}
				_ = w.Flush()
			})
		},
	}
}
