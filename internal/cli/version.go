package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/version"
)

// newVersionCmd creates the version command.
func (cli *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print shunctl version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			writer := NewOutputWriter(cli.format(), cmd.OutOrStdout())
			return writer.Write(info, func(out io.Writer) {
				fmt.Fprintln(out, info.String())
			})
		},
	}
}
