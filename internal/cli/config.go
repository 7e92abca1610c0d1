package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/config"
)

// sampleProfiles seeds a new profile store.
const sampleProfiles = `# shunctl profile store
#
# [DEFAULT] holds values shared by every target; a target section overrides
# them key by key. %(name)s expands to another option of the same target.

[DEFAULT]
port = 22
enable_password = %(password)s
blacklist = internal_blacklist

# [EdgeASA]
# address = 192.0.2.1
# password = base64:Y2hhbmdlbWU=
`

// configPathOutput represents config path output for JSON.
type configPathOutput struct {
	ConfigFile    string `json:"config_file"`
	ConfigDir     string `json:"config_dir"`
	DataDir       string `json:"data_dir"`
	ProfilesFile  string `json:"profiles_file"`
	LogFile       string `json:"log_file,omitempty"`
	ConfigExists  bool   `json:"config_exists"`
	ProfilesExist bool   `json:"profiles_exist"`
}

// newConfigCmd creates the config command group.
func (cli *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage shunctl configuration",
		Long: `Manage the shunctl configuration file and the profile store.

Use 'shunctl config init' to create both with defaults.
Use 'shunctl config path' to see where they live.
Use 'shunctl config edit' to open one of them in your editor.`,
	}

	cmd.AddCommand(
		cli.newConfigInitCmd(),
		cli.newConfigPathCmd(),
		cli.newConfigEditCmd(),
	)

	return cmd
}

// newConfigInitCmd creates the config init command.
func (cli *CLI) newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and a sample profile store",
		Long: `Write config.yaml with default settings and, when it does not exist yet,
a commented sample profile store. Existing files are kept unless --force
is given; the profile store is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if err := config.GetPaths().EnsureDirs(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}

			configPath := cli.Config.FilePath()
			if _, err := os.Stat(configPath); err == nil && !force {
				fmt.Fprintf(out, "Configuration already exists: %s\n", configPath)
			} else {
				if err := cli.Config.Save(); err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
				fmt.Fprintf(out, "Configuration saved to: %s\n", configPath)
			}

			created, err := writeSampleProfiles(cli.Config.ProfilesFile)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Sample profile store written to: %s\n", cli.Config.ProfilesFile)
			} else {
				fmt.Fprintf(out, "Profile store already exists: %s\n", cli.Config.ProfilesFile)
			}

			fmt.Fprintf(out, "\nNext steps:\n")
			fmt.Fprintf(out, "  1. Add a section per device to %s\n", cli.Config.ProfilesFile)
			fmt.Fprintf(out, "  2. Run 'shunctl validate --all' to check them\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.yaml")

	return cmd
}

// writeSampleProfiles creates path with the sample store unless it exists.
func writeSampleProfiles(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("failed to create profile store directory: %w", err)
	}

	// #nosec G304 - path is the operator-selected profile store
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create profile store: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, sampleProfiles); err != nil {
		return false, fmt.Errorf("failed to write profile store: %w", err)
	}
	return true, nil
}

// newConfigPathCmd creates the config path command.
func (cli *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := config.GetPaths()

			_, configErr := os.Stat(cli.Config.FilePath())
			_, profilesErr := os.Stat(cli.Config.ProfilesFile)
			output := configPathOutput{
				ConfigFile:    cli.Config.FilePath(),
				ConfigDir:     paths.ConfigDir,
				DataDir:       paths.DataDir,
				ProfilesFile:  cli.Config.ProfilesFile,
				LogFile:       config.ExpandHome(cli.Config.Log.File),
				ConfigExists:  configErr == nil,
				ProfilesExist: profilesErr == nil,
			}

			writer := NewOutputWriter(cli.format(), cmd.OutOrStdout())
			return writer.Write(output, func(out io.Writer) {
				fmt.Fprintln(out, "Configuration paths:")
				fmt.Fprintf(out, "  Config file:    %s%s\n", output.ConfigFile, missing(output.ConfigExists))
				fmt.Fprintf(out, "  Profile store:  %s%s\n", output.ProfilesFile, missing(output.ProfilesExist))
				fmt.Fprintf(out, "  Config dir:     %s\n", output.ConfigDir)
				fmt.Fprintf(out, "  Data dir:       %s\n", output.DataDir)
				if output.LogFile != "" {
					fmt.Fprintf(out, "  Log file:       %s\n", output.LogFile)
				}
			})
		},
	}
}

func missing(exists bool) string {
	if exists {
		return ""
	}
	return " (missing)"
}

// newConfigEditCmd creates the config edit command.
func (cli *CLI) newConfigEditCmd() *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration file or profile store in an editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := findEditor()
			if editor == "" {
				return fmt.Errorf("no editor found: set $EDITOR environment variable")
			}

			path := cli.Config.FilePath()
			if store {
				path = cli.Config.ProfilesFile
				if _, err := writeSampleProfiles(path); err != nil {
					return err
				}
			} else if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := cli.Config.Save(); err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
			}

			// #nosec G204 - editor comes from $EDITOR/$VISUAL, path from our own config
			editorCmd := exec.CommandContext(cmd.Context(), editor, path)
			editorCmd.Stdin = os.Stdin
			editorCmd.Stdout = os.Stdout
			editorCmd.Stderr = os.Stderr

			return editorCmd.Run()
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "Edit the profile store instead of config.yaml")

	return cmd
}

func findEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, e := range []string{"vim", "vi", "nano", "notepad"} {
		if _, err := exec.LookPath(e); err == nil {
			return e
		}
	}
	return ""
}
