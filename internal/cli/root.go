// Package cli provides the command-line interface for shunctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/config"
	"github.com/xabinapal/shunctl/internal/credential"
	"github.com/xabinapal/shunctl/internal/engine"
	"github.com/xabinapal/shunctl/internal/keyring"
	"github.com/xabinapal/shunctl/internal/logging"
	"github.com/xabinapal/shunctl/internal/notify"
	"github.com/xabinapal/shunctl/internal/utils"
)

// errNoTarget is returned when neither an argument, --target nor the
// configuration names a target.
var errNoTarget = errors.New("no target given: pass a target name, use --target, or set default_target")

// CLI holds the application state for the CLI.
type CLI struct {
	Config   *config.Config
	Keyring  keyring.Store
	Logger   *logging.Logger
	Notifier notify.Notifier
	// Prompter overrides the terminal prompter (tests).
	Prompter credential.Prompter

	rootCmd *cobra.Command
	in      io.Reader

	// Flags
	profilesFlag string
	targetFlag   string
	outputFlag   string
	verboseFlag  bool
	debugFlag    bool
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{
		Keyring: keyring.DefaultStore(),
		in:      os.Stdin,
	}

	cli.rootCmd = &cobra.Command{
		Use:   "shunctl [command]",
		Short: "shunctl - firewall shun profile resolver",
		Long: `shunctl reads the device profile store used by shun automation jobs,
resolves each target against the [DEFAULT] section, expands %(name)s
placeholders, acquires credentials and checks that every profile is usable.

Credentials are taken from the profile (plain or base64), from the OS
keyring, or asked for on the terminal. They are never printed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize(cmd)
		},
	}

	cli.rootCmd.PersistentFlags().StringVarP(&cli.profilesFlag, "profiles", "f", "", "Path to the profile store")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.targetFlag, "target", "t", "", "Target to operate on")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.outputFlag, "output", "o", "text", "Output format (text, json)")
	cli.rootCmd.PersistentFlags().BoolVarP(&cli.verboseFlag, "verbose", "v", false, "Log informational messages")
	cli.rootCmd.PersistentFlags().BoolVar(&cli.debugFlag, "debug", false, "Log resolution details")

	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newTargetsCmd(),
		cli.newShowCmd(),
		cli.newValidateCmd(),
		cli.newCredentialCmd(),
		cli.newDoctorCmd(),
		cli.newConfigCmd(),
		cli.newVersionCmd(),
		cli.newCompletionCmd(),
	)
}

// initialize loads configuration and sets up logging and notifications.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	// Completion scripts must generate even with a broken configuration.
	if cmd.Name() == "completion" {
		return nil
	}

	if _, err := ParseOutputFormat(cli.outputFlag); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cli.Config = cfg

	if cli.profilesFlag != "" {
		cli.Config.ProfilesFile = config.ExpandHome(cli.profilesFlag)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	switch {
	case cli.debugFlag:
		level = logging.LevelDebug
	case cli.verboseFlag && level > logging.LevelInfo:
		level = logging.LevelInfo
	}

	logger, err := logging.New(logging.Options{
		Level:    level,
		FilePath: config.ExpandHome(cfg.Log.File),
		JSON:     cfg.Log.JSON,
		MaxSize:  int64(cfg.Log.MaxSize) * 1024 * 1024,
		Writer:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	cli.Logger = logger

	if cli.Notifier == nil {
		cli.Notifier = notify.New(cfg.Notifications)
	}
	return nil
}

// Execute runs the CLI.
func (cli *CLI) Execute(ctx context.Context) error {
	defer func() { _ = cli.Logger.Close() }()
	return cli.rootCmd.ExecuteContext(ctx)
}

// format returns the validated output format.
func (cli *CLI) format() OutputFormat {
	f, _ := ParseOutputFormat(cli.outputFlag)
	return f
}

// target picks the target from args, --target or default_target, in that
// order.
func (cli *CLI) target(args []string) (string, error) {
	var name string
	switch {
	case len(args) > 0:
		name = args[0]
	case cli.targetFlag != "":
		name = cli.targetFlag
	case cli.Config != nil && cli.Config.DefaultTarget != "":
		name = cli.Config.DefaultTarget
	default:
		return "", errNoTarget
	}
	if !utils.IsValidTargetName(name) {
		return "", fmt.Errorf("invalid target name %q", name)
	}
	return name, nil
}

// prompter returns the prompter for this invocation.
func (cli *CLI) prompter(cmd *cobra.Command, noPrompt bool) credential.Prompter {
	if noPrompt || !cli.Config.Credentials.Prompt {
		return credential.NoPrompter()
	}
	if cli.Prompter != nil {
		return cli.Prompter
	}
	return credential.NewTerminalPrompter(cli.in, cmd.ErrOrStderr())
}

// openEngine loads the profile store and wires the credential provider.
func (cli *CLI) openEngine(cmd *cobra.Command, noPrompt bool) (*engine.Engine, error) {
	return cli.buildEngine(cli.prompter(cmd, noPrompt), cli.Notifier)
}

func (cli *CLI) buildEngine(prompter credential.Prompter, notifier notify.Notifier) (*engine.Engine, error) {
	provider := credential.NewProvider(
		credential.WithKeyring(cli.Keyring),
		credential.WithKeyringForAll(cli.Config.Credentials.Keyring),
		credential.WithPrompter(prompter),
		credential.WithNotifier(notifier),
		credential.WithLogger(cli.Logger),
	)

	return engine.Open(cli.Config.ProfilesFile,
		engine.WithProvider(provider),
		engine.WithLogger(cli.Logger),
		engine.WithNotifier(notifier),
	)
}
