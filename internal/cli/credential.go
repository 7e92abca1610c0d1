package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xabinapal/shunctl/internal/credential"
	"github.com/xabinapal/shunctl/internal/profile"
	"github.com/xabinapal/shunctl/internal/store"
)

// newCredentialCmd creates the credential command group.
func (cli *CLI) newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage target secrets stored in the OS keyring",
		Long: `Store or remove target secrets in the OS keyring.

A stored secret is used for targets that set credential_store = keyring,
or for every target when credentials.keyring is enabled in config.yaml,
whenever the profile itself leaves the field empty.`,
	}

	cmd.AddCommand(
		cli.newCredentialSetCmd(),
		cli.newCredentialDeleteCmd(),
	)

	return cmd
}

// credentialField validates the --field flag.
func credentialField(field string) (string, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	for _, f := range profile.SecretOptions {
		if field == f {
			return field, nil
		}
	}
	return "", fmt.Errorf("invalid field %q: must be one of %s", field, strings.Join(profile.SecretOptions, ", "))
}

// knownTarget fails with ErrUnknownTarget unless the store declares target.
func (cli *CLI) knownTarget(cmd *cobra.Command, target string) error {
	eng, err := cli.openEngine(cmd, true)
	if err != nil {
		return err
	}
	if !eng.Document().HasTarget(target) {
		return fmt.Errorf("%w: %q is not declared in %s", store.ErrUnknownTarget, target, eng.Document().Source())
	}
	return nil
}

// newCredentialSetCmd creates the credential set command.
func (cli *CLI) newCredentialSetCmd() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "set [target]",
		Short: "Store a target secret in the OS keyring",
		Example: `  shunctl credential set CoreASA
  shunctl credential set CoreASA --field enable_password`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cli.completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := cli.target(args)
			if err != nil {
				return err
			}
			name, err := credentialField(field)
			if err != nil {
				return err
			}
			if err := cli.knownTarget(cmd, target); err != nil {
				return err
			}

			prompter := cli.Prompter
			if prompter == nil {
				prompter = credential.NewTerminalPrompter(cli.in, cmd.ErrOrStderr())
			}
			value, err := prompter.Prompt(cmd.Context(), credential.Request{Target: target, Field: name})
			if err != nil {
				return err
			}
			defer value.Zero()
			if value.Empty() {
				return fmt.Errorf("%w: empty %s for %q", credential.ErrMissingCredential, name, target)
			}

			if err := cli.Keyring.Set(target, name, value.Reveal()); err != nil {
				return fmt.Errorf("failed to store %s for %q: %w", name, target, err)
			}
			cli.Logger.Info("credential stored", "target", target, "field", name)

			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s for %s in the keyring.\n", name, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", profile.OptPassword, "Secret field (password, enable_password)")

	return cmd
}

// newCredentialDeleteCmd creates the credential delete command.
func (cli *CLI) newCredentialDeleteCmd() *cobra.Command {
	var field string
	var all bool

	cmd := &cobra.Command{
		Use:               "delete [target]",
		Aliases:           []string{"rm"},
		Short:             "Remove a target secret from the OS keyring",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cli.completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := cli.target(args)
			if err != nil {
				return err
			}

			fields := profile.SecretOptions
			if !all {
				f, err := credentialField(field)
				if err != nil {
					return err
				}
				fields = []string{f}
			}

			var errs []error
			for _, f := range fields {
				if err := cli.Keyring.Delete(target, f); err != nil {
					errs = append(errs, fmt.Errorf("failed to delete %s for %q: %w", f, target, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s for %s from the keyring.\n", f, target)
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&field, "field", profile.OptPassword, "Secret field (password, enable_password)")
	cmd.Flags().BoolVar(&all, "all", false, "Remove every secret field of the target")

	return cmd
}
