package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"soroban_portfolio/internal/app/provider"

	"github.com/spf13/cobra"
	"github.com/stellar/go/keypair"
)

var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manage signing keys in the OS keyring",
	Long: `Store the secret seed used by the "keyring" signer type.

The file backend is encrypted with the password in $` + provider.KeyringPasswordEnv + `.`,
}

var keyringStoreCmd = &cobra.Command{
	Use:   "store-key [name]",
	Short: "Read a secret seed from stdin and store it",
	Long: `Read a secret seed (S...) from stdin and store it under name
(default: signer.keyringKey, else "default").

Example:
  echo "$SECRET" | portfolioctl keyring store-key trading`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && seed == "" {
			return fmt.Errorf("reading secret from stdin: %w", err)
		}
		seed = strings.TrimSpace(seed)
		kp, err := keypair.ParseFull(seed)
		if err != nil {
			return errors.New("stdin does not contain a valid secret seed")
		}

		ks, err := provider.OpenKeystore(cfg.Signer)
		if err != nil {
			return err
		}
		name := keyName(args)
		if err := ks.Store(name, seed); err != nil {
			return err
		}
		printKeyValues(cmd.OutOrStdout(), "Stored key",
			"name", name,
			"public key", styleAddress.Render(kp.Address()))
		return nil
	},
}

var keyringDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Remove a stored key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := provider.OpenKeystore(cfg.Signer)
		if err != nil {
			return err
		}
		name := keyName(args)
		if err := ks.Delete(name); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ deleted "+name))
		return nil
	},
}

func keyName(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return provider.KeyringKey(cfg.Signer)
}

func init() {
	keyringCmd.AddCommand(keyringStoreCmd, keyringDeleteCmd)
}
