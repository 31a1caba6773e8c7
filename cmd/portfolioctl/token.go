package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"soroban_portfolio/internal/app/bootstrap"
	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	submitFrom    string
	submitTimeout time.Duration
)

var balanceCmd = &cobra.Command{
	Use:   "balance <symbol|contract> <address>",
	Short: "Read one token balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(true)
		if err != nil {
			return err
		}
		bal, err := app.Portfolio.TokenBalance(cmd.Context(), args[1], args[0])
		if err != nil {
			return err
		}
		printKeyValues(cmd.OutOrStdout(), "Balance",
			"token", args[0],
			"address", styleAddress.Render(args[1]),
			"balance", styleValue.Render(bal.String()))
		return nil
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <symbol|contract> <owner> <spender>",
	Short: "Read how much spender may move on behalf of owner",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(true)
		if err != nil {
			return err
		}
		amount, err := app.Portfolio.Allowance(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		printKeyValues(cmd.OutOrStdout(), "Allowance",
			"token", args[0],
			"owner", styleAddress.Render(args[1]),
			"spender", styleAddress.Render(args[2]),
			"allowance", styleValue.Render(amount.String()))
		return nil
	},
}

var metadataCmd = &cobra.Command{
	Use:   "metadata <symbol|contract>",
	Short: "Show what a token contract reports about itself",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(true)
		if err != nil {
			return err
		}
		meta, err := app.Portfolio.TokenMetadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		d, err := app.Registry.Lookup(args[0])
		if err != nil {
			d, _ = app.Registry.LookupByAddress(args[0])
		}
		printKeyValues(cmd.OutOrStdout(), "Token",
			"name", meta.Name,
			"symbol", meta.Symbol,
			"decimals", strconv.FormatUint(uint64(meta.Decimals), 10),
			"contract", styleAddress.Render(d.Address))
		return nil
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <symbol|contract> <to> <amount>",
	Short: "Transfer tokens and wait for confirmation",
	Long: `Transfer tokens from the signer's account (or --from) to another address.

The amount is truncated to the token's precision. The command waits for the
transaction to be confirmed; on timeout the transaction hash is printed so the
outcome can be checked later.

Examples:
  portfolioctl transfer USDC GDEST... 10.5
  portfolioctl transfer XLM GDEST... 1 --timeout 2m`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("amount %q is not a decimal number", args[2])
		}
		app, err := buildApp(false)
		if err != nil {
			return err
		}
		from, err := sourceAddress(app)
		if err != nil {
			return err
		}
		ctx, cancel := submitContext(cmd.Context())
		defer cancel()

		res, err := app.Portfolio.Transfer(ctx, args[0], from, args[1], amount)
		if err != nil {
			return submitError(err)
		}
		printReceipt(cmd.OutOrStdout(), "transfer", res)
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <symbol|contract> <spender> <amount>",
	Short: "Approve a spender and wait for confirmation",
	Long: `Allow spender to move up to amount of the signer's tokens (or --from).

The approval expires after portfolio ledger.approveLedgerWindow ledgers.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("amount %q is not a decimal number", args[2])
		}
		app, err := buildApp(false)
		if err != nil {
			return err
		}
		owner, err := sourceAddress(app)
		if err != nil {
			return err
		}
		ctx, cancel := submitContext(cmd.Context())
		defer cancel()

		res, err := app.Portfolio.Approve(ctx, args[0], owner, args[1], amount)
		if err != nil {
			return submitError(err)
		}
		printReceipt(cmd.OutOrStdout(), "approve", res)
		return nil
	},
}

func sourceAddress(app *bootstrap.App) (string, error) {
	if submitFrom != "" {
		return submitFrom, nil
	}
	if app.Signer == nil {
		return "", fmt.Errorf("pass --from or configure a signer: %w", entity.ErrNoSignerConfigured)
	}
	return app.Signer.PublicKey(), nil
}

// submitContext applies --timeout; without it the gateway's confirmation deadline is used.
func submitContext(parent context.Context) (context.Context, context.CancelFunc) {
	if submitTimeout > 0 {
		return context.WithTimeout(parent, submitTimeout)
	}
	return context.WithCancel(parent)
}

func submitError(err error) error {
	var le *entity.LedgerError
	if errors.As(err, &le) && le.TxHash != "" && errors.Is(err, entity.ErrTimeout) {
		return fmt.Errorf("%w\ncheck the outcome later with the transaction hash %s", err, le.TxHash)
	}
	return err
}

func init() {
	for _, c := range []*cobra.Command{transferCmd, approveCmd} {
		c.Flags().StringVar(&submitFrom, "from", "", "source account (default: signer public key)")
		c.Flags().DurationVar(&submitTimeout, "timeout", 0, "confirmation deadline (default: ledger.confirmTimeoutSeconds)")
	}
}
