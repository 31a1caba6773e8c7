package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soroban_portfolio/internal/infrastructure/walletloader"
	"soroban_portfolio/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	portfolioWatchlist string
	portfolioNoPrices  bool
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio [address...]",
	Short: "Aggregate token balances into a portfolio",
	Long: `Read the balance of each address in every registered token contract and
print the aggregated portfolio.

Addresses come from the arguments, else from --watchlist, else from
portfolioService.walletAddress in the config.

Examples:
  portfolioctl portfolio GABC...
  portfolioctl portfolio --watchlist data/watchlist.txt
  portfolioctl portfolio GABC... --network mainnet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses, err := portfolioAddresses(args)
		if err != nil {
			return err
		}
		if len(addresses) == 0 {
			return errors.New("watchlist contains no valid address")
		}

		app, err := buildApp(true)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if !portfolioNoPrices {
			priceCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := app.Prices.LoadAndCacheTokenPrices(priceCtx, app.Symbols()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleWarning.Render("⚠ live prices unavailable: "+err.Error()))
			}
			cancel()
		}

		var failed int
		for _, address := range addresses {
			snap, err := app.Portfolio.LoadPortfolio(ctx, address)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", styleWarning.Render("✗"), shortAddress(address), err)
				continue
			}
			printPortfolio(cmd.OutOrStdout(), snap)
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if failed == len(addresses) {
			return fmt.Errorf("no portfolio could be loaded")
		}
		return nil
	},
}

func portfolioAddresses(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	path := portfolioWatchlist
	if path == "" {
		path = cfg.Portfolio.WatchlistFile
	}
	if path != "" {
		return walletloader.NewWatchlistLoader(path, logger.NewSlogAdapter()).Addresses()
	}
	if cfg.Portfolio.WalletAddress != "" {
		return []string{cfg.Portfolio.WalletAddress}, nil
	}
	return nil, errors.New("no address given: pass one, use --watchlist or set portfolioService.walletAddress")
}

func init() {
	portfolioCmd.Flags().StringVar(&portfolioWatchlist, "watchlist", "", "file with one address per line")
	portfolioCmd.Flags().BoolVar(&portfolioNoPrices, "no-prices", false, "skip the live price refresh")
}
