package main

import (
	"fmt"
	"os"

	"soroban_portfolio/internal/app/bootstrap"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/pkg/logger"
	"soroban_portfolio/internal/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	network string
	verbose bool
	cfg     *configloader.Config
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Operate a Soroban token portfolio from the terminal",
	Long: `portfolioctl reads balances from Soroban token contracts, aggregates them
into a portfolio and submits transfers and approvals.

Configuration is read from --config (default: $CONFIG_PATH or config/config.yml).
Use --network to target another network for a single invocation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = configloader.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		if _, err := logger.Init(level, true); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", utils.GetEnv("CONFIG_PATH", "config/config.yml"), "config file")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "", "network name (overrides network.active)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		portfolioCmd,
		balanceCmd,
		allowanceCmd,
		metadataCmd,
		transferCmd,
		approveCmd,
		accountCmd,
		networkCmd,
		keyringCmd,
	)
}

// buildApp wires the services. readOnly skips the signer.
func buildApp(readOnly bool) (*bootstrap.App, error) {
	return bootstrap.Build(cfg, logger.NewSlogAdapter(), bootstrap.Options{Network: network, ReadOnly: readOnly})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
