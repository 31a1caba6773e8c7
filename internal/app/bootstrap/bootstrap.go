package bootstrap

import (
	"fmt"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/app/provider"
	"soroban_portfolio/internal/app/service"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/infrastructure/httpclient"
	clientprovider "soroban_portfolio/internal/infrastructure/network/client"
	networkdefinition "soroban_portfolio/internal/infrastructure/network/definition"
	"soroban_portfolio/internal/pkg/logger"
)

// App is the wired object graph shared by the server and the CLI.
type App struct {
	Networks  *networkdefinition.NetworkDefinitionProvider
	Signer    port.Signer
	Gateway   *clientprovider.SorobanGateway
	Registry  *provider.ContractRegistry
	Prices    port.TokenPriceService
	Invoker   *service.BatchInvoker
	Portfolio *service.PortfolioServiceImpl
}

// Options tweak Build for a single run.
type Options struct {
	// Network overrides cfg.Network.Active when set.
	Network string
	// ReadOnly skips signer construction.
	ReadOnly bool
}

// Build wires every service from cfg. The global logger must be initialized.
func Build(cfg *configloader.Config, appLogger port.Logger, opts Options) (*App, error) {
	networks := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Network.Networks)
	name := cfg.Network.Active
	if opts.Network != "" {
		name = opts.Network
	}
	active, err := networks.GetNetworkDefinitionByName(name)
	if err != nil {
		return nil, err
	}

	var signer port.Signer
	if !opts.ReadOnly {
		signer, err = provider.NewSigner(cfg.Signer, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize signer: %w", err)
		}
	}

	rpcFactory := clientprovider.NewRPCClientFactory(cfg.RPCClient, logger.Named("SorobanRPC"))
	gateway, err := clientprovider.NewSorobanGateway(active, rpcFactory, signer, cfg.Ledger, logger.Named("LedgerGateway"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger gateway: %w", err)
	}

	registry, err := provider.LoadContractRegistry(appLogger, cfg.Contracts, cfg.ContractsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract registry: %w", err)
	}

	var priceClient httpclient.PriceClient
	if cfg.CoinGecko.Enabled {
		priceClient = httpclient.NewCoinGeckoClient(
			cfg.CoinGecko.BaseURL,
			cfg.CoinGecko.APIKey,
			time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
			logger.Named("CoinGeckoClient"),
		)
	}
	prices := service.NewTokenPriceService(priceClient, appLogger, cfg)

	invoker := service.NewBatchInvoker(
		gateway,
		cfg.Portfolio.MaxConcurrentRequests,
		time.Duration(cfg.Portfolio.BalanceFetchTimeoutMs)*time.Millisecond,
		appLogger,
	)
	portfolio := service.NewPortfolioService(
		gateway,
		invoker,
		registry,
		prices,
		service.NewPortfolioState(),
		cfg.Ledger.ApproveLedgerWindow,
		appLogger,
	)

	return &App{
		Networks:  networks,
		Signer:    signer,
		Gateway:   gateway,
		Registry:  registry,
		Prices:    prices,
		Invoker:   invoker,
		Portfolio: portfolio,
	}, nil
}

// Symbols returns the registered token symbols in registration order.
func (a *App) Symbols() []string {
	descs := a.Registry.All()
	symbols := make([]string, len(descs))
	for i, d := range descs {
		symbols[i] = d.Symbol
	}
	return symbols
}
