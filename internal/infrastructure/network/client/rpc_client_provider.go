package client

import (
	"fmt"
	"sync"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/infrastructure/configloader"
)

// rpcClientProvider caches one RPC client per network so switching back and
// forth between networks reuses connections.
type rpcClientProvider struct {
	clients map[string]port.SorobanRPC
	mu      sync.Mutex
	cfg     configloader.RPCClientConfig
	logger  port.Logger
}

// NewRPCClientFactory returns a port.SorobanRPCFactory backed by cached RPCClients.
func NewRPCClientFactory(cfg configloader.RPCClientConfig, logger port.Logger) port.SorobanRPCFactory {
	p := &rpcClientProvider{
		clients: make(map[string]port.SorobanRPC),
		cfg:     cfg,
		logger:  logger,
	}
	return p.GetClient
}

// GetClient returns the cached client for the network or creates one.
// Clients are keyed by name and URL so a redefined network gets a fresh client.
func (p *rpcClientProvider) GetClient(netCfg entity.NetworkConfig) (port.SorobanRPC, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := netCfg.Name + "|" + netCfg.RPCURL
	if c, ok := p.clients[key]; ok {
		p.logger.Debug("Returning cached RPC client", "network", netCfg.Name)
		return c, nil
	}

	p.logger.Info("Creating new RPC client", "network", netCfg.Name, "rpc_url", netCfg.RPCURL)
	c, err := NewRPCClient(netCfg, p.cfg, p.logger)
	if err != nil {
		p.logger.Error("Failed to create RPC client", "network", netCfg.Name, "error", err)
		return nil, fmt.Errorf("failed to create RPC client for %s: %w", netCfg.Name, err)
	}
	p.clients[key] = c
	return c, nil
}
