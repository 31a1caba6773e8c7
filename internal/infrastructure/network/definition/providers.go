package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"

	"github.com/stellar/go/network"
)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Testnet = entity.NetworkConfig{
		Name:              "testnet",
		RPCURL:            "https://soroban-testnet.stellar.org",
		NetworkPassphrase: network.TestNetworkPassphrase,
	}
	Mainnet = entity.NetworkConfig{
		Name:              "mainnet",
		RPCURL:            "https://soroban-rpc.stellar.org",
		NetworkPassphrase: network.PublicNetworkPassphrase,
	}
	Futurenet = entity.NetworkConfig{
		Name:              "futurenet",
		RPCURL:            "https://rpc-futurenet.stellar.org",
		NetworkPassphrase: network.FutureNetworkPassphrase,
	}
)

// NetworkDefinitionProvider resolves network names to configs.
// Custom networks from the config file override presets with the same name.
type NetworkDefinitionProvider struct {
	logger port.Logger
	defs   map[string]entity.NetworkConfig
}

// NewNetworkDefinitionProvider creates a provider seeded with the presets and the given custom networks.
func NewNetworkDefinitionProvider(log port.Logger, custom []entity.NetworkConfig) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger: log,
		defs: map[string]entity.NetworkConfig{
			Testnet.Name:   Testnet,
			Mainnet.Name:   Mainnet,
			Futurenet.Name: Futurenet,
		},
	}
	for _, def := range custom {
		key := strings.ToLower(def.Name)
		if _, exists := p.defs[key]; exists {
			p.logger.Warn("Custom network overrides preset", "network", key, "rpc_url", def.RPCURL)
		}
		p.defs[key] = def
	}
	p.logger.Debug("NetworkDefinitionProvider initialized", "networks", len(p.defs))
	return p
}

// GetNetworkDefinitionByName returns a network definition by name.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(name string) (entity.NetworkConfig, error) {
	def, ok := p.defs[strings.ToLower(name)]
	if !ok {
		return entity.NetworkConfig{}, fmt.Errorf("network %q: %w", name, entity.ErrNotFound)
	}
	return def, nil
}

// GetAllNetworkDefinitions returns all known networks sorted by name.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkConfig {
	out := make([]entity.NetworkConfig, 0, len(p.defs))
	for _, def := range p.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
