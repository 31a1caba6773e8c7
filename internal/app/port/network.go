package port

import "soroban_portfolio/internal/domain/entity"

// NetworkDefinitionProvider resolves network names to their configs.
type NetworkDefinitionProvider interface {
	GetNetworkDefinitionByName(name string) (entity.NetworkConfig, error)
	GetAllNetworkDefinitions() []entity.NetworkConfig
}
