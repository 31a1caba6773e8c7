package provider

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/infrastructure/tokenloader"
)

// contractAddressPattern is the wire format of a contract address. The strkey
// checksum is verified later, when the address is encoded for the network.
var contractAddressPattern = regexp.MustCompile(`^C[A-Z0-9]{55}$`)

// IsContractAddress reports whether s has the shape of a contract address.
func IsContractAddress(s string) bool {
	return contractAddressPattern.MatchString(s)
}

// ContractRegistry implements port.ContractRegistry.
type ContractRegistry struct {
	mu       sync.RWMutex
	order    []string
	bySymbol map[string]entity.ContractDescriptor
	logger   port.Logger
}

// NewContractRegistry creates a registry seeded with descriptors.
func NewContractRegistry(logger port.Logger, descriptors ...entity.ContractDescriptor) (*ContractRegistry, error) {
	r := &ContractRegistry{
		bySymbol: make(map[string]entity.ContractDescriptor),
		logger:   logger,
	}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadContractRegistry builds a registry from inline descriptors followed by
// those in path (if set). Entries from the file override inline ones.
func LoadContractRegistry(logger port.Logger, inline []entity.ContractDescriptor, path string) (*ContractRegistry, error) {
	descriptors := append([]entity.ContractDescriptor{}, inline...)
	if path != "" {
		logger.Debug("Loading contracts from file", "path", path)
		fromFile, err := tokenloader.LoadContracts(path)
		if err != nil {
			logger.Error("Failed to load contracts", "path", path, "error", err)
			return nil, err
		}
		descriptors = append(descriptors, fromFile...)
	}
	r, err := NewContractRegistry(logger, descriptors...)
	if err != nil {
		return nil, err
	}
	logger.Info("Contract registry loaded", "contracts", len(r.order))
	return r, nil
}

// Register adds or replaces the descriptor for its symbol. A replaced symbol keeps its position.
func (r *ContractRegistry) Register(d entity.ContractDescriptor) error {
	if !IsContractAddress(d.Address) {
		return fmt.Errorf("contract %s address %q: %w", d.Symbol, d.Address, entity.ErrInvalidAddress)
	}
	key := strings.ToUpper(strings.TrimSpace(d.Symbol))
	if key == "" {
		return fmt.Errorf("contract %s has no symbol", d.Address)
	}
	d.Symbol = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySymbol[key]; exists {
		r.logger.Warn("Replacing registered contract", "symbol", key, "address", d.Address)
	} else {
		r.order = append(r.order, key)
	}
	r.bySymbol[key] = d
	return nil
}

// Lookup returns the descriptor for symbol, case-insensitively.
func (r *ContractRegistry) Lookup(symbol string) (entity.ContractDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return entity.ContractDescriptor{}, fmt.Errorf("token %q: %w", symbol, entity.ErrNotFound)
	}
	return d, nil
}

// LookupByAddress returns the descriptor registered for a contract address.
func (r *ContractRegistry) LookupByAddress(address string) (entity.ContractDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		if d := r.bySymbol[key]; d.Address == address {
			return d, nil
		}
	}
	return entity.ContractDescriptor{}, fmt.Errorf("contract %q: %w", address, entity.ErrNotFound)
}

// All returns every descriptor in registration order.
func (r *ContractRegistry) All() []entity.ContractDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.ContractDescriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.bySymbol[key])
	}
	return out
}
