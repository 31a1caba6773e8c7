package tokenloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"soroban_portfolio/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadContracts reads contract descriptors from a JSON or YAML file.
// The file holds a list of {symbol, name, contractAddress, decimals} objects
// (YAML files use "address" for the contract address).
func LoadContracts(path string) ([]entity.ContractDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contracts file %s: %w", path, err)
	}

	var descriptors []entity.ContractDescriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &descriptors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contracts from %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &descriptors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contracts from %s: %w", path, err)
		}
	}

	for i := range descriptors {
		if descriptors[i].Symbol == "" {
			return nil, fmt.Errorf("contract #%d in %s has no symbol", i, path)
		}
	}
	return descriptors, nil
}
