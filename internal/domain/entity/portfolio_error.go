package entity

// PortfolioError represents a non-fatal failure for a single token while loading a portfolio.
type PortfolioError struct {
	Address         string `json:"address"`
	TokenSymbol     string `json:"tokenSymbol"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Message         string `json:"message"`
}
