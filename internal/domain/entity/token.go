package entity

// ContractDescriptor holds the details of a token contract tracked by the portfolio.
// Descriptors are copied by value into requests, never referenced live.
type ContractDescriptor struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name" yaml:"name"`
	Address  string `json:"contractAddress" yaml:"address"`
	Decimals uint32 `json:"decimals" yaml:"decimals"`
}

// TokenMetadata is what a token contract reports about itself.
type TokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
}
