package entity

// NetworkConfig describes a target Soroban network.
// Values are immutable; switching networks replaces the whole config.
type NetworkConfig struct {
	Name              string `json:"name" yaml:"name"` // e.g. "testnet", "mainnet"
	RPCURL            string `json:"rpcUrl" yaml:"rpcURL"`
	NetworkPassphrase string `json:"networkPassphrase" yaml:"networkPassphrase"`
}

// NetworkStatus is the health view of the active network.
type NetworkStatus struct {
	Network           string `json:"network"`
	Connected         bool   `json:"isConnected"`
	LatestLedger      uint32 `json:"latestLedger"`
	NetworkPassphrase string `json:"networkPassphrase"`
	RPCURL            string `json:"rpcUrl"`
}
