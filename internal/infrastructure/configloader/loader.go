package configloader

import (
	"fmt"
	"os"
	"strings"

	"soroban_portfolio/internal/domain/entity"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	ReadTimeout    int      `yaml:"readTimeout"`
	WriteTimeout   int      `yaml:"writeTimeout"`
	IdleTimeout    int      `yaml:"idleTimeout"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	EnablePprof    bool     `yaml:"enablePprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NetworkSection selects the active network and lists custom ones.
type NetworkSection struct {
	Active   string                 `yaml:"active"`
	Networks []entity.NetworkConfig `yaml:"networks"`
}

// RPCClientConfig holds configuration for the Soroban RPC client.
type RPCClientConfig struct {
	RequestTimeoutMs int64 `yaml:"requestTimeoutMs"`
	RateLimit        int   `yaml:"rateLimit"`
	BurstLimit       int   `yaml:"burstLimit"`
	MaxConnsPerHost  int   `yaml:"maxConnsPerHost"`
}

// LedgerConfig holds transaction building and confirmation settings.
type LedgerConfig struct {
	BaseFee               int64  `yaml:"baseFee"`
	TxTimeoutSeconds      int64  `yaml:"txTimeoutSeconds"`
	PollIntervalMs        int64  `yaml:"pollIntervalMs"`
	ConfirmTimeoutSeconds int64  `yaml:"confirmTimeoutSeconds"`
	ApproveLedgerWindow   uint32 `yaml:"approveLedgerWindow"`
	// SimulationAccount is the source account for read-only calls when no signer is configured.
	SimulationAccount string `yaml:"simulationAccount"`
}

// PortfolioServiceConfig holds configuration for the PortfolioService.
type PortfolioServiceConfig struct {
	WalletAddress         string `yaml:"walletAddress"`
	WatchlistFile         string `yaml:"watchlistFile"`
	BalanceFetchTimeoutMs int64  `yaml:"balanceFetchTimeoutMs"`
	MaxConcurrentRequests int    `yaml:"maxConcurrentRequests"`
	RefreshSchedule       string `yaml:"refreshSchedule"`
}

// SignerConfig selects how transactions are signed.
type SignerConfig struct {
	Type              string `yaml:"type"` // none | local | keyring | external
	SecretEnv         string `yaml:"secretEnv"`
	EnvFile           string `yaml:"envFile"`
	KeyringService    string `yaml:"keyringService"`
	KeyringKey        string `yaml:"keyringKey"`
	KeyringDir        string `yaml:"keyringDir"`
	ExternalURL       string `yaml:"externalURL"`
	ExternalPublicKey string `yaml:"externalPublicKey"`
	ExternalTimeoutMs int64  `yaml:"externalTimeoutMs"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	Enabled              bool              `yaml:"enabled"`
	APIKey               string            `yaml:"apiKey"`
	BaseURL              string            `yaml:"baseURL"`
	RequestTimeoutMillis int64             `yaml:"requestTimeoutMillis"`
	VsCurrency           string            `yaml:"vsCurrency"`
	CoinIDs              map[string]string `yaml:"coinIds"` // token symbol -> CoinGecko coin id
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
type TokenPriceServiceConfig struct {
	CacheTTLMinutes        int                `yaml:"cacheTTLMinutes"`
	CleanupIntervalMinutes int                `yaml:"cleanupIntervalMinutes"`
	RefreshSchedule        string             `yaml:"refreshSchedule"`
	MaxCoinsPerRequest     int                `yaml:"maxCoinsPerRequest"`
	MaxConcurrentRequests  int                `yaml:"maxConcurrentRequests"`
	StaticPrices           map[string]float64 `yaml:"staticPrices"`
	CostBasis              map[string]float64 `yaml:"costBasis"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig                `yaml:"server"`
	Logging       LoggingConfig               `yaml:"logging"`
	Network       NetworkSection              `yaml:"network"`
	RPCClient     RPCClientConfig             `yaml:"rpcClient"`
	Ledger        LedgerConfig                `yaml:"ledger"`
	Portfolio     PortfolioServiceConfig      `yaml:"portfolioService"`
	Signer        SignerConfig                `yaml:"signer"`
	Contracts     []entity.ContractDescriptor `yaml:"contracts"`
	ContractsFile string                      `yaml:"contractsFile"`
	CoinGecko     CoinGeckoConfig             `yaml:"coinGecko"`
	TokenPriceSvc TokenPriceServiceConfig     `yaml:"tokenPriceService"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals raw YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Network.Active == "" {
		cfg.Network.Active = "testnet"
		logrus.Infof("network.active not set, defaulting to %s", cfg.Network.Active)
	}

	if cfg.RPCClient.RequestTimeoutMs <= 0 {
		cfg.RPCClient.RequestTimeoutMs = 10000
	}
	if cfg.RPCClient.RateLimit <= 0 {
		cfg.RPCClient.RateLimit = 20
	}
	if cfg.RPCClient.BurstLimit <= 0 {
		cfg.RPCClient.BurstLimit = cfg.RPCClient.RateLimit
	}
	if cfg.RPCClient.MaxConnsPerHost <= 0 {
		cfg.RPCClient.MaxConnsPerHost = 16
	}

	if cfg.Ledger.BaseFee <= 0 {
		cfg.Ledger.BaseFee = 100
	}
	if cfg.Ledger.TxTimeoutSeconds <= 0 {
		cfg.Ledger.TxTimeoutSeconds = 30
	}
	if cfg.Ledger.PollIntervalMs <= 0 {
		cfg.Ledger.PollIntervalMs = 1000
	}
	if cfg.Ledger.ConfirmTimeoutSeconds <= 0 {
		cfg.Ledger.ConfirmTimeoutSeconds = 60
	}
	if cfg.Ledger.ApproveLedgerWindow == 0 {
		// ~1 day at 5s ledgers
		cfg.Ledger.ApproveLedgerWindow = 17280
	}

	if cfg.Portfolio.BalanceFetchTimeoutMs <= 0 {
		cfg.Portfolio.BalanceFetchTimeoutMs = 10000
	}
	if cfg.Portfolio.MaxConcurrentRequests <= 0 {
		cfg.Portfolio.MaxConcurrentRequests = 8
	}

	if cfg.Signer.Type == "" {
		cfg.Signer.Type = "none"
	}
	if cfg.Signer.SecretEnv == "" {
		cfg.Signer.SecretEnv = "PORTFOLIO_SECRET_KEY"
	}
	if cfg.Signer.KeyringService == "" {
		cfg.Signer.KeyringService = "soroban-portfolio"
	}
	if cfg.Signer.ExternalTimeoutMs <= 0 {
		cfg.Signer.ExternalTimeoutMs = 120000
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}

	if cfg.TokenPriceSvc.CacheTTLMinutes <= 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 60
	}
	if cfg.TokenPriceSvc.CleanupIntervalMinutes <= 0 {
		cfg.TokenPriceSvc.CleanupIntervalMinutes = 2 * cfg.TokenPriceSvc.CacheTTLMinutes
	}
	if cfg.TokenPriceSvc.MaxCoinsPerRequest <= 0 {
		cfg.TokenPriceSvc.MaxCoinsPerRequest = 50
	}
	if cfg.TokenPriceSvc.MaxConcurrentRequests <= 0 {
		cfg.TokenPriceSvc.MaxConcurrentRequests = 4
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Signer.Type) {
	case "none", "local", "keyring":
	case "external":
		if cfg.Signer.ExternalURL == "" || cfg.Signer.ExternalPublicKey == "" {
			return fmt.Errorf("signer.externalURL and signer.externalPublicKey are required for the external signer")
		}
	default:
		return fmt.Errorf("unknown signer type %q", cfg.Signer.Type)
	}
	for i, n := range cfg.Network.Networks {
		if n.Name == "" || n.RPCURL == "" || n.NetworkPassphrase == "" {
			return fmt.Errorf("network #%d must set name, rpcURL and networkPassphrase", i)
		}
	}
	return nil
}

// LoadEnvFile loads secrets from a .env file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logrus.Debugf("env file %s not found, skipping", path)
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
