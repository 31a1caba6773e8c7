package provider

import (
	"fmt"
	"os"
	"strings"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/infrastructure/signer"
)

// KeyringPasswordEnv holds the password of the file keyring backend.
const KeyringPasswordEnv = "PORTFOLIO_KEYRING_PASSWORD"

// NewSigner builds the signer selected by cfg.Type. It returns (nil, nil) for
// type "none": the application then runs read-only.
func NewSigner(cfg configloader.SignerConfig, logger port.Logger) (port.Signer, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		logger.Info("No signer configured, running read-only")
		return nil, nil

	case "local":
		if err := configloader.LoadEnvFile(cfg.EnvFile); err != nil {
			return nil, err
		}
		seed := os.Getenv(cfg.SecretEnv)
		if seed == "" {
			return nil, fmt.Errorf("signer secret not set: export %s or add it to the env file", cfg.SecretEnv)
		}
		s, err := signer.NewLocalKeySigner(seed)
		if err != nil {
			return nil, err
		}
		logger.Info("Local key signer loaded", "public_key", s.PublicKey(), "source", cfg.SecretEnv)
		return s, nil

	case "keyring":
		ks, err := OpenKeystore(cfg)
		if err != nil {
			return nil, err
		}
		key := KeyringKey(cfg)
		seed, err := ks.Retrieve(key)
		if err != nil {
			return nil, err
		}
		s, err := signer.NewLocalKeySigner(seed)
		if err != nil {
			return nil, err
		}
		logger.Info("Keyring signer loaded", "public_key", s.PublicKey(), "service", cfg.KeyringService, "key", key)
		return s, nil

	case "external":
		timeout := time.Duration(cfg.ExternalTimeoutMs) * time.Millisecond
		logger.Info("External wallet signer configured", "url", cfg.ExternalURL, "public_key", cfg.ExternalPublicKey)
		return signer.NewExternalWalletSigner(cfg.ExternalURL, cfg.ExternalPublicKey, timeout, logger), nil

	default:
		return nil, fmt.Errorf("unknown signer type %q", cfg.Type)
	}
}

// OpenKeystore opens the keyring selected by cfg after loading its env file.
func OpenKeystore(cfg configloader.SignerConfig) (*signer.Keystore, error) {
	if err := configloader.LoadEnvFile(cfg.EnvFile); err != nil {
		return nil, err
	}
	return signer.OpenKeystore(cfg.KeyringService, cfg.KeyringDir, keyringPassword)
}

// KeyringKey is the entry name holding the seed.
func KeyringKey(cfg configloader.SignerConfig) string {
	if cfg.KeyringKey == "" {
		return "default"
	}
	return cfg.KeyringKey
}

func keyringPassword(string) (string, error) {
	if pw := os.Getenv(KeyringPasswordEnv); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("keyring password not set: export %s", KeyringPasswordEnv)
}
