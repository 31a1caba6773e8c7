package signer

import (
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
)

// Keystore keeps secret seeds in the OS keychain, falling back to an
// encrypted file when no keychain is available.
type Keystore struct {
	ring    keyring.Keyring
	service string
}

// OpenKeystore opens the keychain for service. A non-empty fileDir forces the
// file backend rooted there, which is what headless servers and tests use.
func OpenKeystore(service, fileDir string, passphrase func(string) (string, error)) (*Keystore, error) {
	cfg := keyring.Config{
		ServiceName:              service,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         passphrase,
	}
	switch {
	case fileDir != "":
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case runtime.GOOS == "linux":
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring %s: %w", service, err)
	}
	return &Keystore{ring: ring, service: service}, nil
}

// Store saves a secret seed under key.
func (k *Keystore) Store(key, seed string) error {
	if err := k.ring.Set(keyring.Item{Key: key, Data: []byte(seed), Label: k.service + " " + key}); err != nil {
		return fmt.Errorf("keychain store: %w", err)
	}
	return nil
}

// Retrieve fetches the secret seed stored under key.
func (k *Keystore) Retrieve(key string) (string, error) {
	item, err := k.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve %s: %w", key, err)
	}
	return string(item.Data), nil
}

// Delete removes a stored seed.
func (k *Keystore) Delete(key string) error {
	return k.ring.Remove(key)
}
