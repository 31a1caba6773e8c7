package provider

import (
	"testing"

	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/infrastructure/signer"
	"soroban_portfolio/internal/pkg/logger"

	"github.com/99designs/keyring"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSigner_None(t *testing.T) {
	s, err := NewSigner(configloader.SignerConfig{Type: "none"}, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNewSigner_LocalFromEnv(t *testing.T) {
	kp := keypair.MustRandom()
	t.Setenv("TEST_PORTFOLIO_SEED", kp.Seed())

	s, err := NewSigner(configloader.SignerConfig{
		Type:      "local",
		SecretEnv: "TEST_PORTFOLIO_SEED",
		EnvFile:   t.TempDir() + "/.env",
	}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), s.PublicKey())
}

func TestNewSigner_LocalMissingSecret(t *testing.T) {
	t.Setenv("TEST_PORTFOLIO_SEED", "")
	_, err := NewSigner(configloader.SignerConfig{
		Type:      "local",
		SecretEnv: "TEST_PORTFOLIO_SEED",
		EnvFile:   t.TempDir() + "/.env",
	}, logger.Nop())
	assert.Error(t, err)
}

func TestNewSigner_Keyring(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(KeyringPasswordEnv, "pw")
	kp := keypair.MustRandom()

	ks, err := signer.OpenKeystore("soroban-portfolio-test", dir, keyring.FixedStringPrompt("pw"))
	require.NoError(t, err)
	require.NoError(t, ks.Store("ops", kp.Seed()))

	s, err := NewSigner(configloader.SignerConfig{
		Type:           "keyring",
		KeyringService: "soroban-portfolio-test",
		KeyringKey:     "ops",
		KeyringDir:     dir,
		EnvFile:        dir + "/.env",
	}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), s.PublicKey())
}

func TestNewSigner_External(t *testing.T) {
	s, err := NewSigner(configloader.SignerConfig{
		Type:              "external",
		ExternalURL:       "http://localhost:9999/sign",
		ExternalPublicKey: "GWALLET",
	}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "GWALLET", s.PublicKey())
}

func TestNewSigner_Unknown(t *testing.T) {
	_, err := NewSigner(configloader.SignerConfig{Type: "hsm"}, logger.Nop())
	assert.Error(t, err)
}
