package bootstrap

import (
	"testing"

	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
network:
  active: testnet
signer:
  type: none
contracts:
  - symbol: usdc
    name: USD Coin
    address: CAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA
    decimals: 7
  - symbol: XLM
    name: Stellar Lumens
    address: CBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB
    decimals: 7
tokenPriceService:
  staticPrices:
    USDC: 1
`

func TestBuild(t *testing.T) {
	cfg, err := configloader.Parse([]byte(testConfig))
	require.NoError(t, err)

	app, err := Build(cfg, logger.Nop(), Options{})
	require.NoError(t, err)

	assert.Nil(t, app.Signer)
	assert.Equal(t, "testnet", app.Gateway.ActiveNetwork().Name)
	assert.Equal(t, []string{"USDC", "XLM"}, app.Symbols())
	assert.Nil(t, app.Portfolio.Current())

	price, ok := app.Prices.UnitPrice("USDC")
	require.True(t, ok)
	assert.Equal(t, "1", price.String())
}

func TestBuild_NetworkOverride(t *testing.T) {
	cfg, err := configloader.Parse([]byte(testConfig))
	require.NoError(t, err)

	app, err := Build(cfg, logger.Nop(), Options{Network: "futurenet", ReadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "futurenet", app.Gateway.ActiveNetwork().Name)

	_, err = Build(cfg, logger.Nop(), Options{Network: "devnet"})
	assert.Error(t, err)
}
