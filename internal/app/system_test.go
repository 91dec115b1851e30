package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shizukutanaka/Sekisho/internal/config"
)

var (
	sysOwner  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	sysTax    = common.HexToAddress("0x1000000000000000000000000000000000000002")
	sysLiq    = common.HexToAddress("0x1000000000000000000000000000000000000003")
	sysTrader = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Token.Decimals = 0 // keep amounts readable
	cfg.Wallets = config.WalletsConfig{
		Owner:     sysOwner.Hex(),
		Tax:       sysTax.Hex(),
		Liquidity: sysLiq.Hex(),
	}
	cfg.API.Enabled = false
	cfg.Storage.Enabled = true
	cfg.Storage.Path = ":memory:"
	return cfg
}

func newSystem(t *testing.T) *System {
	t.Helper()

	sys, err := New(zaptest.NewLogger(t), testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, sys.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		sys.Shutdown(ctx)
	})
	return sys
}

func TestSystem_InitialState(t *testing.T) {
	sys := newSystem(t)

	supply := big.NewInt(1_000_000)
	assert.Equal(t, supply, sys.Ledger.TotalSupply())
	assert.Equal(t, supply, sys.Ledger.BalanceOf(sysOwner))
	assert.False(t, sys.Registry.TradingEnabled())

	limits := sys.Registry.Limits()
	assert.Equal(t, big.NewInt(10_000), limits.MaxTx)
	assert.Equal(t, big.NewInt(20_000), limits.MaxWallet)

	assert.True(t, sys.Registry.IsFeeExempt(sysOwner))
	assert.True(t, sys.Registry.IsFeeExempt(sysTax))
	assert.True(t, sys.Registry.IsFeeExempt(sysLiq))
	assert.NotEqual(t, common.Address{}, sys.Pool.PairAddress())
}

func TestSystem_LaunchFlow(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()
	pair := sys.Pool.PairAddress()

	// Pre-launch: owner funds the liquidity wallet tax-free
	_, err := sys.Engine.ExecuteTransfer(sysOwner, sysLiq, big.NewInt(200_000), sysOwner)
	require.NoError(t, err)

	require.NoError(t, sys.Bridge.AddLiquidity(ctx, big.NewInt(90_000), big.NewInt(10_000), sysOwner))
	assert.Equal(t, big.NewInt(90_000), sys.Ledger.BalanceOf(pair))

	require.NoError(t, sys.Admin.EnableTrading(sysOwner))
	require.True(t, sys.Registry.TradingEnabled())

	// Public buy: pair sends, default 3% buy tax applies
	receipt, err := sys.Engine.ExecuteTransfer(pair, sysTrader, big.NewInt(1_000), sysTrader)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), receipt.Tax)
	assert.Equal(t, big.NewInt(970), receipt.Net)
	assert.Equal(t, big.NewInt(970), sys.Ledger.BalanceOf(sysTrader))
	assert.Equal(t, big.NewInt(30), sys.Ledger.BalanceOf(sysTax))

	// Sell back: 5% sell tax
	receipt, err = sys.Engine.ExecuteTransfer(sysTrader, pair, big.NewInt(200), sysTrader)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), receipt.Tax)
	assert.Equal(t, "sell", receipt.Direction.String())
}

func TestSystem_TradingGateBlocksPublic(t *testing.T) {
	sys := newSystem(t)

	_, err := sys.Engine.ExecuteTransfer(sysOwner, sysTrader, big.NewInt(5_000), sysOwner)
	require.NoError(t, err)

	_, err = sys.Engine.ExecuteTransfer(sysTrader, sys.Pool.PairAddress(), big.NewInt(100), sysTrader)
	assert.Error(t, err)
}

func TestSystem_ReceiptsPersisted(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	_, err := sys.Engine.ExecuteTransfer(sysOwner, sysTrader, big.NewInt(5_000), sysOwner)
	require.NoError(t, err)

	// recordEvents runs async off the emitter
	require.Eventually(t, func() bool {
		n, err := sys.Store.Count(ctx)
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	receipts, err := sys.Store.ByAddress(ctx, sysTrader.Hex(), 10)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, big.NewInt(5_000), receipts[0].Requested)
	assert.Equal(t, big.NewInt(0), receipts[0].Tax)
}

func TestSystem_AdminGateEnforced(t *testing.T) {
	sys := newSystem(t)

	err := sys.Admin.SetTaxes(sysTrader, 1, 1, 1)
	assert.Error(t, err)

	err = sys.Admin.EnableTrading(sysTrader)
	assert.Error(t, err)
	assert.False(t, sys.Registry.TradingEnabled())
}
