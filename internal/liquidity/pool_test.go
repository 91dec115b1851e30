package liquidity

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shizukutanaka/Sekisho/internal/token"
)

var (
	poolAddr  = common.HexToAddress("0xf000000000000000000000000000000000000001")
	funder    = common.HexToAddress("0xf000000000000000000000000000000000000002")
	lpWallet  = common.HexToAddress("0xf000000000000000000000000000000000000003")
)

func newPoolFixture(t *testing.T) (*token.Ledger, *ConstantProductPool) {
	t.Helper()

	ledger := token.NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, ledger.Mint(funder, big.NewInt(1_000_000)))

	return ledger, NewConstantProductPool(ledger, poolAddr)
}

func TestPool_AddLiquidityPullsApprovedTokens(t *testing.T) {
	ledger, pool := newPoolFixture(t)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(funder, poolAddr, big.NewInt(100_000)))

	err := pool.AddLiquidityNative(ctx, funder, big.NewInt(90_000), big.NewInt(10_000),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now())
	require.NoError(t, err)

	tokenReserve, nativeReserve := pool.Reserves()
	assert.Equal(t, big.NewInt(90_000), tokenReserve)
	assert.Equal(t, big.NewInt(10_000), nativeReserve)
	assert.Equal(t, big.NewInt(90_000), ledger.BalanceOf(poolAddr))
	assert.Equal(t, big.NewInt(910_000), ledger.BalanceOf(funder))

	// First provider mints sqrt(token*native) = 30,000 shares
	assert.Equal(t, big.NewInt(30_000), pool.SharesOf(lpWallet))
}

func TestPool_AddLiquidityWithoutAllowance(t *testing.T) {
	_, pool := newPoolFixture(t)

	err := pool.AddLiquidityNative(context.Background(), funder, big.NewInt(1_000), big.NewInt(100),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now())
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)

	tokenReserve, _ := pool.Reserves()
	assert.Equal(t, big.NewInt(0), tokenReserve)
}

func TestPool_RemoveLiquidityProportional(t *testing.T) {
	ledger, pool := newPoolFixture(t)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(funder, poolAddr, big.NewInt(90_000)))
	require.NoError(t, pool.AddLiquidityNative(ctx, funder, big.NewInt(90_000), big.NewInt(10_000),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now()))

	// Burn half of the 30,000 shares: half of each reserve comes back
	err := pool.RemoveLiquidityNative(ctx, funder, big.NewInt(15_000),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now())
	require.NoError(t, err)

	tokenReserve, nativeReserve := pool.Reserves()
	assert.Equal(t, big.NewInt(45_000), tokenReserve)
	assert.Equal(t, big.NewInt(5_000), nativeReserve)
	assert.Equal(t, big.NewInt(45_000), ledger.BalanceOf(lpWallet))
	assert.Equal(t, big.NewInt(15_000), pool.SharesOf(lpWallet))
}

func TestPool_RemoveMoreThanHeld(t *testing.T) {
	ledger, pool := newPoolFixture(t)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(funder, poolAddr, big.NewInt(90_000)))
	require.NoError(t, pool.AddLiquidityNative(ctx, funder, big.NewInt(90_000), big.NewInt(10_000),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now()))

	err := pool.RemoveLiquidityNative(ctx, funder, big.NewInt(30_001),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now())
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestPool_ExpiredDeadline(t *testing.T) {
	ledger, pool := newPoolFixture(t)
	require.NoError(t, ledger.Approve(funder, poolAddr, big.NewInt(1_000)))

	err := pool.AddLiquidityNative(context.Background(), funder, big.NewInt(1_000), big.NewInt(100),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now().Add(-2*time.Second))
	assert.ErrorIs(t, err, ErrExpiredDeadline)
}

func TestPool_CancelledContext(t *testing.T) {
	ledger, pool := newPoolFixture(t)
	require.NoError(t, ledger.Approve(funder, poolAddr, big.NewInt(1_000)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pool.AddLiquidityNative(ctx, funder, big.NewInt(1_000), big.NewInt(100),
		big.NewInt(0), big.NewInt(0), lpWallet, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}
