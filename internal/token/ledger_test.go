package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0xa000000000000000000000000000000000000002")
	carol = common.HexToAddress("0xa000000000000000000000000000000000000003")
)

func TestLedger_MintAndSupply(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)

	require.NoError(t, l.Mint(alice, big.NewInt(1000)))
	require.NoError(t, l.Mint(bob, big.NewInt(500)))

	assert.Equal(t, big.NewInt(1500), l.TotalSupply())
	assert.Equal(t, big.NewInt(1000), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(500), l.BalanceOf(bob))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(carol))
}

func TestLedger_MintRejectsNonPositive(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)

	assert.ErrorIs(t, l.Mint(alice, nil), ErrInvalidAmount)
	assert.ErrorIs(t, l.Mint(alice, big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, l.Mint(alice, big.NewInt(-5)), ErrInvalidAmount)
}

func TestLedger_Move(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, l.Mint(alice, big.NewInt(1000)))

	require.NoError(t, l.Move(alice, bob, big.NewInt(300)))

	assert.Equal(t, big.NewInt(700), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(300), l.BalanceOf(bob))
	assert.Equal(t, big.NewInt(1000), l.TotalSupply())
}

func TestLedger_MoveInsufficientBalance(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, l.Mint(alice, big.NewInt(100)))

	err := l.Move(alice, bob, big.NewInt(101))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Neither side changed
	assert.Equal(t, big.NewInt(100), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(bob))
}

func TestLedger_MoveFromUnknownSender(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)

	err := l.Move(alice, bob, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestLedger_MoveZeroIsNoop(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, l.Mint(alice, big.NewInt(100)))

	require.NoError(t, l.Move(alice, bob, big.NewInt(0)))
	assert.Equal(t, big.NewInt(100), l.BalanceOf(alice))
}

func TestLedger_BalanceOfReturnsCopy(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, l.Mint(alice, big.NewInt(100)))

	bal := l.BalanceOf(alice)
	bal.SetInt64(0)

	assert.Equal(t, big.NewInt(100), l.BalanceOf(alice))
}

func TestLedger_Allowances(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, l.Mint(alice, big.NewInt(1000)))

	require.NoError(t, l.Approve(alice, bob, big.NewInt(400)))
	assert.Equal(t, big.NewInt(400), l.Allowance(alice, bob))

	// Spend part of the allowance
	require.NoError(t, l.MoveFrom(bob, alice, carol, big.NewInt(150)))
	assert.Equal(t, big.NewInt(250), l.Allowance(alice, bob))
	assert.Equal(t, big.NewInt(850), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(150), l.BalanceOf(carol))

	// Exceeding the remaining grant fails without movement
	err := l.MoveFrom(bob, alice, carol, big.NewInt(300))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, big.NewInt(850), l.BalanceOf(alice))
}

func TestLedger_MoveFromWithoutGrant(t *testing.T) {
	l := NewLedger("Sekisho", "SKS", 18)
	require.NoError(t, l.Mint(alice, big.NewInt(1000)))

	err := l.MoveFrom(bob, alice, carol, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}
