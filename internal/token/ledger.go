package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger holds token balances and allowances for every account.
// It is the single source of truth for balance state; the transfer
// policy engine composes its movements out of Move calls.
type Ledger struct {
	name     string
	symbol   string
	decimals uint8

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int

	mu sync.RWMutex
}

// NewLedger creates an empty ledger for the given token metadata.
func NewLedger(name, symbol string, decimals uint8) *Ledger {
	return &Ledger{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		totalSupply: big.NewInt(0),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Name returns the token name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals returns the token decimal places.
func (l *Ledger) Decimals() uint8 { return l.decimals }

// TotalSupply returns the total minted supply.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(big.Int).Set(l.totalSupply)
}

// BalanceOf returns the balance of an address. Unknown addresses have
// a zero balance.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Mint credits newly created tokens to an address and grows the total
// supply. Used at construction to seed the initial supply.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.credit(to, amount)
	l.totalSupply.Add(l.totalSupply, amount)

	return nil
}

// Move performs a single atomic debit+credit. Either both sides are
// applied or neither is.
func (l *Ledger) Move(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	bal.Sub(bal, amount)
	l.credit(to, amount)

	return nil
}

// Approve grants spender an allowance over owner's balance. The grant
// caps spending, it does not pre-spend.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[common.Address]*big.Int)
		l.allowances[owner] = grants
	}
	grants[spender] = new(big.Int).Set(amount)

	return nil
}

// Allowance returns the remaining allowance spender holds over owner.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if grants, ok := l.allowances[owner]; ok {
		if amount, ok := grants[spender]; ok {
			return new(big.Int).Set(amount)
		}
	}
	return big.NewInt(0)
}

// MoveFrom spends part of an allowance: debits owner, credits to, and
// reduces the spender's grant. Used by the liquidity peer to pull
// approved tokens.
func (l *Ledger) MoveFrom(spender, owner, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	grants, ok := l.allowances[owner]
	if !ok {
		return ErrInsufficientAllowance
	}
	granted, ok := grants[spender]
	if !ok || granted.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}

	bal, ok := l.balances[owner]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	granted.Sub(granted, amount)
	bal.Sub(bal, amount)
	l.credit(to, amount)

	return nil
}

// credit adds to an address balance. Caller holds the write lock.
func (l *Ledger) credit(to common.Address, amount *big.Int) {
	if bal, ok := l.balances[to]; ok {
		bal.Add(bal, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}
