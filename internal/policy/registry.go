package policy

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Rate bounds enforced on updates. Construction bypasses them so a
// deployment can start from whatever schedule it was configured with.
const (
	MaxBuyRate      = 10
	MaxSellRate     = 10
	MaxTransferRate = 5
)

// limitDivisor: caps may never be updated below totalSupply/1000.
const limitDivisor = 1000

// TaxSchedule holds the directional tax rates as integer percentages.
type TaxSchedule struct {
	Buy      uint64
	Sell     uint64
	Transfer uint64
}

// Rate returns the rate for a transfer direction.
func (s TaxSchedule) Rate(d Direction) uint64 {
	switch d {
	case DirectionBuy:
		return s.Buy
	case DirectionSell:
		return s.Sell
	default:
		return s.Transfer
	}
}

// TransferLimits holds the per-transaction and per-wallet caps in the
// token's smallest unit.
type TransferLimits struct {
	MaxTx     *big.Int
	MaxWallet *big.Int
}

// Registry aggregates the mutable transfer policy: tax schedule, caps,
// trading gate, pair identity, blacklist and fee-exemption sets. It is
// created once at system initialization and mutated only through the
// admin controller.
type Registry struct {
	taxes          TaxSchedule
	limits         TransferLimits
	tradingEnabled bool
	pair           common.Address

	blacklist map[common.Address]struct{}
	feeExempt map[common.Address]struct{}

	mu sync.RWMutex
}

// NewRegistry creates a registry with the default policy: taxes
// {3,5,1}, max transaction 1% and max wallet 2% of the initial supply,
// trading disabled. The pair address is immutable after construction.
func NewRegistry(pair common.Address, initialSupply *big.Int) *Registry {
	return &Registry{
		taxes: TaxSchedule{Buy: 3, Sell: 5, Transfer: 1},
		limits: TransferLimits{
			MaxTx:     new(big.Int).Div(initialSupply, big.NewInt(100)),
			MaxWallet: new(big.Int).Div(initialSupply, big.NewInt(50)),
		},
		pair:      pair,
		blacklist: make(map[common.Address]struct{}),
		feeExempt: make(map[common.Address]struct{}),
	}
}

// NewRegistryWithSchedule creates a registry with an explicit initial
// schedule and limits. Construction does not validate either; the
// update invariants apply only to later mutation.
func NewRegistryWithSchedule(pair common.Address, taxes TaxSchedule, limits TransferLimits) *Registry {
	return &Registry{
		taxes:     taxes,
		limits:    limits,
		pair:      pair,
		blacklist: make(map[common.Address]struct{}),
		feeExempt: make(map[common.Address]struct{}),
	}
}

// Pair returns the AMM pair address.
func (r *Registry) Pair() common.Address { return r.pair }

// Taxes returns the current tax schedule.
func (r *Registry) Taxes() TaxSchedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.taxes
}

// Limits returns copies of the current caps.
func (r *Registry) Limits() TransferLimits {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return TransferLimits{
		MaxTx:     new(big.Int).Set(r.limits.MaxTx),
		MaxWallet: new(big.Int).Set(r.limits.MaxWallet),
	}
}

// TradingEnabled reports whether the trading gate is open.
func (r *Registry) TradingEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tradingEnabled
}

// IsBlacklisted reports blacklist membership.
func (r *Registry) IsBlacklisted(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.blacklist[addr]
	return ok
}

// IsFeeExempt reports fee-exemption membership.
func (r *Registry) IsFeeExempt(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.feeExempt[addr]
	return ok
}

// TransferView is a consistent snapshot of every policy field a single
// transfer decision reads. Taking it once up front keeps the engine's
// checks-then-effects ordering honest: no field can change between two
// reads of the same decision.
type TransferView struct {
	Taxes          TaxSchedule
	MaxTx          *big.Int
	MaxWallet      *big.Int
	TradingEnabled bool
	Pair           common.Address

	FromBlacklisted bool
	ToBlacklisted   bool
	FromExempt      bool
	ToExempt        bool
}

// View snapshots the policy state relevant to a transfer between two
// parties under a single lock acquisition.
func (r *Registry) View(from, to common.Address) TransferView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, fromBl := r.blacklist[from]
	_, toBl := r.blacklist[to]
	_, fromEx := r.feeExempt[from]
	_, toEx := r.feeExempt[to]

	return TransferView{
		Taxes:           r.taxes,
		MaxTx:           new(big.Int).Set(r.limits.MaxTx),
		MaxWallet:       new(big.Int).Set(r.limits.MaxWallet),
		TradingEnabled:  r.tradingEnabled,
		Pair:            r.pair,
		FromBlacklisted: fromBl,
		ToBlacklisted:   toBl,
		FromExempt:      fromEx,
		ToExempt:        toEx,
	}
}

// SetTaxes replaces the whole schedule atomically. All three rates
// change together or not at all.
func (r *Registry) SetTaxes(buy, sell, transfer uint64) error {
	if buy > MaxBuyRate || sell > MaxSellRate || transfer > MaxTransferRate {
		return ErrTaxTooHigh
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.taxes = TaxSchedule{Buy: buy, Sell: sell, Transfer: transfer}
	return nil
}

// SetMaxTx replaces the per-transaction cap. The new value must be at
// least totalSupply/1000.
func (r *Registry) SetMaxTx(amount, totalSupply *big.Int) error {
	if amount == nil || belowFloor(amount, totalSupply) {
		return ErrLimitTooLow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.limits.MaxTx = new(big.Int).Set(amount)
	return nil
}

// SetMaxWallet replaces the per-wallet cap. The new value must be at
// least totalSupply/1000.
func (r *Registry) SetMaxWallet(amount, totalSupply *big.Int) error {
	if amount == nil || belowFloor(amount, totalSupply) {
		return ErrLimitTooLow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.limits.MaxWallet = new(big.Int).Set(amount)
	return nil
}

// EnableTrading opens the trading gate. The transition is one-way and
// idempotent; it reports whether this call actually flipped the gate.
func (r *Registry) EnableTrading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tradingEnabled {
		return false
	}
	r.tradingEnabled = true
	return true
}

// SetBlacklisted sets or clears blacklist membership. Blacklisting an
// address with an outstanding balance does not move or freeze funds,
// it only blocks future transfers involving the address.
func (r *Registry) SetBlacklisted(addr common.Address, blacklisted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if blacklisted {
		r.blacklist[addr] = struct{}{}
	} else {
		delete(r.blacklist, addr)
	}
}

// SetFeeExempt sets or clears fee-exemption membership.
func (r *Registry) SetFeeExempt(addr common.Address, exempt bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if exempt {
		r.feeExempt[addr] = struct{}{}
	} else {
		delete(r.feeExempt, addr)
	}
}

// belowFloor reports whether amount < totalSupply/1000. A nil or
// non-positive amount is always below the floor.
func belowFloor(amount, totalSupply *big.Int) bool {
	if amount.Sign() <= 0 {
		return true
	}
	floor := new(big.Int).Div(totalSupply, big.NewInt(limitDivisor))
	return amount.Cmp(floor) < 0
}
