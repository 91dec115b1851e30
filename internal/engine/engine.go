package engine

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/shizukutanaka/Sekisho/internal/events"
	"github.com/shizukutanaka/Sekisho/internal/metrics"
	"github.com/shizukutanaka/Sekisho/internal/policy"
	"github.com/shizukutanaka/Sekisho/internal/token"
)

// Receipt describes a completed transfer: the requested amount, the
// tax routed to the tax wallet, and the net amount the recipient got.
type Receipt struct {
	From      common.Address
	To        common.Address
	Requested *big.Int
	Tax       *big.Int
	Net       *big.Int
	Direction policy.Direction
	Timestamp time.Time
}

// Engine is the policy-gated transfer engine. It validates a proposed
// movement against the policy registry, computes the directional tax,
// and applies the tax leg and the net leg to the ledger.
//
// All policy reads come from one snapshot taken before any write, and
// writes are the engine's last actions. The full sender balance is
// checked before either leg is issued; the two legs total exactly the
// requested amount, so a passing pre-check means neither leg can fail
// and no partial movement is ever visible.
type Engine struct {
	logger   *zap.Logger
	ledger   *token.Ledger
	registry *policy.Registry
	emitter  *events.Emitter
	metrics  *metrics.Metrics
	guard    *Guard

	owner     common.Address
	taxWallet common.Address

	mu sync.Mutex
}

// New creates a transfer engine. metrics may be nil.
func New(logger *zap.Logger, ledger *token.Ledger, registry *policy.Registry, emitter *events.Emitter, m *metrics.Metrics, guard *Guard, owner, taxWallet common.Address) *Engine {
	if guard == nil {
		guard = NewGuard()
	}
	return &Engine{
		logger:    logger,
		ledger:    ledger,
		registry:  registry,
		emitter:   emitter,
		metrics:   m,
		guard:     guard,
		owner:     owner,
		taxWallet: taxWallet,
	}
}

// Guard returns the engine's reentrancy guard so the liquidity bridge
// can share the same boundary.
func (e *Engine) Guard() *Guard { return e.guard }

// ExecuteTransfer validates and applies a movement of amount from one
// address to another. caller is the authenticated identity requesting
// the movement. Every failure aborts with zero state mutation.
func (e *Engine) ExecuteTransfer(from, to common.Address, amount *big.Int, caller common.Address) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.guard.Enter() {
		e.reject("reentrant")
		return nil, ErrReentrantCall
	}
	defer e.guard.Exit()

	view := e.registry.View(from, to)

	// Blacklist check runs first: a blacklisted party with a zero
	// amount reports BlacklistedParty, not ZeroAmount.
	if view.FromBlacklisted || view.ToBlacklisted {
		e.reject("blacklisted")
		return nil, ErrBlacklistedParty
	}
	if amount == nil || amount.Sign() == 0 {
		e.reject("zero_amount")
		return nil, ErrZeroAmount
	}

	// Owner-originated or owner-destined transfers bypass the gate so
	// liquidity can be seeded before public trading opens.
	if !view.TradingEnabled && from != e.owner && to != e.owner {
		e.reject("trading_disabled")
		return nil, ErrTradingDisabled
	}

	exempt := view.FromExempt || view.ToExempt
	if !exempt {
		if amount.Cmp(view.MaxTx) > 0 {
			e.reject("max_tx")
			return nil, ErrExceedsMaxTx
		}
		// Sells are exempt from the wallet cap: the recipient is the
		// pool, not an end wallet.
		if to != view.Pair {
			projected := new(big.Int).Add(e.ledger.BalanceOf(to), amount)
			if projected.Cmp(view.MaxWallet) > 0 {
				e.reject("max_wallet")
				return nil, ErrExceedsMaxWallet
			}
		}
	}

	direction := policy.Classify(from, to, view.Pair)

	tax := big.NewInt(0)
	if !exempt {
		rate := view.Taxes.Rate(direction)
		if rate > 0 {
			tax.Mul(amount, new(big.Int).SetUint64(rate))
			tax.Div(tax, big.NewInt(100))
		}
	}
	net := new(big.Int).Sub(amount, tax)

	// The two legs combined debit exactly amount, so checking the full
	// balance here is what makes the pair all-or-nothing.
	if e.ledger.BalanceOf(from).Cmp(amount) < 0 {
		e.reject("insufficient_balance")
		return nil, token.ErrInsufficientBalance
	}

	if tax.Sign() > 0 {
		if err := e.ledger.Move(from, e.taxWallet, tax); err != nil {
			e.reject("insufficient_balance")
			return nil, err
		}
	}
	if err := e.ledger.Move(from, to, net); err != nil {
		// Unreachable after the pre-check; restore the tax leg if the
		// ledger ever disagrees.
		if tax.Sign() > 0 {
			_ = e.ledger.Move(e.taxWallet, from, tax)
		}
		e.reject("insufficient_balance")
		return nil, err
	}

	receipt := &Receipt{
		From:      from,
		To:        to,
		Requested: new(big.Int).Set(amount),
		Tax:       tax,
		Net:       net,
		Direction: direction,
		Timestamp: time.Now(),
	}

	e.emitter.Emit(events.EventTransferExecuted{
		From:      from,
		To:        to,
		Requested: new(big.Int).Set(amount),
		Tax:       new(big.Int).Set(tax),
		Net:       new(big.Int).Set(net),
		Direction: direction.String(),
		Timestamp: receipt.Timestamp,
	})

	if e.metrics != nil {
		e.metrics.TransfersTotal.WithLabelValues(direction.String()).Inc()
		if tax.Sign() > 0 {
			taxF, _ := new(big.Float).SetInt(tax).Float64()
			e.metrics.TaxCollected.WithLabelValues(direction.String()).Add(taxF)
		}
	}

	e.logger.Debug("Transfer executed",
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("caller", caller.Hex()),
		zap.String("requested", amount.String()),
		zap.String("tax", tax.String()),
		zap.String("direction", direction.String()))

	return receipt, nil
}

func (e *Engine) reject(reason string) {
	if e.metrics != nil {
		e.metrics.TransfersRejected.WithLabelValues(reason).Inc()
	}
}
