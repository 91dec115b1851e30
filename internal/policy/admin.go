package policy

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/shizukutanaka/Sekisho/internal/events"
)

// SupplySource reports the current total supply, used to validate cap
// updates against the totalSupply/1000 floor.
type SupplySource interface {
	TotalSupply() *big.Int
}

// OwnerCheck is the capability check gating every admin mutation.
type OwnerCheck func(caller common.Address) bool

// Admin exposes the owner-gated mutators for the policy registry.
// Every setter validates before committing and emits a notification
// carrying the new value on success.
type Admin struct {
	logger   *zap.Logger
	registry *Registry
	supply   SupplySource
	emitter  *events.Emitter
	isOwner  OwnerCheck
}

// NewAdmin creates an admin controller over a registry.
func NewAdmin(logger *zap.Logger, registry *Registry, supply SupplySource, emitter *events.Emitter, isOwner OwnerCheck) *Admin {
	return &Admin{
		logger:   logger,
		registry: registry,
		supply:   supply,
		emitter:  emitter,
		isOwner:  isOwner,
	}
}

// SetTaxes replaces the tax schedule.
func (a *Admin) SetTaxes(caller common.Address, buy, sell, transfer uint64) error {
	if !a.isOwner(caller) {
		return ErrUnauthorized
	}
	if err := a.registry.SetTaxes(buy, sell, transfer); err != nil {
		return err
	}

	a.emitter.Emit(events.EventTaxesUpdated{
		BuyRate:      buy,
		SellRate:     sell,
		TransferRate: transfer,
		Timestamp:    time.Now(),
	})
	a.logger.Info("Tax schedule updated",
		zap.Uint64("buy", buy),
		zap.Uint64("sell", sell),
		zap.Uint64("transfer", transfer))

	return nil
}

// SetMaxTx replaces the per-transaction cap.
func (a *Admin) SetMaxTx(caller common.Address, amount *big.Int) error {
	if !a.isOwner(caller) {
		return ErrUnauthorized
	}
	if err := a.registry.SetMaxTx(amount, a.supply.TotalSupply()); err != nil {
		return err
	}

	a.emitter.Emit(events.EventMaxTxUpdated{
		MaxTx:     new(big.Int).Set(amount),
		Timestamp: time.Now(),
	})
	a.logger.Info("Max transaction amount updated", zap.String("max_tx", amount.String()))

	return nil
}

// SetMaxWallet replaces the per-wallet cap.
func (a *Admin) SetMaxWallet(caller common.Address, amount *big.Int) error {
	if !a.isOwner(caller) {
		return ErrUnauthorized
	}
	if err := a.registry.SetMaxWallet(amount, a.supply.TotalSupply()); err != nil {
		return err
	}

	a.emitter.Emit(events.EventMaxWalletUpdated{
		MaxWallet: new(big.Int).Set(amount),
		Timestamp: time.Now(),
	})
	a.logger.Info("Max wallet amount updated", zap.String("max_wallet", amount.String()))

	return nil
}

// EnableTrading opens the trading gate. Calling it again once the gate
// is open is a no-op, not an error.
func (a *Admin) EnableTrading(caller common.Address) error {
	if !a.isOwner(caller) {
		return ErrUnauthorized
	}
	if !a.registry.EnableTrading() {
		return nil
	}

	a.emitter.Emit(events.EventTradingEnabled{Timestamp: time.Now()})
	a.logger.Info("Trading enabled")

	return nil
}

// Blacklist adds an address to the blacklist.
func (a *Admin) Blacklist(caller, addr common.Address) error {
	return a.setBlacklisted(caller, addr, true)
}

// Unblacklist removes an address from the blacklist.
func (a *Admin) Unblacklist(caller, addr common.Address) error {
	return a.setBlacklisted(caller, addr, false)
}

func (a *Admin) setBlacklisted(caller, addr common.Address, blacklisted bool) error {
	if !a.isOwner(caller) {
		return ErrUnauthorized
	}
	a.registry.SetBlacklisted(addr, blacklisted)

	a.emitter.Emit(events.EventBlacklistUpdated{
		Address:     addr,
		Blacklisted: blacklisted,
		Timestamp:   time.Now(),
	})
	a.logger.Info("Blacklist updated",
		zap.String("address", addr.Hex()),
		zap.Bool("blacklisted", blacklisted))

	return nil
}

// ExcludeFromFee adds an address to the fee-exempt set.
func (a *Admin) ExcludeFromFee(caller, addr common.Address) error {
	return a.setFeeExempt(caller, addr, true)
}

// IncludeInFee removes an address from the fee-exempt set.
func (a *Admin) IncludeInFee(caller, addr common.Address) error {
	return a.setFeeExempt(caller, addr, false)
}

func (a *Admin) setFeeExempt(caller, addr common.Address, exempt bool) error {
	if !a.isOwner(caller) {
		return ErrUnauthorized
	}
	a.registry.SetFeeExempt(addr, exempt)

	a.emitter.Emit(events.EventFeeExemptionUpdated{
		Address:   addr,
		Exempt:    exempt,
		Timestamp: time.Now(),
	})
	a.logger.Info("Fee exemption updated",
		zap.String("address", addr.Hex()),
		zap.Bool("exempt", exempt))

	return nil
}
