package engine

import "errors"

// Transfer validation errors, in the order the engine checks them.
var (
	ErrBlacklistedParty = errors.New("party is blacklisted")
	ErrZeroAmount       = errors.New("amount is zero")
	ErrTradingDisabled  = errors.New("trading is not enabled")
	ErrExceedsMaxTx     = errors.New("amount exceeds max transaction")
	ErrExceedsMaxWallet = errors.New("recipient balance would exceed max wallet")
	ErrReentrantCall    = errors.New("reentrant call rejected")
)
