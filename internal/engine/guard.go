package engine

import "sync/atomic"

// Guard is the reentrancy boundary shared by the transfer engine and
// the liquidity bridge. Whoever holds it owns the current operation;
// any call arriving while it is held is a reentrant call and is
// rejected rather than allowed to observe half-applied state.
type Guard struct {
	inProgress atomic.Bool
}

// NewGuard creates an unheld guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Enter attempts to claim the guard. It reports false when an
// operation is already in flight.
func (g *Guard) Enter() bool {
	return g.inProgress.CompareAndSwap(false, true)
}

// Exit releases the guard.
func (g *Guard) Exit() {
	g.inProgress.Store(false)
}
