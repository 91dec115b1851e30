package events

import (
	"sync"
)

// Emitter handles event emission
type Emitter struct {
	listeners map[string][]chan interface{}
	events    chan interface{}
	mu        sync.RWMutex
}

// NewEmitter creates a new event emitter
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[string][]chan interface{}),
		events:    make(chan interface{}, 1000),
	}
}

// Emit emits an event. Emission is fire-and-forget: when a buffer is
// full the event is dropped rather than blocking the emitting path.
func (e *Emitter) Emit(event interface{}) {
	select {
	case e.events <- event:
	default:
		// Channel full, drop event
	}

	e.notifyListeners(event)
}

// Events returns the firehose channel carrying every emitted event.
func (e *Emitter) Events() <-chan interface{} {
	return e.events
}

// Subscribe subscribes to events of a specific type
func (e *Emitter) Subscribe(eventType string) <-chan interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan interface{}, 100)
	e.listeners[eventType] = append(e.listeners[eventType], ch)

	return ch
}

// Unsubscribe removes a subscription
func (e *Emitter) Unsubscribe(eventType string, ch <-chan interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	listeners := e.listeners[eventType]
	for i, listener := range listeners {
		if listener == ch {
			e.listeners[eventType] = append(listeners[:i], listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// notifyListeners notifies type-specific listeners
func (e *Emitter) notifyListeners(event interface{}) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listeners := e.listeners[EventType(event)]
	for _, listener := range listeners {
		select {
		case listener <- event:
		default:
			// Listener channel full, skip
		}
	}
}

// EventType returns the subscription key for an event value.
func EventType(event interface{}) string {
	switch event.(type) {
	case EventTransferExecuted:
		return "transfer_executed"
	case EventTaxesUpdated:
		return "taxes_updated"
	case EventMaxTxUpdated:
		return "max_tx_updated"
	case EventMaxWalletUpdated:
		return "max_wallet_updated"
	case EventTradingEnabled:
		return "trading_enabled"
	case EventBlacklistUpdated:
		return "blacklist_updated"
	case EventFeeExemptionUpdated:
		return "fee_exemption_updated"
	case EventLiquidityAdded:
		return "liquidity_added"
	case EventLiquidityRemoved:
		return "liquidity_removed"
	default:
		return "unknown"
	}
}
