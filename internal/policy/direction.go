package policy

import "github.com/ethereum/go-ethereum/common"

// Direction classifies a transfer relative to the AMM pair address.
type Direction int

const (
	DirectionTransfer Direction = iota
	DirectionBuy
	DirectionSell
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "transfer"
	}
}

// Classify determines the direction of a movement: transfers to the
// pair are sells, transfers from it are buys, everything else is a
// plain transfer.
func Classify(from, to, pair common.Address) Direction {
	switch {
	case to == pair:
		return DirectionSell
	case from == pair:
		return DirectionBuy
	default:
		return DirectionTransfer
	}
}
