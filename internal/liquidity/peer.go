package liquidity

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Peer is the external AMM the bridge talks to. The core calls these
// two operations but does not implement swap pricing; the peer's pair
// address doubles as the PairIdentity used to classify directions.
type Peer interface {
	// AddLiquidityNative supplies tokenAmount plus nativeAmount to the
	// pool, minting pool shares to recipient. The peer pulls the token
	// side from owner's approved allowance.
	AddLiquidityNative(ctx context.Context, owner common.Address, tokenAmount, nativeAmount, minToken, minNative *big.Int, recipient common.Address, deadline time.Time) error

	// RemoveLiquidityNative burns liquidity pool shares held by
	// recipient and pays out both sides to recipient.
	RemoveLiquidityNative(ctx context.Context, owner common.Address, liquidity, minToken, minNative *big.Int, recipient common.Address, deadline time.Time) error

	// PairAddress returns the pool's address.
	PairAddress() common.Address
}
