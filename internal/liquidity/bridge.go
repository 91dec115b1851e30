package liquidity

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/shizukutanaka/Sekisho/internal/engine"
	"github.com/shizukutanaka/Sekisho/internal/events"
	"github.com/shizukutanaka/Sekisho/internal/metrics"
	"github.com/shizukutanaka/Sekisho/internal/policy"
	"github.com/shizukutanaka/Sekisho/internal/token"
)

// Bridge issues add/remove-liquidity calls to the AMM peer on behalf
// of the owner. It grants the peer a capped allowance over the
// system's own balance and invokes the peer with zero minimums and an
// immediate deadline. The zero-minimum, same-instant-deadline shape
// provides no slippage protection; that is the accepted design, not a
// defect to patch here.
//
// The peer call happens mid-operation, which makes the bridge a
// reentrancy boundary: it holds the shared guard for the duration, so
// a reentrant transfer during the peer call is rejected instead of
// observing a half-applied operation.
type Bridge struct {
	logger  *zap.Logger
	ledger  *token.Ledger
	peer    Peer
	emitter *events.Emitter
	metrics *metrics.Metrics
	guard   *engine.Guard
	isOwner policy.OwnerCheck

	// self is the system's own address whose balance funds liquidity;
	// liquidityWallet receives pool shares and removal proceeds.
	self            common.Address
	liquidityWallet common.Address
}

// NewBridge creates a liquidity bridge. metrics may be nil.
func NewBridge(logger *zap.Logger, ledger *token.Ledger, peer Peer, emitter *events.Emitter, m *metrics.Metrics, guard *engine.Guard, isOwner policy.OwnerCheck, self, liquidityWallet common.Address) *Bridge {
	return &Bridge{
		logger:          logger,
		ledger:          ledger,
		peer:            peer,
		emitter:         emitter,
		metrics:         m,
		guard:           guard,
		isOwner:         isOwner,
		self:            self,
		liquidityWallet: liquidityWallet,
	}
}

// AddLiquidity approves the peer for tokenAmount on the system's own
// balance and invokes the peer's add-liquidity entry point. Peer
// failure leaves the ledger untouched: the allowance grant caps
// spending, it does not pre-spend.
func (b *Bridge) AddLiquidity(ctx context.Context, tokenAmount, nativeAmount *big.Int, caller common.Address) error {
	if !b.isOwner(caller) {
		return policy.ErrUnauthorized
	}
	if !b.guard.Enter() {
		return engine.ErrReentrantCall
	}
	defer b.guard.Exit()

	if err := b.ledger.Approve(b.self, b.peer.PairAddress(), tokenAmount); err != nil {
		b.count("add", "failed")
		return fmt.Errorf("%w: %v", ErrLiquidityOperationFailed, err)
	}

	zero := big.NewInt(0)
	if err := b.peer.AddLiquidityNative(ctx, b.self, tokenAmount, nativeAmount, zero, zero, b.liquidityWallet, time.Now()); err != nil {
		b.count("add", "failed")
		b.logger.Error("Add liquidity failed",
			zap.String("token_amount", tokenAmount.String()),
			zap.String("native_amount", nativeAmount.String()),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrLiquidityOperationFailed, err)
	}

	b.count("add", "ok")
	b.emitter.Emit(events.EventLiquidityAdded{
		TokenAmount:  new(big.Int).Set(tokenAmount),
		NativeAmount: new(big.Int).Set(nativeAmount),
		Timestamp:    time.Now(),
	})
	b.logger.Info("Liquidity added",
		zap.String("token_amount", tokenAmount.String()),
		zap.String("native_amount", nativeAmount.String()))

	return nil
}

// RemoveLiquidity burns pool shares held by the liquidity wallet and
// credits the proceeds back to it, with the same zero-minimum and
// immediate-deadline characteristics as AddLiquidity.
func (b *Bridge) RemoveLiquidity(ctx context.Context, liquidity *big.Int, caller common.Address) error {
	if !b.isOwner(caller) {
		return policy.ErrUnauthorized
	}
	if !b.guard.Enter() {
		return engine.ErrReentrantCall
	}
	defer b.guard.Exit()

	zero := big.NewInt(0)
	if err := b.peer.RemoveLiquidityNative(ctx, b.self, liquidity, zero, zero, b.liquidityWallet, time.Now()); err != nil {
		b.count("remove", "failed")
		b.logger.Error("Remove liquidity failed",
			zap.String("liquidity", liquidity.String()),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrLiquidityOperationFailed, err)
	}

	b.count("remove", "ok")
	b.emitter.Emit(events.EventLiquidityRemoved{
		Liquidity: new(big.Int).Set(liquidity),
		Timestamp: time.Now(),
	})
	b.logger.Info("Liquidity removed", zap.String("liquidity", liquidity.String()))

	return nil
}

func (b *Bridge) count(op, outcome string) {
	if b.metrics != nil {
		b.metrics.LiquidityOps.WithLabelValues(op, outcome).Inc()
	}
}
