package liquidity

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shizukutanaka/Sekisho/internal/token"
)

// ConstantProductPool is an in-process AMM peer holding a token/native
// reserve pair under the x*y=k invariant. It exists so the bridge has
// a working counterparty in tests and demos; production deployments
// point the bridge at a remote pool instead.
type ConstantProductPool struct {
	ledger *token.Ledger
	addr   common.Address

	reserveToken  *big.Int
	reserveNative *big.Int
	totalShares   *big.Int
	shares        map[common.Address]*big.Int

	mu sync.Mutex
}

// NewConstantProductPool creates an empty pool at the given address.
func NewConstantProductPool(ledger *token.Ledger, addr common.Address) *ConstantProductPool {
	return &ConstantProductPool{
		ledger:        ledger,
		addr:          addr,
		reserveToken:  big.NewInt(0),
		reserveNative: big.NewInt(0),
		totalShares:   big.NewInt(0),
		shares:        make(map[common.Address]*big.Int),
	}
}

// PairAddress returns the pool's address.
func (p *ConstantProductPool) PairAddress() common.Address { return p.addr }

// Reserves returns copies of the current reserves.
func (p *ConstantProductPool) Reserves() (tokenReserve, nativeReserve *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.reserveToken), new(big.Int).Set(p.reserveNative)
}

// SharesOf returns the pool shares held by an address.
func (p *ConstantProductPool) SharesOf(addr common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.shares[addr]; ok {
		return new(big.Int).Set(s)
	}
	return big.NewInt(0)
}

// AddLiquidityNative pulls tokenAmount from owner's approved allowance
// and pairs it with nativeAmount, minting pool shares to recipient.
// The first provider sets the ratio; share mint is sqrt(token*native).
func (p *ConstantProductPool) AddLiquidityNative(ctx context.Context, owner common.Address, tokenAmount, nativeAmount, minToken, minNative *big.Int, recipient common.Address, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if expired(deadline) {
		return ErrExpiredDeadline
	}
	if tokenAmount == nil || tokenAmount.Sign() <= 0 || nativeAmount == nil || nativeAmount.Sign() <= 0 {
		return token.ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ledger.MoveFrom(p.addr, owner, p.addr, tokenAmount); err != nil {
		return err
	}

	var minted *big.Int
	if p.totalShares.Sign() == 0 {
		minted = sqrt(new(big.Int).Mul(tokenAmount, nativeAmount))
	} else {
		minted = new(big.Int).Div(
			new(big.Int).Mul(tokenAmount, p.totalShares),
			p.reserveToken,
		)
	}

	p.reserveToken.Add(p.reserveToken, tokenAmount)
	p.reserveNative.Add(p.reserveNative, nativeAmount)
	p.totalShares.Add(p.totalShares, minted)
	p.creditShares(recipient, minted)

	return nil
}

// RemoveLiquidityNative burns liquidity pool shares held by recipient
// and pays out the proportional token and native amounts to recipient.
func (p *ConstantProductPool) RemoveLiquidityNative(ctx context.Context, owner common.Address, liquidity, minToken, minNative *big.Int, recipient common.Address, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if expired(deadline) {
		return ErrExpiredDeadline
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return token.ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held, ok := p.shares[recipient]
	if !ok || held.Cmp(liquidity) < 0 {
		return ErrInsufficientLiquidity
	}

	amountToken := new(big.Int).Div(
		new(big.Int).Mul(liquidity, p.reserveToken),
		p.totalShares,
	)
	amountNative := new(big.Int).Div(
		new(big.Int).Mul(liquidity, p.reserveNative),
		p.totalShares,
	)

	if err := p.ledger.Move(p.addr, recipient, amountToken); err != nil {
		return err
	}

	held.Sub(held, liquidity)
	p.totalShares.Sub(p.totalShares, liquidity)
	p.reserveToken.Sub(p.reserveToken, amountToken)
	p.reserveNative.Sub(p.reserveNative, amountNative)

	return nil
}

func (p *ConstantProductPool) creditShares(to common.Address, amount *big.Int) {
	if s, ok := p.shares[to]; ok {
		s.Add(s, amount)
		return
	}
	p.shares[to] = new(big.Int).Set(amount)
}

// expired compares at second granularity, matching chain timestamp
// semantics: a deadline of "now" passes within the same second.
func expired(deadline time.Time) bool {
	return time.Now().Unix() > deadline.Unix()
}

// sqrt calculates the integer square root of a big.Int
func sqrt(n *big.Int) *big.Int {
	if n.Sign() == 0 {
		return big.NewInt(0)
	}

	x := new(big.Int).Set(n)
	y := new(big.Int).Add(new(big.Int).Div(x, big.NewInt(2)), big.NewInt(1))

	for y.Cmp(x) < 0 {
		x.Set(y)
		y.Add(new(big.Int).Div(n, x), x)
		y.Div(y, big.NewInt(2))
	}

	return x
}
