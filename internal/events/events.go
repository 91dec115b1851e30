package events

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventTransferExecuted is emitted once per completed transfer with
// the realized tax amount.
type EventTransferExecuted struct {
	From      common.Address
	To        common.Address
	Requested *big.Int
	Tax       *big.Int
	Net       *big.Int
	Direction string
	Timestamp time.Time
}

// EventTaxesUpdated is emitted when the tax schedule is replaced.
type EventTaxesUpdated struct {
	BuyRate      uint64
	SellRate     uint64
	TransferRate uint64
	Timestamp    time.Time
}

// EventMaxTxUpdated is emitted when the per-transaction cap changes.
type EventMaxTxUpdated struct {
	MaxTx     *big.Int
	Timestamp time.Time
}

// EventMaxWalletUpdated is emitted when the per-wallet cap changes.
type EventMaxWalletUpdated struct {
	MaxWallet *big.Int
	Timestamp time.Time
}

// EventTradingEnabled is emitted once when the trading gate opens.
type EventTradingEnabled struct {
	Timestamp time.Time
}

// EventBlacklistUpdated is emitted when blacklist membership changes.
type EventBlacklistUpdated struct {
	Address     common.Address
	Blacklisted bool
	Timestamp   time.Time
}

// EventFeeExemptionUpdated is emitted when fee-exempt membership changes.
type EventFeeExemptionUpdated struct {
	Address   common.Address
	Exempt    bool
	Timestamp time.Time
}

// EventLiquidityAdded is emitted when the bridge adds liquidity.
type EventLiquidityAdded struct {
	TokenAmount  *big.Int
	NativeAmount *big.Int
	Timestamp    time.Time
}

// EventLiquidityRemoved is emitted when the bridge removes liquidity.
type EventLiquidityRemoved struct {
	Liquidity *big.Int
	Timestamp time.Time
}
