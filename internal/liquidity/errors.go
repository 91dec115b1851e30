package liquidity

import "errors"

// Liquidity errors
var (
	ErrLiquidityOperationFailed = errors.New("liquidity operation failed")
	ErrExpiredDeadline          = errors.New("deadline expired")
	ErrInsufficientLiquidity    = errors.New("insufficient liquidity")
)
