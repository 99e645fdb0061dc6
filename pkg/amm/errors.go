package amm

import "errors"

var (
	ErrEmptyPool                   = errors.New("amm: pool has a zero reserve")
	ErrInvalidFee                  = errors.New("amm: invalid fee")
	ErrInvalidSlippage             = errors.New("amm: slippage must be within 0..10000 bps")
	ErrSharesExceedSupply          = errors.New("amm: shares exceed total supply")
	ErrInsufficientLiquidity       = errors.New("amm: insufficient liquidity for requested output")
	ErrInsufficientLiquidityMinted = errors.New("amm: insufficient liquidity minted")
)
