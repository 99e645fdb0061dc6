package amm

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// MinimumLiquidity is the number of raw share units burned on the first
// deposit into an empty pool.
const MinimumLiquidity = 1000

// RatioDecimals is the number of fractional digits kept in PoolRatio.
const RatioDecimals = 6

// PoolState is a snapshot of a two-token pool. TotalShares == 0 is a valid
// empty pool.
type PoolState struct {
	ReserveA    fixedpoint.Amount
	ReserveB    fixedpoint.Amount
	TotalShares fixedpoint.Amount
}

// IsEmpty reports whether no shares have been minted.
func (p PoolState) IsEmpty() bool {
	return p.TotalShares.IsZero()
}

// Position is a liquidity provider's claim on the pool.
type Position struct {
	SharePercent decimal.Decimal
	UnderlyingA  fixedpoint.Amount
	UnderlyingB  fixedpoint.Amount
}

// LiquidityPosition converts userShares into the underlying reserves they
// redeem for. Underlying amounts are rounded down so a partition of all
// shares never claims more than the pool holds.
func LiquidityPosition(userShares fixedpoint.Amount, pool PoolState) (Position, error) {
	if userShares.Decimals() != pool.TotalShares.Decimals() {
		return Position{}, fmt.Errorf("%w: shares have %d decimals, supply %d",
			fixedpoint.ErrIncompatibleScale, userShares.Decimals(), pool.TotalShares.Decimals())
	}
	if pool.IsEmpty() {
		return Position{
			SharePercent: decimal.Zero,
			UnderlyingA:  fixedpoint.Zero(pool.ReserveA.Decimals()),
			UnderlyingB:  fixedpoint.Zero(pool.ReserveB.Decimals()),
		}, nil
	}
	if exceeds, _ := userShares.GreaterThan(pool.TotalShares); exceeds {
		return Position{}, fmt.Errorf("%w: %s of %s", ErrSharesExceedSupply, userShares, pool.TotalShares)
	}

	shares, supply := userShares.Raw(), pool.TotalShares.Raw()
	percent, err := fixedpoint.Percent(shares, supply)
	if err != nil {
		return Position{}, err
	}
	a, err := pool.ReserveA.MulDivFloor(shares, supply)
	if err != nil {
		return Position{}, err
	}
	b, err := pool.ReserveB.MulDivFloor(shares, supply)
	if err != nil {
		return Position{}, err
	}
	return Position{SharePercent: percent, UnderlyingA: a, UnderlyingB: b}, nil
}

// PoolRatio returns ReserveB/ReserveA in whole tokens, rounded half-up to
// RatioDecimals. An empty side yields zero.
func PoolRatio(pool PoolState) (decimal.Decimal, error) {
	if pool.ReserveA.IsZero() {
		return decimal.Zero, nil
	}
	return fixedpoint.QuoRoundHalfUp(
		new(big.Int).Mul(pool.ReserveB.Raw(), fixedpoint.Pow10(pool.ReserveA.Decimals())),
		new(big.Int).Mul(pool.ReserveA.Raw(), fixedpoint.Pow10(pool.ReserveB.Decimals())),
		RatioDecimals,
	)
}

// OptimalAmountB returns how much token B must accompany amountA to deposit at
// the current pool ratio.
func OptimalAmountB(amountA fixedpoint.Amount, pool PoolState) (fixedpoint.Amount, error) {
	if amountA.Decimals() != pool.ReserveA.Decimals() {
		return fixedpoint.Amount{}, fmt.Errorf("%w: amountA has %d decimals, reserveA %d",
			fixedpoint.ErrIncompatibleScale, amountA.Decimals(), pool.ReserveA.Decimals())
	}
	if pool.ReserveA.IsZero() || pool.ReserveB.IsZero() {
		return fixedpoint.Amount{}, ErrEmptyPool
	}
	return fixedpoint.New(
		mulDivFloor(amountA.Raw(), pool.ReserveB.Raw(), pool.ReserveA.Raw()),
		pool.ReserveB.Decimals(),
	)
}

// EstimateDeposit returns the pool shares minted for depositing amountA and
// amountB. The first deposit mints the geometric mean minus MinimumLiquidity;
// later deposits mint the smaller of the two proportional claims.
func EstimateDeposit(amountA, amountB fixedpoint.Amount, pool PoolState) (fixedpoint.Amount, error) {
	if amountA.Decimals() != pool.ReserveA.Decimals() || amountB.Decimals() != pool.ReserveB.Decimals() {
		return fixedpoint.Amount{}, fmt.Errorf("%w: deposit does not match reserve decimals", fixedpoint.ErrIncompatibleScale)
	}

	var minted *big.Int
	if pool.IsEmpty() {
		product := new(big.Int).Mul(amountA.Raw(), amountB.Raw())
		minted = product.Sqrt(product)
		minted.Sub(minted, big.NewInt(MinimumLiquidity))
	} else {
		if pool.ReserveA.IsZero() || pool.ReserveB.IsZero() {
			return fixedpoint.Amount{}, ErrEmptyPool
		}
		supply := pool.TotalShares.Raw()
		fromA := mulDivFloor(amountA.Raw(), supply, pool.ReserveA.Raw())
		fromB := mulDivFloor(amountB.Raw(), supply, pool.ReserveB.Raw())
		minted = fromA
		if fromB.Cmp(fromA) < 0 {
			minted = fromB
		}
	}

	if minted.Sign() <= 0 {
		return fixedpoint.Amount{}, ErrInsufficientLiquidityMinted
	}
	return fixedpoint.New(minted, pool.TotalShares.Decimals())
}

func mulDivFloor(a, b, c *big.Int) *big.Int {
	v := new(big.Int).Mul(a, b)
	return v.Quo(v, c)
}
