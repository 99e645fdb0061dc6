package amm

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// PriceDecimals is the number of fractional digits kept in prices.
const PriceDecimals = 18

// Quote is the result of pricing an exact-input swap.
type Quote struct {
	// AmountOut is expressed in reserveOut's decimals.
	AmountOut fixedpoint.Amount
	// PriceImpactPercent is the shortfall of the trade against execution at
	// the pre-trade spot price, fee included, in percent.
	PriceImpactPercent decimal.Decimal
	// EffectivePrice is amountIn/amountOut in whole tokens.
	EffectivePrice decimal.Decimal
	// SpotPrice is reserveIn/reserveOut in whole tokens before the trade.
	SpotPrice decimal.Decimal
}

// Pricer quotes swaps against a pool snapshot with a fixed fee.
type Pricer struct {
	Fee Fee
}

// NewPricer returns a Pricer charging fee.
func NewPricer(fee Fee) (Pricer, error) {
	if err := fee.Validate(); err != nil {
		return Pricer{}, err
	}
	return Pricer{Fee: fee}, nil
}

// QuoteExactIn prices a swap without a fee.
func QuoteExactIn(amountIn, reserveIn, reserveOut fixedpoint.Amount) (Quote, error) {
	return Pricer{Fee: NoFee}.Quote(amountIn, reserveIn, reserveOut)
}

// Quote prices swapping amountIn into a pool holding reserveIn and
// reserveOut. amountIn and reserveIn must share decimals; reserveOut may
// belong to a token with a different scale.
func (p Pricer) Quote(amountIn, reserveIn, reserveOut fixedpoint.Amount) (Quote, error) {
	if err := p.Fee.Validate(); err != nil {
		return Quote{}, err
	}
	if amountIn.Decimals() != reserveIn.Decimals() {
		return Quote{}, fmt.Errorf("%w: amountIn has %d decimals, reserveIn %d",
			fixedpoint.ErrIncompatibleScale, amountIn.Decimals(), reserveIn.Decimals())
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return Quote{}, ErrEmptyPool
	}

	spot, err := priceRatio(reserveIn, reserveOut)
	if err != nil {
		return Quote{}, err
	}
	if amountIn.IsZero() {
		return Quote{
			AmountOut:          fixedpoint.Zero(reserveOut.Decimals()),
			PriceImpactPercent: decimal.Zero,
			EffectivePrice:     decimal.Zero,
			SpotPrice:          spot,
		}, nil
	}

	var dst, t1, t2 uint256.Int
	out, overflow := GetAmountOut(&dst, &t1, &t2, amountIn.Uint256(), reserveIn.Uint256(), reserveOut.Uint256(), p.Fee)
	if overflow {
		return Quote{}, fmt.Errorf("%w: quoting %s against reserve %s", fixedpoint.ErrOverflow, amountIn, reserveIn)
	}
	amountOut := fixedpoint.FromUint256(out, reserveOut.Decimals())

	effective := decimal.Zero
	if !amountOut.IsZero() {
		if effective, err = priceRatio(amountIn, amountOut); err != nil {
			return Quote{}, err
		}
	}

	impact, err := p.priceImpact(amountIn.Raw(), reserveIn.Raw())
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		AmountOut:          amountOut,
		PriceImpactPercent: impact,
		EffectivePrice:     effective,
		SpotPrice:          spot,
	}, nil
}

// priceImpact compares the exact curve output with execution at spot:
//
//	1 - (out/in)/(reserveOut/reserveIn) = (rIn*(den-num) + in*num) / (rIn*den + in*num)
//
// The ratio is only rounded once, at the final percentage.
func (p Pricer) priceImpact(amountIn, reserveIn *big.Int) (decimal.Decimal, error) {
	num := new(big.Int).SetUint64(p.Fee.Numerator)
	den := new(big.Int).SetUint64(p.Fee.Denominator)

	inWithFee := new(big.Int).Mul(amountIn, num)
	kept := new(big.Int).Mul(reserveIn, new(big.Int).Sub(den, num))
	total := new(big.Int).Mul(reserveIn, den)

	return fixedpoint.Percent(kept.Add(kept, inWithFee), total.Add(total, inWithFee))
}

// priceRatio returns a/b in whole tokens, rounded half-up to PriceDecimals.
func priceRatio(a, b fixedpoint.Amount) (decimal.Decimal, error) {
	num := new(big.Int).Mul(a.Raw(), fixedpoint.Pow10(b.Decimals()))
	den := new(big.Int).Mul(b.Raw(), fixedpoint.Pow10(a.Decimals()))
	return fixedpoint.QuoRoundHalfUp(num, den, PriceDecimals)
}

// MinimumAmountOut applies a slippage tolerance to a quoted output, rounding
// down.
func MinimumAmountOut(amountOut fixedpoint.Amount, slippageBps uint32) (fixedpoint.Amount, error) {
	if slippageBps > BpsDenominator {
		return fixedpoint.Amount{}, fmt.Errorf("%w: %d", ErrInvalidSlippage, slippageBps)
	}
	return amountOut.MulDivFloor(
		big.NewInt(int64(BpsDenominator-slippageBps)),
		big.NewInt(BpsDenominator),
	)
}
