// Package amm prices swaps and accounts for liquidity in constant-product
// pools. Every function works on raw integer units; decimals only appear when
// a ratio is finally rounded for presentation.
package amm

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// BpsDenominator is the number of basis points in one whole.
const BpsDenominator = 10_000

// Fee is the fraction of amountIn that reaches the curve after the swap fee,
// Numerator/Denominator. A 0.3% fee is 997/1000.
type Fee struct {
	Numerator   uint64
	Denominator uint64
}

var (
	// NoFee leaves amountIn untouched.
	NoFee = Fee{Numerator: 1, Denominator: 1}
	// UniswapV2Fee is the 0.3% pair fee.
	UniswapV2Fee = Fee{Numerator: 997, Denominator: 1000}
)

// FeeFromBps converts a fee in basis points into a Fee.
func FeeFromBps(bps uint32) (Fee, error) {
	if bps >= BpsDenominator {
		return Fee{}, fmt.Errorf("%w: %d bps", ErrInvalidFee, bps)
	}
	return Fee{Numerator: uint64(BpsDenominator - bps), Denominator: BpsDenominator}, nil
}

// Validate reports whether f keeps a non-zero part of amountIn and never more
// than all of it.
func (f Fee) Validate() error {
	if f.Denominator == 0 || f.Numerator == 0 || f.Numerator > f.Denominator {
		return fmt.Errorf("%w: %d/%d", ErrInvalidFee, f.Numerator, f.Denominator)
	}
	return nil
}

// GetAmountOut computes the constant-product output
//
//	amountIn*num*reserveOut / (reserveIn*den + amountIn*num)
//
// into dst using t1 and t2 as scratch space, so the hot path does not
// allocate. The bool reports that an intermediate product left the 256-bit
// word, in which case dst is cleared. A zero denominator yields zero.
func GetAmountOut(dst, t1, t2 *uint256.Int, amountIn, reserveIn, reserveOut *uint256.Int, fee Fee) (*uint256.Int, bool) {
	var num, den uint256.Int
	num.SetUint64(fee.Numerator)
	den.SetUint64(fee.Denominator)

	// t1 = amountIn * num
	if _, overflow := t1.MulOverflow(amountIn, &num); overflow {
		return dst.Clear(), true
	}
	// t2 = reserveIn * den + t1 (denominator)
	if _, overflow := t2.MulOverflow(reserveIn, &den); overflow {
		return dst.Clear(), true
	}
	if _, overflow := t2.AddOverflow(t2, t1); overflow {
		return dst.Clear(), true
	}
	// dst = t1 * reserveOut (numerator)
	if _, overflow := dst.MulOverflow(t1, reserveOut); overflow {
		return dst.Clear(), true
	}
	return dst.Div(dst, t2), false
}

// GetAmountIn returns the smallest input that yields at least amountOut,
// rounding the exact quotient up by one unit like the on-chain router does.
func GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int, fee Fee) (*uint256.Int, error) {
	if err := fee.Validate(); err != nil {
		return nil, err
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrEmptyPool
	}
	if !amountOut.Lt(reserveOut) {
		return nil, fmt.Errorf("%w: want %s of %s", ErrInsufficientLiquidity, amountOut.Dec(), reserveOut.Dec())
	}

	num := uint256.NewInt(fee.Numerator)
	den := uint256.NewInt(fee.Denominator)

	numerator, overflow := new(uint256.Int).MulOverflow(reserveIn, amountOut)
	if !overflow {
		_, overflow = numerator.MulOverflow(numerator, den)
	}
	if overflow {
		return nil, fmt.Errorf("%w: getAmountIn numerator", fixedpoint.ErrOverflow)
	}
	denominator := new(uint256.Int).Sub(reserveOut, amountOut)
	if _, overflow := denominator.MulOverflow(denominator, num); overflow {
		return nil, fmt.Errorf("%w: getAmountIn denominator", fixedpoint.ErrOverflow)
	}

	in := numerator.Div(numerator, denominator)
	if _, overflow := in.AddOverflow(in, uint256.NewInt(1)); overflow {
		return nil, fmt.Errorf("%w: getAmountIn result", fixedpoint.ErrOverflow)
	}
	return in, nil
}
