package amm_test

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

var hundred = decimal.NewFromInt(100)

func maxWord() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
}

func drawRaw(t *rapid.T, label string, lo, hi uint64) fixedpoint.Amount {
	return fixedpoint.FromUint64(rapid.Uint64Range(lo, hi).Draw(t, label), 18)
}

func drawFee(t *rapid.T) amm.Fee {
	bps := rapid.Uint32Range(0, 1_000).Draw(t, "fee_bps")
	fee, err := amm.FeeFromBps(bps)
	if err != nil {
		t.Fatalf("fee: %v", err)
	}
	return fee
}

func TestQuote_ConstantProductNeverDecreases(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := amm.Pricer{Fee: drawFee(t)}
		rIn := drawRaw(t, "reserve_in", 1, 1<<62)
		rOut := drawRaw(t, "reserve_out", 1, 1<<62)
		in := drawRaw(t, "amount_in", 0, 1<<62)

		q, err := p.Quote(in, rIn, rOut)
		if err != nil {
			t.Fatalf("quote: %v", err)
		}

		before := new(big.Int).Mul(rIn.Raw(), rOut.Raw())
		after := new(big.Int).Mul(
			new(big.Int).Add(rIn.Raw(), in.Raw()),
			new(big.Int).Sub(rOut.Raw(), q.AmountOut.Raw()),
		)
		if after.Cmp(before) < 0 {
			t.Fatalf("k decreased: %s -> %s", before, after)
		}
		if q.AmountOut.Raw().Cmp(rOut.Raw()) >= 0 {
			t.Fatalf("output %s drains reserve %s", q.AmountOut.Raw(), rOut.Raw())
		}
	})
}

func TestQuote_ImpactMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := amm.Pricer{Fee: drawFee(t)}
		rIn := drawRaw(t, "reserve_in", 1, 1<<62)
		rOut := drawRaw(t, "reserve_out", 1, 1<<62)
		small := rapid.Uint64Range(0, 1<<61).Draw(t, "small")
		extra := rapid.Uint64Range(0, 1<<61).Draw(t, "extra")

		q1, err := p.Quote(fixedpoint.FromUint64(small, 18), rIn, rOut)
		if err != nil {
			t.Fatalf("quote small: %v", err)
		}
		q2, err := p.Quote(fixedpoint.FromUint64(small+extra, 18), rIn, rOut)
		if err != nil {
			t.Fatalf("quote large: %v", err)
		}

		if q2.PriceImpactPercent.LessThan(q1.PriceImpactPercent) {
			t.Fatalf("impact fell from %s to %s", q1.PriceImpactPercent, q2.PriceImpactPercent)
		}
		if q1.PriceImpactPercent.IsNegative() || q2.PriceImpactPercent.GreaterThan(hundred) {
			t.Fatalf("impact out of range: %s, %s", q1.PriceImpactPercent, q2.PriceImpactPercent)
		}
		if q2.AmountOut.Raw().Cmp(q1.AmountOut.Raw()) < 0 {
			t.Fatalf("output fell from %s to %s", q1.AmountOut, q2.AmountOut)
		}
	})
}

func TestQuote_ZeroInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := amm.Pricer{Fee: drawFee(t)}
		q, err := p.Quote(fixedpoint.Zero(18), drawRaw(t, "reserve_in", 1, 1<<62), drawRaw(t, "reserve_out", 1, 1<<62))
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if !q.AmountOut.IsZero() || !q.PriceImpactPercent.IsZero() {
			t.Fatalf("zero input quoted %s at %s%%", q.AmountOut, q.PriceImpactPercent)
		}
	})
}

func TestGetAmountOut_MatchesBigInt(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fee := drawFee(t)
		in := new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 0, 12).Draw(t, "in"))
		rIn := new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 1, 12).Draw(t, "reserve_in"))
		rOut := new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 1, 12).Draw(t, "reserve_out"))
		if rIn.Sign() == 0 {
			rIn.SetInt64(1)
		}

		var dst, t1, t2 uint256.Int
		got, overflow := amm.GetAmountOut(&dst, &t1, &t2,
			uint256.MustFromBig(in), uint256.MustFromBig(rIn), uint256.MustFromBig(rOut), fee)
		if overflow {
			t.Fatalf("unexpected overflow")
		}

		withFee := new(big.Int).Mul(in, new(big.Int).SetUint64(fee.Numerator))
		den := new(big.Int).Mul(rIn, new(big.Int).SetUint64(fee.Denominator))
		den.Add(den, withFee)
		want := new(big.Int).Mul(withFee, rOut)
		want.Quo(want, den)

		if got.ToBig().Cmp(want) != 0 {
			t.Fatalf("got %s want %s", got.Dec(), want)
		}
	})
}

func TestLiquidityPosition_ShareConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := amm.PoolState{
			ReserveA:    drawRaw(t, "reserve_a", 0, 1<<62),
			ReserveB:    drawRaw(t, "reserve_b", 0, 1<<62),
			TotalShares: drawRaw(t, "total_shares", 1, 1<<62),
		}
		total := p.TotalShares.Raw().Uint64()

		// split the supply into consecutive holdings
		cuts := rapid.SliceOfN(rapid.Uint64Range(0, total), 0, 8).Draw(t, "cuts")
		remaining := total
		holdings := make([]uint64, 0, len(cuts)+1)
		for _, c := range cuts {
			c %= remaining + 1
			holdings = append(holdings, c)
			remaining -= c
		}
		holdings = append(holdings, remaining)

		sumA, sumB := new(big.Int), new(big.Int)
		for _, h := range holdings {
			pos, err := amm.LiquidityPosition(fixedpoint.FromUint64(h, 18), p)
			if err != nil {
				t.Fatalf("position: %v", err)
			}
			sumA.Add(sumA, pos.UnderlyingA.Raw())
			sumB.Add(sumB, pos.UnderlyingB.Raw())
		}

		if sumA.Cmp(p.ReserveA.Raw()) > 0 || sumB.Cmp(p.ReserveB.Raw()) > 0 {
			t.Fatalf("over-allocated: A %s/%s B %s/%s", sumA, p.ReserveA.Raw(), sumB, p.ReserveB.Raw())
		}
	})
}

func TestEstimateDeposit_NeverExceedsClaim(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := amm.PoolState{
			ReserveA:    drawRaw(t, "reserve_a", 1, 1<<62),
			ReserveB:    drawRaw(t, "reserve_b", 1, 1<<62),
			TotalShares: drawRaw(t, "total_shares", 1, 1<<62),
		}
		a := drawRaw(t, "amount_a", 0, 1<<62)
		b := drawRaw(t, "amount_b", 0, 1<<62)

		minted, err := amm.EstimateDeposit(a, b, p)
		if err != nil {
			return
		}

		supply := p.TotalShares.Raw()
		for _, side := range []struct{ deposit, reserve *big.Int }{
			{a.Raw(), p.ReserveA.Raw()},
			{b.Raw(), p.ReserveB.Raw()},
		} {
			// minted/supply <= deposit/reserve
			lhs := new(big.Int).Mul(minted.Raw(), side.reserve)
			rhs := new(big.Int).Mul(side.deposit, supply)
			if lhs.Cmp(rhs) > 0 {
				t.Fatalf("minted %s exceeds proportional claim", minted.Raw())
			}
		}
	})
}
