package amm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

func pool(t *testing.T, a, b, shares string) amm.PoolState {
	t.Helper()
	return amm.PoolState{
		ReserveA:    amount(t, a, 18),
		ReserveB:    amount(t, b, 18),
		TotalShares: amount(t, shares, 18),
	}
}

func TestLiquidityPosition(t *testing.T) {
	tests := []struct {
		name      string
		user      string
		wantShare string
		wantA     string
		wantB     string
	}{
		{name: "eighth", user: "12.5", wantShare: "12.50", wantA: "125.000000000000000000", wantB: "250.000000000000000000"},
		{name: "third", user: "33.333333333333333333", wantShare: "33.33", wantA: "333.333333333333333330", wantB: "666.666666666666666660"},
		{name: "everything", user: "100", wantShare: "100.00", wantA: "1000.000000000000000000", wantB: "2000.000000000000000000"},
		{name: "nothing", user: "0", wantShare: "0.00", wantA: "0.000000000000000000", wantB: "0.000000000000000000"},
		{name: "dust", user: "0.000000000000000001", wantShare: "0.00", wantA: "0.000000000000000010", wantB: "0.000000000000000020"},
	}

	p := pool(t, "1000", "2000", "100")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := amm.LiquidityPosition(amount(t, tt.user, 18), p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShare, pos.SharePercent.StringFixed(2))
			assert.Equal(t, tt.wantA, pos.UnderlyingA.String())
			assert.Equal(t, tt.wantB, pos.UnderlyingB.String())
		})
	}
}

func TestLiquidityPosition_EmptyPool(t *testing.T) {
	p := pool(t, "0", "0", "0")

	pos, err := amm.LiquidityPosition(amount(t, "5", 18), p)
	require.NoError(t, err)
	assert.True(t, pos.SharePercent.IsZero())
	assert.True(t, pos.UnderlyingA.IsZero())
	assert.True(t, pos.UnderlyingB.IsZero())
}

func TestLiquidityPosition_Errors(t *testing.T) {
	p := pool(t, "1000", "2000", "100")

	_, err := amm.LiquidityPosition(amount(t, "100.000000000000000001", 18), p)
	require.ErrorIs(t, err, amm.ErrSharesExceedSupply)

	_, err = amm.LiquidityPosition(fixedpoint.FromUint64(1, 6), p)
	require.ErrorIs(t, err, fixedpoint.ErrIncompatibleScale)
}

func TestPoolRatio(t *testing.T) {
	r, err := amm.PoolRatio(pool(t, "1000", "2000", "100"))
	require.NoError(t, err)
	assert.Equal(t, "2.000000", r.StringFixed(amm.RatioDecimals))

	r, err = amm.PoolRatio(pool(t, "3", "1", "1"))
	require.NoError(t, err)
	assert.Equal(t, "0.333333", r.StringFixed(amm.RatioDecimals))

	mixed := amm.PoolState{
		ReserveA:    amount(t, "100", 18),
		ReserveB:    amount(t, "200000", 6),
		TotalShares: amount(t, "1", 18),
	}
	r, err = amm.PoolRatio(mixed)
	require.NoError(t, err)
	assert.Equal(t, "2000.000000", r.StringFixed(amm.RatioDecimals))

	r, err = amm.PoolRatio(pool(t, "0", "5", "0"))
	require.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestOptimalAmountB(t *testing.T) {
	p := pool(t, "1000", "2000", "100")

	b, err := amm.OptimalAmountB(amount(t, "10", 18), p)
	require.NoError(t, err)
	assert.Equal(t, "20.000000000000000000", b.String())

	_, err = amm.OptimalAmountB(amount(t, "10", 18), pool(t, "0", "0", "0"))
	require.ErrorIs(t, err, amm.ErrEmptyPool)

	_, err = amm.OptimalAmountB(fixedpoint.FromUint64(1, 6), p)
	require.ErrorIs(t, err, fixedpoint.ErrIncompatibleScale)
}

func TestEstimateDeposit(t *testing.T) {
	t.Run("first_deposit", func(t *testing.T) {
		shares, err := amm.EstimateDeposit(amount(t, "1", 18), amount(t, "4", 18), pool(t, "0", "0", "0"))
		require.NoError(t, err)
		// sqrt(1e18 * 4e18) - 1000
		assert.Equal(t, "1999999999999999000", shares.Raw().String())
	})

	t.Run("first_deposit_too_small", func(t *testing.T) {
		_, err := amm.EstimateDeposit(fixedpoint.FromUint64(1000, 18), fixedpoint.FromUint64(1000, 18), pool(t, "0", "0", "0"))
		require.ErrorIs(t, err, amm.ErrInsufficientLiquidityMinted)
	})

	t.Run("proportional_takes_smaller_side", func(t *testing.T) {
		shares, err := amm.EstimateDeposit(amount(t, "10", 18), amount(t, "30", 18), pool(t, "1000", "2000", "100"))
		require.NoError(t, err)
		assert.Equal(t, "1.000000000000000000", shares.String())
	})

	t.Run("rounds_to_nothing", func(t *testing.T) {
		_, err := amm.EstimateDeposit(fixedpoint.FromUint64(1, 18), fixedpoint.FromUint64(1, 18), pool(t, "1000", "2000", "100"))
		require.ErrorIs(t, err, amm.ErrInsufficientLiquidityMinted)
	})

	t.Run("scale_mismatch", func(t *testing.T) {
		_, err := amm.EstimateDeposit(fixedpoint.FromUint64(1, 6), amount(t, "1", 18), pool(t, "1000", "2000", "100"))
		require.ErrorIs(t, err, fixedpoint.ErrIncompatibleScale)
	})
}
