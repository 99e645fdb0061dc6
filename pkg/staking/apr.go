// Package staking estimates yields of a reward-rate staking pool.
package staking

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// SecondsPerYear is a 365-day year.
const SecondsPerYear = 31_536_000

// MaxCompoundingPeriods caps EstimateAPY at hourly compounding.
const MaxCompoundingPeriods = 8760

var (
	ErrInvalidPeriods    = errors.New("staking: compounding periods out of range")
	ErrStakeExceedsTotal = errors.New("staking: stake exceeds total staked")
	ErrInvalidDuration   = errors.New("staking: negative duration")
)

// State is a snapshot of a staking pool.
type State struct {
	TotalStaked         fixedpoint.Amount
	RewardRatePerSecond fixedpoint.Amount
}

// RewardEstimate is the non-compounding yield of a pool.
type RewardEstimate struct {
	APRPercent decimal.Decimal
}

// APR is EstimateAPR over the snapshot.
func (s State) APR() (RewardEstimate, error) {
	return EstimateAPR(s.RewardRatePerSecond, s.TotalStaked)
}

// EstimateAPR returns yearly emissions as a percentage of the staked amount,
// rounded half-up to two places. Reward and stake token must share decimals.
// Nothing staked yields 0.
func EstimateAPR(rewardRatePerSecond, totalStaked fixedpoint.Amount) (RewardEstimate, error) {
	if err := sameScale(rewardRatePerSecond, totalStaked); err != nil {
		return RewardEstimate{}, err
	}
	if totalStaked.IsZero() {
		return RewardEstimate{APRPercent: decimal.Zero}, nil
	}

	yearly := new(big.Int).Mul(rewardRatePerSecond.Raw(), big.NewInt(SecondsPerYear))
	apr, err := fixedpoint.Percent(yearly, totalStaked.Raw())
	if err != nil {
		return RewardEstimate{}, err
	}
	return RewardEstimate{APRPercent: apr}, nil
}

// EstimateAPY compounds the APR periodsPerYear times:
//
//	(1 + Y/(S*n))^n - 1 = ((S*n + Y)^n - (S*n)^n) / (S*n)^n
//
// The powers are exact, only the final percentage is rounded.
func EstimateAPY(rewardRatePerSecond, totalStaked fixedpoint.Amount, periodsPerYear int) (decimal.Decimal, error) {
	if periodsPerYear < 1 || periodsPerYear > MaxCompoundingPeriods {
		return decimal.Decimal{}, fmt.Errorf("%w: %d", ErrInvalidPeriods, periodsPerYear)
	}
	if err := sameScale(rewardRatePerSecond, totalStaked); err != nil {
		return decimal.Decimal{}, err
	}
	if totalStaked.IsZero() || rewardRatePerSecond.IsZero() {
		return decimal.Zero, nil
	}

	n := big.NewInt(int64(periodsPerYear))
	yearly := new(big.Int).Mul(rewardRatePerSecond.Raw(), big.NewInt(SecondsPerYear))
	base := new(big.Int).Mul(totalStaked.Raw(), n)

	// reduce Y/(S*n) first to keep the powers small
	g := new(big.Int).GCD(nil, nil, yearly, base)
	yearly.Quo(yearly, g)
	base.Quo(base, g)

	den := new(big.Int).Exp(base, n, nil)
	num := new(big.Int).Exp(base.Add(base, yearly), n, nil)
	return fixedpoint.Percent(num.Sub(num, den), den)
}

// ProjectRewards returns the rewards userStake earns over d at the current
// rate, rounded down to whole seconds and raw units.
func ProjectRewards(userStake, rewardRatePerSecond, totalStaked fixedpoint.Amount, d time.Duration) (fixedpoint.Amount, error) {
	if d < 0 {
		return fixedpoint.Amount{}, fmt.Errorf("%w: %s", ErrInvalidDuration, d)
	}
	if err := sameScale(userStake, totalStaked); err != nil {
		return fixedpoint.Amount{}, err
	}
	if exceeds, _ := userStake.GreaterThan(totalStaked); exceeds {
		return fixedpoint.Amount{}, fmt.Errorf("%w: %s of %s", ErrStakeExceedsTotal, userStake, totalStaked)
	}
	if totalStaked.IsZero() {
		return fixedpoint.Zero(rewardRatePerSecond.Decimals()), nil
	}

	emitted, err := rewardRatePerSecond.MulRaw(big.NewInt(int64(d / time.Second)))
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	return emitted.MulDivFloor(userStake.Raw(), totalStaked.Raw())
}

func sameScale(a, b fixedpoint.Amount) error {
	if a.Decimals() != b.Decimals() {
		return fmt.Errorf("%w: %d vs %d decimals", fixedpoint.ErrIncompatibleScale, a.Decimals(), b.Decimals())
	}
	return nil
}
