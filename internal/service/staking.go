package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
	"github.com/nulln0ne/dex-engine/pkg/staking"
)

// projectionWindow is the horizon of StakingPosition.ProjectedRewards.
const projectionWindow = 24 * time.Hour

// StakingPosition is a staker's state plus the pool's yield.
type StakingPosition struct {
	Staked           fixedpoint.Amount
	Earned           fixedpoint.Amount
	TimeStaked       *big.Int
	RewardRate       fixedpoint.Amount
	TotalStaked      fixedpoint.Amount
	APR              staking.RewardEstimate
	APYPercent       decimal.Decimal
	ProjectedRewards fixedpoint.Amount
	Block            uint64
}

// StakingService reports staking positions and yields.
type StakingService struct {
	BaseService
	contract   common.Address
	apyPeriods int
}

func NewStakingService(logger *slog.Logger, reader ChainReader, contract common.Address, apyPeriods int) *StakingService {
	return &StakingService{
		BaseService: BaseService{logger: logger, reader: reader},
		contract:    contract,
		apyPeriods:  apyPeriods,
	}
}

// Info reads user's staking position and the pool yield at the latest block.
func (s *StakingService) Info(ctx context.Context, user common.Address) (StakingPosition, error) {
	bn, block, err := s.pin(ctx)
	if err != nil {
		return StakingPosition{}, err
	}

	info, err := s.reader.StakingInfo(ctx, s.contract, user, block)
	if err != nil {
		return StakingPosition{}, fmt.Errorf("staking info of %s at block %d: %w", user.Hex(), bn, err)
	}
	rawTotal, err := s.reader.TotalStaked(ctx, s.contract, block)
	if err != nil {
		return StakingPosition{}, fmt.Errorf("total staked at block %d: %w", bn, err)
	}

	pos := StakingPosition{TimeStaked: info.TimeStaked, Block: bn}
	for _, f := range []struct {
		dst *fixedpoint.Amount
		raw *big.Int
	}{
		{&pos.Staked, info.StakedAmount},
		{&pos.Earned, info.EarnedRewards},
		{&pos.RewardRate, info.RewardRate},
		{&pos.TotalStaked, rawTotal},
	} {
		if *f.dst, err = fixedpoint.New(f.raw, ShareDecimals); err != nil {
			return StakingPosition{}, err
		}
	}

	state := staking.State{TotalStaked: pos.TotalStaked, RewardRatePerSecond: pos.RewardRate}
	if pos.APR, err = state.APR(); err != nil {
		return StakingPosition{}, err
	}
	if pos.APYPercent, err = staking.EstimateAPY(pos.RewardRate, pos.TotalStaked, s.apyPeriods); err != nil {
		return StakingPosition{}, err
	}
	if pos.ProjectedRewards, err = staking.ProjectRewards(pos.Staked, pos.RewardRate, pos.TotalStaked, projectionWindow); err != nil {
		return StakingPosition{}, err
	}

	s.logger.Debug("staking info computed", "user", user.Hex(), "apr", pos.APR.APRPercent.String(), "block", bn)
	return pos, nil
}
