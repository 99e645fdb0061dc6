package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// PoolContracts identifies the pool and its two tokens.
type PoolContracts struct {
	Pool   common.Address
	TokenA common.Address
	TokenB common.Address
}

// PoolInfo is the pool snapshot with its B-per-A ratio.
type PoolInfo struct {
	Pool  amm.PoolState
	Ratio decimal.Decimal
	Block uint64
}

// PositionInfo is a liquidity provider's holding.
type PositionInfo struct {
	Shares   fixedpoint.Amount
	Position amm.Position
	Block    uint64
}

// DepositEstimate is the outcome of adding liquidity at the current ratio.
type DepositEstimate struct {
	AmountA fixedpoint.Amount
	AmountB fixedpoint.Amount
	Shares  fixedpoint.Amount
	// SharePercent is the depositor's share of the pool after the deposit.
	SharePercent decimal.Decimal
	Block        uint64
}

// PoolService reports pool state and liquidity positions.
type PoolService struct {
	BaseService
	contracts PoolContracts
}

func NewPoolService(logger *slog.Logger, reader ChainReader, contracts PoolContracts) *PoolService {
	return &PoolService{
		BaseService: BaseService{logger: logger, reader: reader},
		contracts:   contracts,
	}
}

// Info reads reserves and share supply at the latest block.
func (s *PoolService) Info(ctx context.Context) (PoolInfo, error) {
	bn, block, err := s.pin(ctx)
	if err != nil {
		return PoolInfo{}, err
	}
	pool, err := s.snapshot(ctx, block)
	if err != nil {
		return PoolInfo{}, err
	}
	ratio, err := amm.PoolRatio(pool)
	if err != nil {
		return PoolInfo{}, err
	}
	return PoolInfo{Pool: pool, Ratio: ratio, Block: bn}, nil
}

// Position converts user's pool shares into underlying token amounts.
func (s *PoolService) Position(ctx context.Context, user common.Address) (PositionInfo, error) {
	s.logger.Debug("reading position", "user", user.Hex())

	bn, block, err := s.pin(ctx)
	if err != nil {
		return PositionInfo{}, err
	}
	pool, err := s.snapshot(ctx, block)
	if err != nil {
		return PositionInfo{}, err
	}
	raw, err := s.reader.BalanceOf(ctx, s.contracts.Pool, user, block)
	if err != nil {
		return PositionInfo{}, fmt.Errorf("shares of %s at block %d: %w", user.Hex(), bn, err)
	}
	shares, err := fixedpoint.New(raw, ShareDecimals)
	if err != nil {
		return PositionInfo{}, err
	}

	pos, err := amm.LiquidityPosition(shares, pool)
	if err != nil {
		return PositionInfo{}, err
	}
	s.logger.Debug("position computed", "user", user.Hex(), "share", pos.SharePercent.String(), "block", bn)
	return PositionInfo{Shares: shares, Position: pos, Block: bn}, nil
}

// EstimateDeposit prices a liquidity deposit. An empty amountB is filled in
// at the pool ratio; the first deposit into an empty pool needs both.
func (s *PoolService) EstimateDeposit(ctx context.Context, amountA, amountB string) (DepositEstimate, error) {
	bn, block, err := s.pin(ctx)
	if err != nil {
		return DepositEstimate{}, err
	}
	pool, err := s.snapshot(ctx, block)
	if err != nil {
		return DepositEstimate{}, err
	}

	a, err := fixedpoint.Parse(amountA, pool.ReserveA.Decimals())
	if err != nil {
		return DepositEstimate{}, err
	}
	var b fixedpoint.Amount
	if amountB == "" {
		b, err = amm.OptimalAmountB(a, pool)
	} else {
		b, err = fixedpoint.Parse(amountB, pool.ReserveB.Decimals())
	}
	if err != nil {
		return DepositEstimate{}, err
	}

	shares, err := amm.EstimateDeposit(a, b, pool)
	if err != nil {
		return DepositEstimate{}, err
	}
	after, err := pool.TotalShares.Add(shares)
	if err != nil {
		return DepositEstimate{}, err
	}
	if pool.IsEmpty() {
		// the locked minimum belongs to nobody
		if after, err = after.Add(fixedpoint.FromUint64(amm.MinimumLiquidity, after.Decimals())); err != nil {
			return DepositEstimate{}, err
		}
	}
	share, err := fixedpoint.Percent(shares.Raw(), after.Raw())
	if err != nil {
		return DepositEstimate{}, err
	}

	s.logger.Debug("deposit estimated", "a", a.String(), "b", b.String(), "shares", shares.String(), "block", bn)
	return DepositEstimate{AmountA: a, AmountB: b, Shares: shares, SharePercent: share, Block: bn}, nil
}

// snapshot reads the pool state at block. Reserves take their token's
// decimals, shares ShareDecimals.
func (s *PoolService) snapshot(ctx context.Context, block *big.Int) (amm.PoolState, error) {
	decA, err := s.reader.Decimals(ctx, s.contracts.TokenA, block)
	if err != nil {
		return amm.PoolState{}, fmt.Errorf("tokenA decimals at block %s: %w", block, err)
	}
	decB, err := s.reader.Decimals(ctx, s.contracts.TokenB, block)
	if err != nil {
		return amm.PoolState{}, fmt.Errorf("tokenB decimals at block %s: %w", block, err)
	}
	rawA, rawB, err := s.reader.Reserves(ctx, s.contracts.Pool, block)
	if err != nil {
		return amm.PoolState{}, fmt.Errorf("reserves at block %s: %w", block, err)
	}
	rawShares, err := s.reader.TotalShares(ctx, s.contracts.Pool, block)
	if err != nil {
		return amm.PoolState{}, fmt.Errorf("total shares at block %s: %w", block, err)
	}

	var pool amm.PoolState
	for _, f := range []struct {
		dst      *fixedpoint.Amount
		raw      *big.Int
		decimals uint8
	}{
		{&pool.ReserveA, rawA, decA},
		{&pool.ReserveB, rawB, decB},
		{&pool.TotalShares, rawShares, ShareDecimals},
	} {
		if *f.dst, err = fixedpoint.New(f.raw, f.decimals); err != nil {
			return amm.PoolState{}, err
		}
	}
	return pool, nil
}
