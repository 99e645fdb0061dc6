// Package service contains business logic and integrations backing HTTP handlers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/dex-engine/internal/eth"
)

// ShareDecimals is the scale of pool liquidity shares and of the staked
// token, both 18-decimal ERC-20s.
const ShareDecimals = 18

// ChainReader reads contract state at a pinned block. *eth.Reader
// implements it.
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TokenInfo(ctx context.Context, token common.Address, block *big.Int) (eth.TokenInfo, error)
	Decimals(ctx context.Context, token common.Address, block *big.Int) (uint8, error)
	BalanceOf(ctx context.Context, token, owner common.Address, block *big.Int) (*big.Int, error)
	Reserves(ctx context.Context, pool common.Address, block *big.Int) (reserveA, reserveB *big.Int, err error)
	TotalShares(ctx context.Context, pool common.Address, block *big.Int) (*big.Int, error)
	StakingInfo(ctx context.Context, staking, account common.Address, block *big.Int) (eth.StakingInfo, error)
	TotalStaked(ctx context.Context, staking common.Address, block *big.Int) (*big.Int, error)
}

// BaseService provides common dependencies for service types.
type BaseService struct {
	logger *slog.Logger
	reader ChainReader
}

// pin returns the latest block number; every read of one request uses it.
func (s *BaseService) pin(ctx context.Context) (uint64, *big.Int, error) {
	bn, err := s.reader.BlockNumber(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("block number: %w", err)
	}
	return bn, new(big.Int).SetUint64(bn), nil
}
