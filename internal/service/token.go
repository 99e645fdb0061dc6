package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/dex-engine/internal/eth"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// TokenDetails is a token's metadata with its supply scaled by its decimals.
type TokenDetails struct {
	Info        eth.TokenInfo
	TotalSupply fixedpoint.Amount
	Block       uint64
}

// Balance is an account's token balance.
type Balance struct {
	Amount fixedpoint.Amount
	Block  uint64
}

// TokenService reads ERC-20 metadata and balances.
type TokenService struct {
	BaseService
}

func NewTokenService(logger *slog.Logger, reader ChainReader) *TokenService {
	return &TokenService{BaseService: BaseService{logger: logger, reader: reader}}
}

// Token reads the metadata of token at the latest block.
func (s *TokenService) Token(ctx context.Context, token common.Address) (TokenDetails, error) {
	bn, block, err := s.pin(ctx)
	if err != nil {
		return TokenDetails{}, err
	}
	info, err := s.reader.TokenInfo(ctx, token, block)
	if err != nil {
		return TokenDetails{}, fmt.Errorf("token %s at block %d: %w", token.Hex(), bn, err)
	}
	supply, err := fixedpoint.New(info.TotalSupply, info.Decimals)
	if err != nil {
		return TokenDetails{}, err
	}
	return TokenDetails{Info: info, TotalSupply: supply, Block: bn}, nil
}

// Balance reads owner's balance of token at the latest block.
func (s *TokenService) Balance(ctx context.Context, token, owner common.Address) (Balance, error) {
	bn, block, err := s.pin(ctx)
	if err != nil {
		return Balance{}, err
	}
	decimals, err := s.reader.Decimals(ctx, token, block)
	if err != nil {
		return Balance{}, fmt.Errorf("decimals of %s at block %d: %w", token.Hex(), bn, err)
	}
	raw, err := s.reader.BalanceOf(ctx, token, owner, block)
	if err != nil {
		return Balance{}, fmt.Errorf("balance of %s at block %d: %w", owner.Hex(), bn, err)
	}
	amount, err := fixedpoint.New(raw, decimals)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Amount: amount, Block: bn}, nil
}
