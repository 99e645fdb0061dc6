package service

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// QuoteRequest describes an exact-input swap. AmountIn is a decimal string in
// whole tokenIn units. A nil SlippageBps uses the service default.
type QuoteRequest struct {
	AmountIn    string
	TokenIn     common.Address
	TokenOut    common.Address
	SlippageBps *uint32
}

// QuoteResult is a priced swap with the snapshot it was priced against.
type QuoteResult struct {
	AmountIn         fixedpoint.Amount
	Quote            amm.Quote
	MinimumAmountOut fixedpoint.Amount
	SlippageBps      uint32
	Pool             amm.PoolState
	Block            uint64
}

// SwapService prices swaps against the configured pool.
type SwapService struct {
	pool               *PoolService
	pricer             amm.Pricer
	defaultSlippageBps uint32
}

func NewSwapService(logger *slog.Logger, reader ChainReader, contracts PoolContracts, pricer amm.Pricer, defaultSlippageBps uint32) *SwapService {
	return &SwapService{
		pool:               NewPoolService(logger, reader, contracts),
		pricer:             pricer,
		defaultSlippageBps: defaultSlippageBps,
	}
}

// Quote prices req at the latest block.
func (s *SwapService) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	logger := s.pool.logger
	logger.Debug("quoting swap", "in", req.AmountIn, "tokenIn", req.TokenIn.Hex(), "tokenOut", req.TokenOut.Hex())

	if req.TokenIn == req.TokenOut {
		return QuoteResult{}, ErrSameToken
	}
	c := s.pool.contracts
	var aToB bool
	switch {
	case req.TokenIn == c.TokenA && req.TokenOut == c.TokenB:
		aToB = true
	case req.TokenIn == c.TokenB && req.TokenOut == c.TokenA:
		aToB = false
	default:
		return QuoteResult{}, ErrPairMismatch
	}

	slippage := s.defaultSlippageBps
	if req.SlippageBps != nil {
		slippage = *req.SlippageBps
	}

	bn, block, err := s.pool.pin(ctx)
	if err != nil {
		return QuoteResult{}, err
	}
	pool, err := s.pool.snapshot(ctx, block)
	if err != nil {
		return QuoteResult{}, err
	}

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if !aToB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}

	amountIn, err := fixedpoint.Parse(req.AmountIn, reserveIn.Decimals())
	if err != nil {
		return QuoteResult{}, err
	}

	quote, err := s.pricer.Quote(amountIn, reserveIn, reserveOut)
	if err != nil {
		return QuoteResult{}, err
	}
	minOut, err := amm.MinimumAmountOut(quote.AmountOut, slippage)
	if err != nil {
		return QuoteResult{}, err
	}

	logger.Debug("amount out computed", "out", quote.AmountOut.String(), "impact", quote.PriceImpactPercent.String(), "block", bn)
	return QuoteResult{
		AmountIn:         amountIn,
		Quote:            quote,
		MinimumAmountOut: minOut,
		SlippageBps:      slippage,
		Pool:             pool,
		Block:            bn,
	}, nil
}
