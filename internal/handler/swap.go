package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-engine/internal/service"
	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

type SwapHandler struct {
	BaseHandler
	service *service.SwapService
}

func NewSwapHandler(logger *slog.Logger, svc *service.SwapService) *SwapHandler {
	return &SwapHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type QuoteRequest struct {
	AmountIn    string `query:"amountIn" json:"amountIn"`
	TokenIn     string `query:"tokenIn" json:"tokenIn"`
	TokenOut    string `query:"tokenOut" json:"tokenOut"`
	SlippageBps string `query:"slippageBps" json:"slippageBps"`
}

type QuoteResponse struct {
	AmountIn         string `json:"amountIn"`
	AmountOut        string `json:"amountOut"`
	MinimumAmountOut string `json:"minimumAmountOut"`
	SlippageBps      uint32 `json:"slippageBps"`
	PriceImpact      string `json:"priceImpact"`
	EffectivePrice   string `json:"effectivePrice"`
	SpotPrice        string `json:"spotPrice"`
	ReserveA         string `json:"reserveA"`
	ReserveB         string `json:"reserveB"`
	Block            uint64 `json:"block"`
}

func (h *SwapHandler) Quote() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseAndValidateRequest(c)
		if err != nil {
			return err
		}

		res, err := h.service.Quote(c.Context(), req)
		if err != nil {
			return h.handleServiceError("swap quote", err)
		}

		h.logger.Debug("quote computed", "in", req.AmountIn, "out", res.Quote.AmountOut.String(), "block", res.Block)
		return c.JSON(QuoteResponse{
			AmountIn:         fixedpoint.FormatTrimmed(res.AmountIn),
			AmountOut:        fixedpoint.FormatTrimmed(res.Quote.AmountOut),
			MinimumAmountOut: fixedpoint.FormatTrimmed(res.MinimumAmountOut),
			SlippageBps:      res.SlippageBps,
			PriceImpact:      res.Quote.PriceImpactPercent.StringFixed(fixedpoint.PercentPlaces),
			EffectivePrice:   res.Quote.EffectivePrice.String(),
			SpotPrice:        res.Quote.SpotPrice.String(),
			ReserveA:         fixedpoint.FormatTrimmed(res.Pool.ReserveA),
			ReserveB:         fixedpoint.FormatTrimmed(res.Pool.ReserveB),
			Block:            res.Block,
		})
	}
}

func (h *SwapHandler) parseAndValidateRequest(c fiber.Ctx) (service.QuoteRequest, error) {
	var req QuoteRequest

	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return service.QuoteRequest{}, ErrInvalidQueryParameters
	}

	if req.AmountIn == "" {
		return service.QuoteRequest{}, ErrAmountRequired
	}
	tokenIn, err := parseAddress("tokenIn", req.TokenIn)
	if err != nil {
		return service.QuoteRequest{}, err
	}
	tokenOut, err := parseAddress("tokenOut", req.TokenOut)
	if err != nil {
		return service.QuoteRequest{}, err
	}

	out := service.QuoteRequest{AmountIn: req.AmountIn, TokenIn: tokenIn, TokenOut: tokenOut}
	if req.SlippageBps != "" {
		bps, err := strconv.ParseUint(req.SlippageBps, 10, 32)
		if err != nil || bps > amm.BpsDenominator {
			return service.QuoteRequest{}, ErrInvalidSlippage
		}
		slippage := uint32(bps)
		out.SlippageBps = &slippage
	}
	return out, nil
}
