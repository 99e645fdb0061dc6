package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-engine/internal/service"
	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type PoolInfoResponse struct {
	ReserveA    string `json:"reserveA"`
	ReserveB    string `json:"reserveB"`
	TotalSupply string `json:"totalSupply"`
	Ratio       string `json:"ratio"`
	Block       uint64 `json:"block"`
}

type PositionResponse struct {
	Liquidity string `json:"liquidity"`
	Share     string `json:"share"`
	TokenA    string `json:"tokenA"`
	TokenB    string `json:"tokenB"`
	Block     uint64 `json:"block"`
}

type DepositRequest struct {
	AmountA string `query:"amountA" json:"amountA"`
	AmountB string `query:"amountB" json:"amountB"`
}

type DepositResponse struct {
	AmountA string `json:"amountA"`
	AmountB string `json:"amountB"`
	Shares  string `json:"shares"`
	Share   string `json:"share"`
	Block   uint64 `json:"block"`
}

func (h *PoolHandler) Info() fiber.Handler {
	return func(c fiber.Ctx) error {
		info, err := h.service.Info(c.Context())
		if err != nil {
			return h.handleServiceError("pool info", err)
		}

		return c.JSON(PoolInfoResponse{
			ReserveA:    fixedpoint.FormatTrimmed(info.Pool.ReserveA),
			ReserveB:    fixedpoint.FormatTrimmed(info.Pool.ReserveB),
			TotalSupply: fixedpoint.FormatTrimmed(info.Pool.TotalShares),
			Ratio:       info.Ratio.StringFixed(amm.RatioDecimals),
			Block:       info.Block,
		})
	}
}

func (h *PoolHandler) Position() fiber.Handler {
	return func(c fiber.Ctx) error {
		user, err := parseAddress("user", c.Params("user"))
		if err != nil {
			return err
		}

		pos, err := h.service.Position(c.Context(), user)
		if err != nil {
			return h.handleServiceError("pool position", err)
		}

		return c.JSON(PositionResponse{
			Liquidity: fixedpoint.FormatTrimmed(pos.Shares),
			Share:     pos.Position.SharePercent.StringFixed(fixedpoint.PercentPlaces) + "%",
			TokenA:    fixedpoint.FormatTrimmed(pos.Position.UnderlyingA),
			TokenB:    fixedpoint.FormatTrimmed(pos.Position.UnderlyingB),
			Block:     pos.Block,
		})
	}
}

func (h *PoolHandler) Deposit() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req DepositRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}
		if req.AmountA == "" {
			return ErrAmountARequired
		}

		est, err := h.service.EstimateDeposit(c.Context(), req.AmountA, req.AmountB)
		if err != nil {
			return h.handleServiceError("deposit estimate", err)
		}

		return c.JSON(DepositResponse{
			AmountA: fixedpoint.FormatTrimmed(est.AmountA),
			AmountB: fixedpoint.FormatTrimmed(est.AmountB),
			Shares:  fixedpoint.FormatTrimmed(est.Shares),
			Share:   est.SharePercent.StringFixed(fixedpoint.PercentPlaces) + "%",
			Block:   est.Block,
		})
	}
}
