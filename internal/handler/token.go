package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-engine/internal/service"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

type TokenHandler struct {
	BaseHandler
	service *service.TokenService
}

func NewTokenHandler(logger *slog.Logger, svc *service.TokenService) *TokenHandler {
	return &TokenHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type TokenResponse struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
	Block       uint64 `json:"block"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
	Raw     string `json:"raw"`
	Block   uint64 `json:"block"`
}

func (h *TokenHandler) Token() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := parseAddress("token", c.Params("address"))
		if err != nil {
			return err
		}

		details, err := h.service.Token(c.Context(), token)
		if err != nil {
			return h.handleServiceError("token lookup", err)
		}

		return c.JSON(TokenResponse{
			Address:     token.Hex(),
			Symbol:      details.Info.Symbol,
			Decimals:    details.Info.Decimals,
			TotalSupply: fixedpoint.FormatTrimmed(details.TotalSupply),
			Block:       details.Block,
		})
	}
}

func (h *TokenHandler) Balance() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := parseAddress("token", c.Params("token"))
		if err != nil {
			return err
		}
		owner, err := parseAddress("user", c.Params("user"))
		if err != nil {
			return err
		}

		bal, err := h.service.Balance(c.Context(), token, owner)
		if err != nil {
			return h.handleServiceError("balance lookup", err)
		}

		return c.JSON(BalanceResponse{
			Balance: fixedpoint.FormatTrimmed(bal.Amount),
			Raw:     bal.Amount.Raw().String(),
			Block:   bal.Block,
		})
	}
}
