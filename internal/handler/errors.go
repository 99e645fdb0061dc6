package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-engine/internal/eth"
	"github.com/nulln0ne/dex-engine/internal/service"
	"github.com/nulln0ne/dex-engine/pkg/amm"
	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrAmountRequired is returned when the amountIn parameter is missing.
var ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amountIn is required")

var ErrAmountARequired = fiber.NewError(fiber.StatusBadRequest, "amountA is required")

// ErrAmountTooLarge is returned when an amount does not fit a 256-bit word.
var ErrAmountTooLarge = fiber.NewError(fiber.StatusBadRequest, "amount too large")

var ErrInvalidSlippage = fiber.NewError(fiber.StatusBadRequest, "slippageBps must be an integer between 0 and 10000")

// ErrSameTokenBadRequest maps a same-token validation failure to a 400 error.
var ErrSameTokenBadRequest = fiber.NewError(fiber.StatusBadRequest, "tokenIn and tokenOut cannot be the same")

var ErrPairMismatchBadRequest = fiber.NewError(fiber.StatusBadRequest, "token pair is not served by the pool")

// ErrEmptyPoolBadRequest maps empty-reserve pool state to a 400 error.
var ErrEmptyPoolBadRequest = fiber.NewError(fiber.StatusBadRequest, "pool has insufficient reserves")

var ErrIncompatibleScaleBadRequest = fiber.NewError(fiber.StatusBadRequest, "amounts have incompatible decimals")

var ErrDepositTooSmall = fiber.NewError(fiber.StatusBadRequest, "deposit too small to mint shares")

var ErrSharesExceedSupplyBadRequest = fiber.NewError(fiber.StatusBadRequest, "shares exceed the pool supply")

// ErrNodeUnavailable signals that the Ethereum node could not serve the
// request.
var ErrNodeUnavailable = fiber.NewError(fiber.StatusBadGateway, "ethereum node unavailable")

// ErrInternal signals a generic server-side failure.
var ErrInternal = fiber.NewError(fiber.StatusInternalServerError, "internal error")

// NewInvalidAmount wraps an amount parsing error into a 400 Bad Request with
// a descriptive message.
func NewInvalidAmount(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid amount: "+err.Error())
}

// NewAddressRequired returns a 400 Bad Request for a missing address field.
func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 Bad Request for an invalid address format.
func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// ErrorHandler renders every error as {"error": message}. Errors that are
// not *fiber.Error become a 500.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		fe = ErrInternal
	}
	return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
}

// handleServiceError maps service and core errors onto HTTP errors.
func (h *BaseHandler) handleServiceError(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrSameToken):
		return ErrSameTokenBadRequest
	case errors.Is(err, service.ErrPairMismatch):
		return ErrPairMismatchBadRequest
	case errors.Is(err, fixedpoint.ErrMalformedAmount):
		return NewInvalidAmount(err)
	case errors.Is(err, fixedpoint.ErrOverflow):
		return ErrAmountTooLarge
	case errors.Is(err, fixedpoint.ErrIncompatibleScale):
		return ErrIncompatibleScaleBadRequest
	case errors.Is(err, amm.ErrEmptyPool):
		return ErrEmptyPoolBadRequest
	case errors.Is(err, amm.ErrInsufficientLiquidityMinted):
		return ErrDepositTooSmall
	case errors.Is(err, amm.ErrSharesExceedSupply):
		return ErrSharesExceedSupplyBadRequest
	case errors.Is(err, amm.ErrInvalidSlippage):
		return ErrInvalidSlippage
	case errors.Is(err, eth.ErrUnavailable), errors.Is(err, eth.ErrUnexpectedResult):
		h.logger.Warn(op+" failed", "err", err)
		return ErrNodeUnavailable
	default:
		h.logger.Error(op+" failed", "err", err)
		return ErrInternal
	}
}
