// Package handler defines HTTP request handlers and related utilities.
package handler

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
)

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

// parseAddress validates a hex address taken from the request.
func parseAddress(field, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, NewAddressRequired(field)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, NewInvalidAddress(field)
	}
	return common.HexToAddress(value), nil
}
