package service

import "errors"

var (
	ErrSameToken    = errors.New("tokenIn and tokenOut are equal")
	ErrPairMismatch = errors.New("token is not part of the pool")
)
