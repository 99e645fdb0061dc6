package config

import "errors"

// ErrMissingRPCEndpoint indicates that the required ETH_RPC_URL variable is
// not set in the environment.
var ErrMissingRPCEndpoint = errors.New("missing ETH_RPC_URL environment variable")

// ErrMissingContract indicates that a contract address variable is empty.
var ErrMissingContract = errors.New("missing contract address")

// ErrInvalidContract indicates that a contract address is not a hex address.
var ErrInvalidContract = errors.New("invalid contract address")

// ErrInvalidValue indicates an out-of-range numeric setting.
var ErrInvalidValue = errors.New("invalid configuration value")
