// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	Addr        string
	RPCEndpoint string
	LogLevel    string
	LogFormat   string

	Contracts Contracts

	SwapFeeBps         uint32
	DefaultSlippageBps uint32
	APYPeriods         int

	RPCRateLimit   float64
	RPCTimeout     time.Duration
	RequestTimeout time.Duration
}

// Contracts holds the deployed addresses the service reads from.
type Contracts struct {
	TokenA  common.Address
	TokenB  common.Address
	Swap    common.Address
	Staking common.Address
}

// FromEnv reads the configuration from environment variables, applying
// defaults for everything except the node endpoint and contract addresses.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	rpcURL := v.GetString("ETH_RPC_URL")
	if rpcURL == "" {
		return nil, ErrMissingRPCEndpoint
	}

	contracts, err := loadContracts(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:               v.GetString("ADDR"),
		RPCEndpoint:        rpcURL,
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		Contracts:          contracts,
		SwapFeeBps:         v.GetUint32("SWAP_FEE_BPS"),
		DefaultSlippageBps: v.GetUint32("DEFAULT_SLIPPAGE_BPS"),
		APYPeriods:         v.GetInt("APY_PERIODS"),
		RPCRateLimit:       v.GetFloat64("RPC_RATE_LIMIT"),
		RPCTimeout:         v.GetDuration("RPC_TIMEOUT"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ADDR", ":1337")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SWAP_FEE_BPS", 30)
	v.SetDefault("DEFAULT_SLIPPAGE_BPS", 50)
	v.SetDefault("APY_PERIODS", 365)
	v.SetDefault("RPC_RATE_LIMIT", 20)
	v.SetDefault("RPC_TIMEOUT", "10s")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
}

func loadContracts(v *viper.Viper) (Contracts, error) {
	var c Contracts
	for _, f := range []struct {
		key string
		dst *common.Address
	}{
		{"TOKEN_A_ADDRESS", &c.TokenA},
		{"TOKEN_B_ADDRESS", &c.TokenB},
		{"SWAP_ADDRESS", &c.Swap},
		{"STAKING_ADDRESS", &c.Staking},
	} {
		raw := v.GetString(f.key)
		if raw == "" {
			return Contracts{}, fmt.Errorf("%w: %s", ErrMissingContract, f.key)
		}
		if !common.IsHexAddress(raw) {
			return Contracts{}, fmt.Errorf("%w: %s=%q", ErrInvalidContract, f.key, raw)
		}
		*f.dst = common.HexToAddress(raw)
	}
	return c, nil
}

// Validate checks numeric settings.
func (c *Config) Validate() error {
	if c.SwapFeeBps >= 10_000 {
		return fmt.Errorf("%w: SWAP_FEE_BPS=%d", ErrInvalidValue, c.SwapFeeBps)
	}
	if c.DefaultSlippageBps > 10_000 {
		return fmt.Errorf("%w: DEFAULT_SLIPPAGE_BPS=%d", ErrInvalidValue, c.DefaultSlippageBps)
	}
	if c.APYPeriods < 1 || c.APYPeriods > 8760 {
		return fmt.Errorf("%w: APY_PERIODS=%d", ErrInvalidValue, c.APYPeriods)
	}
	if c.RPCRateLimit <= 0 {
		return fmt.Errorf("%w: RPC_RATE_LIMIT=%v", ErrInvalidValue, c.RPCRateLimit)
	}
	if c.RPCTimeout <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidValue)
	}
	return nil
}
