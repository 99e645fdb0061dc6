package eth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nulln0ne/dex-engine/internal/metrics"
)

const tracerName = "dex-engine/eth"

var (
	// ErrUnavailable wraps every failure to reach the node, including an open
	// circuit breaker.
	ErrUnavailable = errors.New("eth: node unavailable")
	// ErrUnexpectedResult indicates return data that does not match the ABI.
	ErrUnexpectedResult = errors.New("eth: unexpected call result")
)

// Backend is the subset of ethclient.Client the Reader needs.
type Backend interface {
	ethereum.ContractCaller
	ethereum.BlockNumberReader
}

// Options tunes a Reader. Zero values fall back to defaults.
type Options struct {
	// RateLimit is the number of node requests per second.
	RateLimit float64
	// Timeout bounds a single node request.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (o *Options) setDefaults() {
	if o.RateLimit <= 0 {
		o.RateLimit = 20
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 5
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Reader performs ABI-encoded view calls. Callers pin a block number once per
// request and pass it to every call so all values come from one state.
// A Reader is safe for concurrent use.
type Reader struct {
	backend Backend
	timeout time.Duration

	erc20   abi.ABI
	pool    abi.ABI
	staking abi.ABI

	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[any]
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewReader wraps backend with rate limiting, a circuit breaker and tracing.
func NewReader(backend Backend, opts Options) (*Reader, error) {
	opts.setDefaults()

	r := &Reader{
		backend: backend,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit))),
		tracer:  otel.Tracer(tracerName),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}

	var err error
	for _, p := range []struct {
		dst  *abi.ABI
		name string
		json string
	}{
		{&r.erc20, "erc20", ERC20ABI},
		{&r.pool, "swap pool", SwapPoolABI},
		{&r.staking, "staking", StakingABI},
	} {
		if *p.dst, err = abi.JSON(strings.NewReader(p.json)); err != nil {
			return nil, fmt.Errorf("failed to parse %s ABI: %w", p.name, err)
		}
	}

	threshold := opts.FailureThreshold
	r.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "eth-rpc",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return r, nil
}

// BlockNumber returns the latest block, the snapshot every other call pins.
func (r *Reader) BlockNumber(ctx context.Context) (uint64, error) {
	v, err := r.do(ctx, "eth_blockNumber", func(ctx context.Context) (any, error) {
		return r.backend.BlockNumber(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// TokenInfo reads symbol, decimals and totalSupply of an ERC-20.
func (r *Reader) TokenInfo(ctx context.Context, token common.Address, block *big.Int) (TokenInfo, error) {
	symbol, err := callOne[string](ctx, r, r.erc20, token, block, "symbol")
	if err != nil {
		return TokenInfo{}, err
	}
	decimals, err := r.Decimals(ctx, token, block)
	if err != nil {
		return TokenInfo{}, err
	}
	supply, err := callOne[*big.Int](ctx, r, r.erc20, token, block, "totalSupply")
	if err != nil {
		return TokenInfo{}, err
	}
	return TokenInfo{Address: token, Symbol: symbol, Decimals: decimals, TotalSupply: supply}, nil
}

// Decimals reads decimals() of an ERC-20.
func (r *Reader) Decimals(ctx context.Context, token common.Address, block *big.Int) (uint8, error) {
	return callOne[uint8](ctx, r, r.erc20, token, block, "decimals")
}

// BalanceOf reads balanceOf(owner). It works for pool shares too.
func (r *Reader) BalanceOf(ctx context.Context, token, owner common.Address, block *big.Int) (*big.Int, error) {
	return callOne[*big.Int](ctx, r, r.erc20, token, block, "balanceOf", owner)
}

// Reserves reads both pool reserves.
func (r *Reader) Reserves(ctx context.Context, pool common.Address, block *big.Int) (reserveA, reserveB *big.Int, err error) {
	if reserveA, err = callOne[*big.Int](ctx, r, r.pool, pool, block, "reserveA"); err != nil {
		return nil, nil, err
	}
	if reserveB, err = callOne[*big.Int](ctx, r, r.pool, pool, block, "reserveB"); err != nil {
		return nil, nil, err
	}
	return reserveA, reserveB, nil
}

// TotalShares reads the pool's liquidity share supply.
func (r *Reader) TotalShares(ctx context.Context, pool common.Address, block *big.Int) (*big.Int, error) {
	return callOne[*big.Int](ctx, r, r.pool, pool, block, "totalSupply")
}

// PoolAmountOut asks the pool contract to price a swap.
func (r *Reader) PoolAmountOut(ctx context.Context, pool common.Address, amountIn, reserveIn, reserveOut, block *big.Int) (*big.Int, error) {
	return callOne[*big.Int](ctx, r, r.pool, pool, block, "getAmountOut", amountIn, reserveIn, reserveOut)
}

// StakingInfo reads getStakingInfo(account).
func (r *Reader) StakingInfo(ctx context.Context, staking, account common.Address, block *big.Int) (StakingInfo, error) {
	out, err := r.call(ctx, r.staking, staking, block, "getStakingInfo", account)
	if err != nil {
		return StakingInfo{}, err
	}
	if len(out) != 4 {
		return StakingInfo{}, fmt.Errorf("%w: getStakingInfo returned %d values", ErrUnexpectedResult, len(out))
	}
	var vals [4]*big.Int
	for i, v := range out {
		b, ok := v.(*big.Int)
		if !ok {
			return StakingInfo{}, fmt.Errorf("%w: getStakingInfo[%d] is %T", ErrUnexpectedResult, i, v)
		}
		vals[i] = b
	}
	return StakingInfo{StakedAmount: vals[0], EarnedRewards: vals[1], TimeStaked: vals[2], RewardRate: vals[3]}, nil
}

// TotalStaked reads totalStaked().
func (r *Reader) TotalStaked(ctx context.Context, staking common.Address, block *big.Int) (*big.Int, error) {
	return callOne[*big.Int](ctx, r, r.staking, staking, block, "totalStaked")
}

func callOne[T any](ctx context.Context, r *Reader, contract abi.ABI, to common.Address, block *big.Int, method string, args ...any) (T, error) {
	var zero T
	out, err := r.call(ctx, contract, to, block, method, args...)
	if err != nil {
		return zero, err
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("%w: %s returned %d values", ErrUnexpectedResult, method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrUnexpectedResult, method, out[0])
	}
	return v, nil
}

func (r *Reader) call(ctx context.Context, contract abi.ABI, to common.Address, block *big.Int, method string, args ...any) ([]any, error) {
	input, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	raw, err := r.do(ctx, method, func(ctx context.Context) (any, error) {
		return r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, block)
	})
	if err != nil {
		return nil, fmt.Errorf("%s on %s at block %v: %w", method, to.Hex(), block, err)
	}

	out, err := contract.Unpack(method, raw.([]byte))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnexpectedResult, method, err)
	}
	return out, nil
}

// do runs one node request through the limiter, breaker, span and metrics.
func (r *Reader) do(ctx context.Context, method string, fn func(context.Context) (any, error)) (any, error) {
	ctx, span := r.tracer.Start(ctx, "eth."+method, trace.WithAttributes(attribute.String("method", method)))
	defer span.End()

	start := time.Now()
	v, err := r.execute(ctx, fn)
	r.metrics.RecordRPCCall(ctx, method, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "node call failed")
		r.logger.Debug("node call failed", "method", method, "err", err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return v, nil
}

func (r *Reader) execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrUnavailable, err)
	}

	v, err := r.cb.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return fn(callCtx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return v, nil
}
