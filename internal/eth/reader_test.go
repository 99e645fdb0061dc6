package eth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/dex-engine/internal/eth"
	"github.com/nulln0ne/dex-engine/internal/eth/ethtest"
)

var (
	tokenA  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	pool    = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	staking = common.HexToAddress("0x0000000000000000000000000000000000000def")
	user    = common.HexToAddress("0x0000000000000000000000000000000000001234")
)

func newChain() *ethtest.Chain {
	c := ethtest.NewChain(123)
	c.Tokens[tokenA] = &ethtest.Token{
		Symbol:      "TKA",
		Decimals:    18,
		TotalSupply: big.NewInt(1_000_000),
		Balances:    map[common.Address]*big.Int{user: big.NewInt(42)},
	}
	c.Pools[pool] = &ethtest.Pool{
		ReserveA:    big.NewInt(1_000_000),
		ReserveB:    big.NewInt(2_000_000),
		TotalSupply: big.NewInt(500),
		Balances:    map[common.Address]*big.Int{user: big.NewInt(50)},
	}
	c.Stakings[staking] = &ethtest.Staking{
		TotalStaked: big.NewInt(1_000),
		Info: map[common.Address]eth.StakingInfo{
			user: {StakedAmount: big.NewInt(100), EarnedRewards: big.NewInt(7), TimeStaked: big.NewInt(3600), RewardRate: big.NewInt(1)},
		},
	}
	return c
}

func newReader(t *testing.T, c *ethtest.Chain, opts eth.Options) *eth.Reader {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
	}
	r, err := eth.NewReader(c.Client(t), opts)
	require.NoError(t, err)
	return r
}

func TestReader_PinnedReads(t *testing.T) {
	c := newChain()
	r := newReader(t, c, eth.Options{})
	ctx := context.Background()

	bn, err := r.BlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(123), bn)
	block := new(big.Int).SetUint64(bn)

	info, err := r.TokenInfo(ctx, tokenA, block)
	require.NoError(t, err)
	assert.Equal(t, "TKA", info.Symbol)
	assert.Equal(t, uint8(18), info.Decimals)
	assert.Equal(t, int64(1_000_000), info.TotalSupply.Int64())

	bal, err := r.BalanceOf(ctx, tokenA, user, block)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())

	ra, rb, err := r.Reserves(ctx, pool, block)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), ra.Int64())
	assert.Equal(t, int64(2_000_000), rb.Int64())

	shares, err := r.TotalShares(ctx, pool, block)
	require.NoError(t, err)
	assert.Equal(t, int64(500), shares.Int64())

	lp, err := r.BalanceOf(ctx, pool, user, block)
	require.NoError(t, err)
	assert.Equal(t, int64(50), lp.Int64())

	st, err := r.StakingInfo(ctx, staking, user, block)
	require.NoError(t, err)
	assert.Equal(t, int64(100), st.StakedAmount.Int64())
	assert.Equal(t, int64(7), st.EarnedRewards.Int64())
	assert.Equal(t, int64(3600), st.TimeStaked.Int64())
	assert.Equal(t, int64(1), st.RewardRate.Int64())

	total, err := r.TotalStaked(ctx, staking, block)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), total.Int64())

	for _, b := range c.Blocks() {
		assert.Equal(t, "0x7b", b)
	}
	assert.Len(t, c.Blocks(), 10)
}

func TestReader_PoolAmountOut(t *testing.T) {
	c := newChain()
	r := newReader(t, c, eth.Options{})

	out, err := r.PoolAmountOut(context.Background(), pool, big.NewInt(1_000), big.NewInt(1_000_000), big.NewInt(1_000_000), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(996), out.Int64())
}

func TestReader_UnknownContract(t *testing.T) {
	r := newReader(t, newChain(), eth.Options{})

	_, err := r.TotalStaked(context.Background(), common.HexToAddress("0x0000000000000000000000000000000000000bad"), nil)
	require.ErrorIs(t, err, eth.ErrUnavailable)
}

func TestReader_BreakerOpens(t *testing.T) {
	c := newChain()
	r := newReader(t, c, eth.Options{FailureThreshold: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	c.Fail(errors.New("node down"))
	for i := 0; i < 2; i++ {
		_, err := r.BlockNumber(ctx)
		require.ErrorIs(t, err, eth.ErrUnavailable)
	}

	// the node recovers but the breaker stays open until OpenTimeout
	c.Fail(nil)
	_, err := r.BlockNumber(ctx)
	require.ErrorIs(t, err, eth.ErrUnavailable)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestReader_CanceledContext(t *testing.T) {
	r := newReader(t, newChain(), eth.Options{RateLimit: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.BlockNumber(ctx)
	require.ErrorIs(t, err, eth.ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}
