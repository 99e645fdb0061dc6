// Package ethtest provides an in-process fake node serving eth_blockNumber
// and eth_call for the token, pool and staking contracts.
package ethtest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/nulln0ne/dex-engine/internal/eth"
)

type Token struct {
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Balances    map[common.Address]*big.Int
}

type Pool struct {
	ReserveA    *big.Int
	ReserveB    *big.Int
	TotalSupply *big.Int
	Balances    map[common.Address]*big.Int
}

type Staking struct {
	TotalStaked *big.Int
	Info        map[common.Address]eth.StakingInfo
}

// Chain is a fake node. Configure it before the first call.
type Chain struct {
	Block    uint64
	Tokens   map[common.Address]*Token
	Pools    map[common.Address]*Pool
	Stakings map[common.Address]*Staking

	mu     sync.Mutex
	fail   error
	blocks []string
	calls  []string

	erc20, pool, staking abi.ABI
}

func NewChain(block uint64) *Chain {
	return &Chain{
		Block:    block,
		Tokens:   map[common.Address]*Token{},
		Pools:    map[common.Address]*Pool{},
		Stakings: map[common.Address]*Staking{},
		erc20:    mustParse(eth.ERC20ABI),
		pool:     mustParse(eth.SwapPoolABI),
		staking:  mustParse(eth.StakingABI),
	}
}

// Fail makes every subsequent request return err. nil restores the node.
func (c *Chain) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// Blocks returns the block argument of every eth_call served so far.
func (c *Chain) Blocks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.blocks...)
}

// Calls returns the method names of every eth_call served so far.
func (c *Chain) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Client returns an ethclient connected in-process to the fake node.
func (c *Chain) Client(t testing.TB) *ethclient.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	// Register under the standard "eth" namespace so methods map to eth_*
	if err := srv.RegisterName("eth", &service{chain: c}); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	client := ethclient.NewClient(gethrpc.DialInProc(srv))
	t.Cleanup(func() {
		client.Close()
		srv.Stop()
	})
	return client
}

type service struct {
	chain *Chain
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

func (s *service) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	c := s.chain
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return 0, c.fail
	}
	return hexutil.Uint64(c.Block), nil
}

func (s *service) Call(ctx context.Context, args callArgs, block string) (hexutil.Bytes, error) {
	c := s.chain
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	if args.To == nil {
		return nil, errors.New("missing to")
	}
	input := args.Input
	if len(input) == 0 {
		input = args.Data
	}
	if len(input) < 4 {
		return nil, errors.New("short input")
	}

	contract, handle, err := c.lookup(*args.To)
	if err != nil {
		return nil, err
	}
	method, err := contract.MethodById(input[:4])
	if err != nil {
		return nil, err
	}
	in, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, err
	}
	out, err := handle(method.Name, in)
	if err != nil {
		return nil, err
	}

	c.blocks = append(c.blocks, block)
	c.calls = append(c.calls, method.Name)
	return method.Outputs.Pack(out...)
}

type handler func(method string, args []any) ([]any, error)

func (c *Chain) lookup(addr common.Address) (abi.ABI, handler, error) {
	if t, ok := c.Tokens[addr]; ok {
		return c.erc20, t.handle, nil
	}
	if p, ok := c.Pools[addr]; ok {
		return c.pool, p.handle, nil
	}
	if s, ok := c.Stakings[addr]; ok {
		return c.staking, s.handle, nil
	}
	return abi.ABI{}, nil, errors.New("execution reverted: no contract at " + addr.Hex())
}

func (t *Token) handle(method string, args []any) ([]any, error) {
	switch method {
	case "symbol":
		return []any{t.Symbol}, nil
	case "decimals":
		return []any{t.Decimals}, nil
	case "totalSupply":
		return []any{orZero(t.TotalSupply)}, nil
	case "balanceOf":
		return []any{orZero(t.Balances[args[0].(common.Address)])}, nil
	}
	return nil, fmt.Errorf("token: unsupported method %s", method)
}

func (p *Pool) handle(method string, args []any) ([]any, error) {
	switch method {
	case "reserveA":
		return []any{orZero(p.ReserveA)}, nil
	case "reserveB":
		return []any{orZero(p.ReserveB)}, nil
	case "totalSupply":
		return []any{orZero(p.TotalSupply)}, nil
	case "balanceOf":
		return []any{orZero(p.Balances[args[0].(common.Address)])}, nil
	case "getAmountOut":
		in, rIn, rOut := args[0].(*big.Int), args[1].(*big.Int), args[2].(*big.Int)
		withFee := new(big.Int).Mul(in, big.NewInt(997))
		num := new(big.Int).Mul(withFee, rOut)
		den := new(big.Int).Mul(rIn, big.NewInt(1000))
		den.Add(den, withFee)
		if den.Sign() == 0 {
			return nil, errors.New("execution reverted: insufficient liquidity")
		}
		return []any{num.Div(num, den)}, nil
	}
	return nil, fmt.Errorf("pool: unsupported method %s", method)
}

func (s *Staking) handle(method string, args []any) ([]any, error) {
	switch method {
	case "totalStaked":
		return []any{orZero(s.TotalStaked)}, nil
	case "getStakingInfo":
		info := s.Info[args[0].(common.Address)]
		return []any{orZero(info.StakedAmount), orZero(info.EarnedRewards), orZero(info.TimeStaked), orZero(info.RewardRate)}, nil
	}
	return nil, fmt.Errorf("staking: unsupported method %s", method)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func mustParse(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
