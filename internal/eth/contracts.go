package eth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ERC20ABI covers the read-only token methods the service uses.
const ERC20ABI = `[
	{"inputs": [], "name": "symbol", "outputs": [{"name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "decimals", "outputs": [{"name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "totalSupply", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
	{"inputs": [{"name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

// SwapPoolABI is the two-token pool. Its liquidity shares are an ERC-20
// living on the pool itself.
const SwapPoolABI = `[
	{"inputs": [], "name": "reserveA", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "reserveB", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "totalSupply", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
	{"inputs": [{"name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
	{
		"inputs": [
			{"name": "amountIn", "type": "uint256"},
			{"name": "reserveIn", "type": "uint256"},
			{"name": "reserveOut", "type": "uint256"}
		],
		"name": "getAmountOut",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "pure",
		"type": "function"
	}
]`

// StakingABI is the reward-rate staking contract.
const StakingABI = `[
	{
		"inputs": [{"name": "account", "type": "address"}],
		"name": "getStakingInfo",
		"outputs": [
			{"name": "stakedAmount", "type": "uint256"},
			{"name": "earnedRewards", "type": "uint256"},
			{"name": "timeStaked", "type": "uint256"},
			{"name": "rewardRate", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{"inputs": [], "name": "totalStaked", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

// TokenInfo is the metadata of an ERC-20 token.
type TokenInfo struct {
	Address     common.Address
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// StakingInfo is the result of getStakingInfo(account).
type StakingInfo struct {
	StakedAmount  *big.Int
	EarnedRewards *big.Int
	TimeStaked    *big.Int
	RewardRate    *big.Int
}
