package ethprovider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// erc20BalanceOfSelector is the 4-byte selector of balanceOf(address), fixed
// across every standard ERC-20 contract.
var erc20BalanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

// TokenBalance is one entry of the alchemy_getTokenBalances response.
type TokenBalance struct {
	ContractAddress common.Address `json:"contractAddress"`
	TokenBalance    *hexutil.Big   `json:"tokenBalance,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// TokenBalances is the alchemy_getTokenBalances response envelope.
type TokenBalances struct {
	Address       common.Address `json:"address"`
	TokenBalances []TokenBalance `json:"tokenBalances"`
}

// GetTokenBalances implements alchemy_getTokenBalances: fans
// balanceOf(address) calls for each requested ERC-20 contract out over the
// same path eth_call itself uses, rather than the native token's
// account-contract balance_of used by eth_getBalance.
func (p *Provider) GetTokenBalances(ctx context.Context, owner common.Address, tokens []common.Address) (*TokenBalances, error) {
	out := make([]TokenBalance, len(tokens))
	calldata := make([]byte, 4+32)
	copy(calldata[:4], erc20BalanceOfSelector)
	copy(calldata[4+12:], owner[:])

	for i, token := range tokens {
		out[i] = TokenBalance{ContractAddress: token}
		result, err := p.Call(ctx, CallRequest{
			From: &owner,
			To:   &token,
			Data: calldata,
		})
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		balance := hexutil.Big(*new(big.Int).SetBytes(result))
		out[i].TokenBalance = &balance
	}
	return &TokenBalances{Address: owner, TokenBalances: out}, nil
}
