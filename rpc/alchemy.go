package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
)

// AlchemyAPI implements the alchemy_* namespace.
type AlchemyAPI struct {
	provider *ethprovider.Provider
}

func NewAlchemyAPI(provider *ethprovider.Provider) *AlchemyAPI {
	return &AlchemyAPI{provider: provider}
}

func (a *AlchemyAPI) GetTokenBalances(ctx context.Context, owner common.Address, tokens []common.Address) (*ethprovider.TokenBalances, error) {
	return a.provider.GetTokenBalances(ctx, owner, tokens)
}
