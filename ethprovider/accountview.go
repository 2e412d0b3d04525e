package ethprovider

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
	"github.com/kkrt-labs/kakarot-rpc-go/mempool"
)

// AccountView implements mempool.AccountSource, letting the validator read
// sender state through the same account-contract reads eth_getBalance and
// eth_getTransactionCount use, without an import cycle back into mempool.
func (p *Provider) AccountView(ctx context.Context, addr common.Address) (mempool.AccountView, error) {
	nonce, err := p.TransactionCount(ctx, addr)
	if err != nil {
		return mempool.AccountView{}, err
	}
	balance, err := p.Balance(ctx, addr)
	if err != nil {
		return mempool.AccountView{}, err
	}
	s := p.derive(addr)
	_, length, err := p.account.Bytecode(ctx, s)
	if err != nil && !l2client.IsNotFound(err) {
		return mempool.AccountView{}, apierror.L2ContractError(err)
	}
	return mempool.AccountView{
		Nonce:   nonce,
		Balance: balance,
		HasCode: length > 0,
	}, nil
}
