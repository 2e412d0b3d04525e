package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Web3ClientVersion is the adapter's self-reported version string,
// kakarot_<semver>.
const Web3ClientVersion = "kakarot_0.1.0"

// Web3API implements the web3_* namespace.
type Web3API struct{}

func NewWeb3API() *Web3API {
	return &Web3API{}
}

func (a *Web3API) ClientVersion(ctx context.Context) (string, error) {
	return Web3ClientVersion, nil
}

func (a *Web3API) Sha3(ctx context.Context, data hexutil.Bytes) (hexutil.Bytes, error) {
	return crypto.Keccak256(data), nil
}
